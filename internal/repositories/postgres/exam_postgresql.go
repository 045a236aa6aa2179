package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/itechs-edu/exam-service/internal/cache"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
)

type ExamPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewExamPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (e *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	if err := e.db.WithContext(ctx).Create(exam).Error; err != nil {
		return translateError(err, "create exam")
	}
	cache.SafeInvalidatePattern(ctx, e.cacheManager.Exam, "list:*")
	return nil
}

// GetByID retrieves an exam with its teacher and questions, cached.
func (e *ExamPostgreSQL) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	err := e.cacheManager.Exam.CacheOrExecute(ctx, "id:"+id, &exam, cache.ExamCacheConfig.TTL, func() (interface{}, error) {
		var dbExam models.Exam
		err := e.db.WithContext(ctx).
			Preload("Teacher").
			Preload("Questions").
			First(&dbExam, "id = ?", id).Error
		if err != nil {
			return nil, translateError(err, "get exam")
		}
		return &dbExam, nil
	})
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// GetByCode resolves the shareable join code. Not cached: join traffic is
// bursty around exam start and must see fresh is_active state.
func (e *ExamPostgreSQL) GetByCode(ctx context.Context, code string) (*models.Exam, error) {
	var exam models.Exam
	err := e.db.WithContext(ctx).
		Preload("Teacher").
		First(&exam, "exam_code = ?", code).Error
	if err != nil {
		return nil, translateError(err, "get exam by code")
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) Update(ctx context.Context, exam *models.Exam) error {
	if err := e.db.WithContext(ctx).Save(exam).Error; err != nil {
		return translateError(err, "update exam")
	}
	e.cacheManager.InvalidateExam(ctx, exam.ID)
	return nil
}

func (e *ExamPostgreSQL) Delete(ctx context.Context, id string) error {
	result := e.db.WithContext(ctx).Delete(&models.Exam{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "delete exam")
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	e.cacheManager.InvalidateExam(ctx, id)
	return nil
}

func (e *ExamPostgreSQL) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	query := e.db.WithContext(ctx).Model(&models.Exam{})
	query = e.helpers.ApplyExamFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count exams")
	}

	query = e.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var exams []*models.Exam
	if err := query.Preload("Teacher").Find(&exams).Error; err != nil {
		return nil, 0, translateError(err, "list exams")
	}
	return exams, total, nil
}

func (e *ExamPostgreSQL) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := e.db.WithContext(ctx).Model(&models.Exam{}).
		Where("exam_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "check exam code")
	}
	return count > 0, nil
}

// Enroll adds a student to the exam roster. The composite primary key on the
// join table makes double enrollment a duplicate error.
func (e *ExamPostgreSQL) Enroll(ctx context.Context, examID, studentID string) error {
	err := e.db.WithContext(ctx).
		Exec("INSERT INTO exam_enrollments (exam_id, user_id) VALUES (?, ?)", examID, studentID).Error
	if err != nil {
		return translateError(err, "enroll student")
	}
	e.cacheManager.InvalidateExam(ctx, examID)
	return nil
}

func (e *ExamPostgreSQL) IsEnrolled(ctx context.Context, examID, studentID string) (bool, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Table("exam_enrollments").
		Where("exam_id = ? AND user_id = ?", examID, studentID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "check enrollment")
	}
	return count > 0, nil
}

func (e *ExamPostgreSQL) CountEnrollments(ctx context.Context, examID string) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Table("exam_enrollments").
		Where("exam_id = ?", examID).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err, "count enrollments")
	}
	return count, nil
}

func (e *ExamPostgreSQL) CountScores(ctx context.Context, examID string) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).Model(&models.Score{}).
		Where("exam_id = ?", examID).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err, "count scores")
	}
	return count, nil
}

func (e *ExamPostgreSQL) GetScores(ctx context.Context, examID string) ([]*models.Score, error) {
	var scores []*models.Score
	err := e.db.WithContext(ctx).
		Preload("Student").
		Where("exam_id = ?", examID).
		Order("score DESC").
		Find(&scores).Error
	if err != nil {
		return nil, translateError(err, "get scores")
	}
	return scores, nil
}
