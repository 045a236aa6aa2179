package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
)

type ArchivedUserPostgreSQL struct {
	db *gorm.DB
}

func NewArchivedUserPostgreSQL(db *gorm.DB) repositories.ArchivedUserRepository {
	return &ArchivedUserPostgreSQL{db: db}
}

func (a *ArchivedUserPostgreSQL) Create(ctx context.Context, record *models.ArchivedUser) error {
	if err := a.db.WithContext(ctx).Create(record).Error; err != nil {
		return translateError(err, "create archive record")
	}
	return nil
}

func (a *ArchivedUserPostgreSQL) GetByUserID(ctx context.Context, userID string) (*models.ArchivedUser, error) {
	var record models.ArchivedUser
	if err := a.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err, "get archive record")
	}
	return &record, nil
}

func (a *ArchivedUserPostgreSQL) Delete(ctx context.Context, userID string) error {
	result := a.db.WithContext(ctx).Delete(&models.ArchivedUser{}, "user_id = ?", userID)
	if result.Error != nil {
		return translateError(result.Error, "delete archive record")
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (a *ArchivedUserPostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.ArchivedUser, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.ArchivedUser{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count archive records")
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var records []*models.ArchivedUser
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, translateError(err, "list archive records")
	}
	return records, total, nil
}
