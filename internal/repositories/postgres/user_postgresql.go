package postgres

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/itechs-edu/exam-service/internal/cache"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateError(err, "create user")
	}
	cache.SafeInvalidatePattern(ctx, u.cacheManager.User, "list:*")
	return nil
}

// userCacheEntry wraps a user row for the cache. The model hides the password
// hash and OTP columns from JSON, so caching the model directly would hand
// back a row with empty credentials; the explicit fields here carry them
// through the round trip.
type userCacheEntry struct {
	User      models.User `json:"user"`
	Password  string      `json:"password"`
	OTPCode   *string     `json:"otp_code"`
	OTPExpiry *time.Time  `json:"otp_expiry"`
}

func newUserCacheEntry(u *models.User) *userCacheEntry {
	return &userCacheEntry{
		User:      *u,
		Password:  u.Password,
		OTPCode:   u.OTPCode,
		OTPExpiry: u.OTPExpiry,
	}
}

func (e *userCacheEntry) toUser() *models.User {
	user := e.User
	user.Password = e.Password
	user.OTPCode = e.OTPCode
	user.OTPExpiry = e.OTPExpiry
	return &user
}

// GetByID retrieves a user by ID with caching.
func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var entry userCacheEntry
	err := u.cacheManager.User.CacheOrExecute(ctx, "id:"+id, &entry, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := u.db.WithContext(ctx).First(&dbUser, "id = ?", id).Error; err != nil {
			return nil, translateError(err, "get user")
		}
		return newUserCacheEntry(&dbUser), nil
	})
	if err != nil {
		return nil, err
	}
	return entry.toUser(), nil
}

// GetByUsername is the login lookup; it is never cached because it reads the
// password hash and OTP columns.
func (u *UserPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translateError(err, "get user by username")
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translateError(err, "get user by email")
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Save(user).Error; err != nil {
		return translateError(err, "update user")
	}
	u.cacheManager.InvalidateUser(ctx, user.ID)
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, id string) error {
	result := u.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "delete user")
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	u.cacheManager.InvalidateUser(ctx, id)
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.db.WithContext(ctx).Model(&models.User{})
	query = u.helpers.ApplyUserFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count users")
	}

	query = u.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var users []*models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, translateError(err, "list users")
	}
	return users, total, nil
}

// SetOTP overwrites any previously issued passcode.
func (u *UserPostgreSQL) SetOTP(ctx context.Context, id string, code string, expiry time.Time) error {
	result := u.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"otp_code":     code,
			"otp_expiry":   expiry,
			"otp_verified": false,
		})
	if result.Error != nil {
		return translateError(result.Error, "set otp")
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (u *UserPostgreSQL) ClearOTP(ctx context.Context, id string) error {
	result := u.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"otp_code":     nil,
			"otp_expiry":   nil,
			"otp_verified": true,
		})
	if result.Error != nil {
		return translateError(result.Error, "clear otp")
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
