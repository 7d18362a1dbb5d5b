package repository

import (
	"context"
	"errors"

	"github.com/SergeySenin/user-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCountryNotFound = errors.New("country not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// UserRepository handles all database operations for users.
// UpdateAvatar and ClearAvatar run the load-mutate-save sequence inside one
// transaction with a row lock, so concurrent avatar updates for the same
// user are serialized at the database.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	UpdateAvatar(ctx context.Context, userID int64, paths models.AvatarPaths) (*models.User, error)
	ClearAvatar(ctx context.Context, userID int64) (*models.User, error)
}

// CountryRepository handles lookups of country reference records
type CountryRepository interface {
	GetCountry(ctx context.Context, countryID int64) (*models.Country, error)
	ListCountries(ctx context.Context) ([]*models.Country, error)
	CreateCountry(ctx context.Context, country *models.Country) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser creates a new user
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Create(user).Error
}

// GetUser gets a user by ID with its country preloaded
func (r *userRepository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Country").
		Where("id = ?", userID).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateUser updates a user
func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == 0 {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Save(user).Error
}

// UpdateAvatar replaces the user's avatar generation in a single
// row-locked transaction and returns the refreshed record.
func (r *userRepository) UpdateAvatar(ctx context.Context, userID int64, paths models.AvatarPaths) (*models.User, error) {
	return r.mutateAvatar(ctx, userID, func(u *models.User) {
		u.SetAvatar(paths)
	})
}

// ClearAvatar removes the user's avatar reference in a single
// row-locked transaction and returns the refreshed record.
func (r *userRepository) ClearAvatar(ctx context.Context, userID int64) (*models.User, error) {
	return r.mutateAvatar(ctx, userID, func(u *models.User) {
		u.ClearAvatar()
	})
}

func (r *userRepository) mutateAvatar(ctx context.Context, userID int64, mutate func(*models.User)) (*models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", userID)
		// Row-level lock serializes concurrent avatar writes for one user.
		// SQLite serializes writers on its own and rejects FOR UPDATE.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		if err := q.First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		mutate(&user)
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

type countryRepository struct {
	db *gorm.DB
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *gorm.DB) CountryRepository {
	return &countryRepository{db: db}
}

// GetCountry gets a country by ID
func (r *countryRepository) GetCountry(ctx context.Context, countryID int64) (*models.Country, error) {
	var country models.Country
	err := r.db.WithContext(ctx).Where("id = ?", countryID).First(&country).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCountryNotFound
	}
	if err != nil {
		return nil, err
	}

	return &country, nil
}

// ListCountries returns all countries ordered by title
func (r *countryRepository) ListCountries(ctx context.Context) ([]*models.Country, error) {
	var countries []*models.Country
	err := r.db.WithContext(ctx).Order("title ASC").Find(&countries).Error
	return countries, err
}

// CreateCountry creates a country record
func (r *countryRepository) CreateCountry(ctx context.Context, country *models.Country) error {
	if country == nil {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Create(country).Error
}
