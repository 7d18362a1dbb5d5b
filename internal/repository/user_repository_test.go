package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/SergeySenin/user-service/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Country{}, &models.User{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	country := models.Country{Title: "Netherlands"}
	require.NoError(t, db.Create(&country).Error)

	user := models.User{
		Username:  "sergey",
		Email:     "sergey@example.com",
		Phone:     "+31600000001",
		Active:    true,
		CountryID: country.ID,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestGetUser_PreloadsCountry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	seeded := createTestUser(t, db)

	user, err := repo.GetUser(context.Background(), seeded.ID)
	require.NoError(t, err)

	assert.Equal(t, "sergey", user.Username)
	assert.Equal(t, "Netherlands", user.Country.Title)
	assert.False(t, user.HasAvatar())
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetUser(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateAvatar_ReplacesGeneration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	seeded := createTestUser(t, db)

	paths := models.AvatarPaths{
		Original:  "avatars/1/g1/original.png",
		Thumbnail: "avatars/1/g1/thumbnail.png",
		Profile:   "avatars/1/g1/profile.png",
	}

	updated, err := repo.UpdateAvatar(context.Background(), seeded.ID, paths)
	require.NoError(t, err)
	assert.Equal(t, paths, updated.Avatar)
	assert.True(t, updated.HasAvatar())

	// Second generation supersedes the first wholesale
	next := models.AvatarPaths{Original: "avatars/1/g2/original.jpg"}
	updated, err = repo.UpdateAvatar(context.Background(), seeded.ID, next)
	require.NoError(t, err)
	assert.Equal(t, next, updated.Avatar)
	assert.Empty(t, updated.Avatar.Thumbnail)
}

func TestUpdateAvatar_UserNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.UpdateAvatar(context.Background(), 9999, models.AvatarPaths{Original: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestClearAvatar(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	seeded := createTestUser(t, db)

	_, err := repo.UpdateAvatar(context.Background(), seeded.ID, models.AvatarPaths{
		Original: "avatars/1/g1/original.png",
	})
	require.NoError(t, err)

	cleared, err := repo.ClearAvatar(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, cleared.HasAvatar())

	reloaded, err := repo.GetUser(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.HasAvatar())
}

func TestCreateUser_NilInput(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	assert.ErrorIs(t, repo.CreateUser(context.Background(), nil), ErrInvalidInput)
}

func TestListCountries_OrderedByTitle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCountryRepository(db)

	for _, title := range []string{"Sweden", "Brazil", "Japan"} {
		require.NoError(t, repo.CreateCountry(context.Background(), &models.Country{Title: title}))
	}

	countries, err := repo.ListCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 3)
	assert.Equal(t, "Brazil", countries[0].Title)
	assert.Equal(t, "Japan", countries[1].Title)
	assert.Equal(t, "Sweden", countries[2].Title)
}

func TestGetCountry_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCountryRepository(db)

	_, err := repo.GetCountry(context.Background(), 123)
	assert.ErrorIs(t, err, ErrCountryNotFound)
}
