package seed

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SergeySenin/user-service/internal/logger"
	"github.com/SergeySenin/user-service/internal/models"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

var countryTitles = []string{
	"United States", "Germany", "France", "Japan", "Brazil",
	"Canada", "Australia", "Netherlands", "Sweden", "Poland",
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating countries...")
	countries, err := s.seedCountries()
	if err != nil {
		return fmt.Errorf("failed to seed countries: %w", err)
	}

	logger.Log.Info("Creating users...")
	if err := s.seedUsers(countries, 50); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	return nil
}

// SeedTest seeds a minimal data set for integration tests
func (s *Seeder) SeedTest() error {
	countries, err := s.seedCountries()
	if err != nil {
		return fmt.Errorf("failed to seed countries: %w", err)
	}

	return s.seedUsers(countries, 5)
}

// Clean removes all seeded records
func (s *Seeder) Clean() error {
	if err := s.db.Exec("DELETE FROM users").Error; err != nil {
		return fmt.Errorf("failed to clean users: %w", err)
	}
	if err := s.db.Exec("DELETE FROM countries").Error; err != nil {
		return fmt.Errorf("failed to clean countries: %w", err)
	}
	return nil
}

func (s *Seeder) seedCountries() ([]models.Country, error) {
	countries := make([]models.Country, 0, len(countryTitles))
	for _, title := range countryTitles {
		country := models.Country{Title: title}
		err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&country).Error
		if err != nil {
			return nil, err
		}
		if country.ID == 0 {
			if err := s.db.Where("title = ?", title).First(&country).Error; err != nil {
				return nil, err
			}
		}
		countries = append(countries, country)
	}
	return countries, nil
}

func (s *Seeder) seedUsers(countries []models.Country, count int) error {
	for i := 0; i < count; i++ {
		experience := int16(gofakeit.Number(0, 30))
		user := models.User{
			Username:   fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:      fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Phone:      fmt.Sprintf("+1%010d", gofakeit.Number(1000000000, 9999999999)),
			Active:     true,
			AboutMe:    gofakeit.Sentence(12),
			CountryID:  countries[gofakeit.Number(0, len(countries)-1)].ID,
			City:       gofakeit.City(),
			Experience: &experience,
		}

		if err := s.db.Create(&user).Error; err != nil {
			return err
		}
	}
	return nil
}
