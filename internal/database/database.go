package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/governance-api/internal/config"
	"github.com/yukikurage/governance-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Dialector builds the GORM dialector for the configured driver.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Name), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func Connect(cfg *config.Config) error {
	dialector, err := Dialector(cfg.Database)
	if err != nil {
		return err
	}

	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", "driver", cfg.Database.Driver)
	return nil
}

// AllModels lists every table managed by this service, in migration order.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.Organization{},
		&models.OrganizationSetting{},
		&models.Membership{},
		&models.Resolution{},
		&models.Meeting{},
		&models.AgendaItem{},
		&models.Attendance{},
		&models.Vote{},
		&models.Ballot{},
	}
}

func Migrate() error {
	slog.Info("running database migrations")
	if err := DB.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(DB); err != nil {
		return err
	}
	slog.Info("database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
