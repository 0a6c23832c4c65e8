package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/silomba/backend/internal/config"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/pkg/logger"
	"github.com/silomba/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the pool for cfg.Driver and applies migrations.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("database_connected", map[string]interface{}{
		"driver":         cfg.Driver,
		"max_open_conns": cfg.MaxOpenConns,
	})

	return db, nil
}

func openDialector(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath + "?_pragma=foreign_keys(1)"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Competition{},
		&models.AuditLog{},
	)
}

// Seed creates the super admin when no user exists yet and adds any missing
// default categories. It is safe to run repeatedly.
func Seed(db *gorm.DB, cfg config.SeedConfig) error {
	if err := seedSuperAdmin(db, cfg); err != nil {
		return err
	}
	return seedCategories(db, cfg.Categories)
}

func seedSuperAdmin(db *gorm.DB, cfg config.SeedConfig) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         cfg.SuperAdminName,
		Email:        cfg.SuperAdminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleSuperAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("super_admin_seeded", map[string]interface{}{
		"user_id": admin.ID.String(),
		"email":   admin.Email,
	})
	return nil
}

func seedCategories(db *gorm.DB, names []string) error {
	for _, name := range names {
		var category models.Category
		err := db.Where("name = ?", name).First(&category).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		category = models.Category{Name: name}
		if err := db.Create(&category).Error; err != nil {
			return err
		}
		logger.Info("category_seeded", map[string]interface{}{
			"category_id": category.ID.String(),
			"name":        name,
		})
	}
	return nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
