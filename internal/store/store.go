// Package store persists transactions and import logs in a relational
// database through gorm. Unique-key conflicts are translated into the
// typed outcomes the importer distinguishes from ordinary failures.
package store

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// Config holds database connection settings.
type Config struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Open connects to the configured database. TranslateError is required:
// duplicate-key detection relies on gorm.ErrDuplicatedKey.
func Open(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var db *gorm.DB
	var err error
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		db, err = gorm.Open(mysql.Open(dsn), gormCfg)
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

// Store is the gorm-backed persistence layer.
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema, including the dedup and file
// hash unique indexes.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&model.Transaction{}, &model.ImportLog{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
