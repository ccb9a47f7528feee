package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a connected GORM DB for the given database URL. The URL
// scheme selects the driver: postgres:// or mysql:// for the production
// stores, anything else is treated as a SQLite path. TranslateError is
// enabled so duplicate-key violations surface as gorm.ErrDuplicatedKey
// regardless of driver.
func Open(url string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}

	var (
		conn *gorm.DB
		err  error
	)
	switch {
	case strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://"):
		conn, err = gorm.Open(postgres.Open(url), cfg)
	case strings.HasPrefix(url, "mysql://"):
		conn, err = gorm.Open(mysql.Open(strings.TrimPrefix(url, "mysql://")), cfg)
	default:
		conn, err = gorm.Open(sqlite.Open(strings.TrimPrefix(url, "sqlite:")), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return conn, nil
}
