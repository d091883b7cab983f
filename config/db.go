package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"travel-backend/models"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase opens the configured database, migrates the schema and
// seeds reference data.
func ConnectDatabase(ctx context.Context, cfg Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormLog := log.Logger.With().Str("component", "gorm").Logger()
	newLogger := logger.New(
		&gormLog,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(cfg),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := SeedDatabase(ctx, db, cfg); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return db, nil
}

// CloseDatabase releases the pool behind db.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates every table, parents before children.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.OTPVerification{},
		&models.OutstandingToken{},
		&models.Category{},
		&models.Destination{},
		&models.DestinationRate{},
		&models.Tour{},
	)
}

func gormLogLevel(cfg Config) logger.LogLevel {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "trace":
		return logger.Info
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

// Dialector picks the gorm driver for DB_DRIVER.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.DBDriver)) {
	case "", "mysql":
		dsn, err := ResolveMySQLDSN(cfg)
		if err != nil {
			return nil, err
		}
		return gormmysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(ResolvePostgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// ResolveMySQLDSN builds a go-sql-driver DSN from MYSQL_URL / DATABASE_URL
// (either mysql:// URLs or raw DSNs) or from the discrete DB_* settings.
func ResolveMySQLDSN(cfg Config) (string, error) {
	raw := strings.TrimSpace(cfg.MySQLURL)
	if raw == "" {
		raw = strings.TrimSpace(cfg.DBURL)
	}

	var mc *mysql.Config
	switch {
	case strings.HasPrefix(raw, "mysql://"):
		parsed, err := mysqlConfigFromURL(raw)
		if err != nil {
			return "", err
		}
		mc = parsed
	case raw != "":
		// A raw DSN keeps its own options; only parseTime is forced.
		parsed, err := mysql.ParseDSN(raw)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		if parsed.DBName == "" {
			return "", errors.New("mysql dsn missing database name")
		}
		parsed.ParseTime = true
		return parsed.FormatDSN(), nil
	default:
		mc = mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPass
		mc.Net = "tcp"
		port := cfg.DBPort
		if port == "" {
			port = "3306"
		}
		mc.Addr = fmt.Sprintf("%s:%s", cfg.DBHost, port)
		mc.DBName = cfg.DBName
	}

	if mc.DBName == "" {
		return "", errors.New("mysql dsn missing database name")
	}
	mc.ParseTime = true
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	if _, ok := mc.Params["charset"]; !ok {
		mc.Params["charset"] = "utf8mb4"
	}
	return mc.FormatDSN(), nil
}

func mysqlConfigFromURL(raw string) (*mysql.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	mc := mysql.NewConfig()
	mc.User = u.User.Username()
	mc.Passwd, _ = u.User.Password()
	mc.Net = "tcp"

	port := u.Port()
	if port == "" {
		port = "3306"
	}
	mc.Addr = fmt.Sprintf("%s:%s", u.Hostname(), port)

	mc.DBName = strings.TrimPrefix(u.Path, "/")
	if mc.DBName == "" {
		return nil, fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if len(q) > 0 {
		mc.Params = map[string]string{}
		for k := range q {
			if k == "parseTime" || k == "loc" {
				continue
			}
			mc.Params[k] = q.Get(k)
		}
	}
	return mc, nil
}

// ResolvePostgresDSN prefers DATABASE_URL and otherwise builds a key/value DSN.
func ResolvePostgresDSN(cfg Config) string {
	if raw := strings.TrimSpace(cfg.DBURL); raw != "" {
		return raw
	}
	port := cfg.DBPort
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, port, cfg.DBUser, cfg.DBPass, cfg.DBName)
}

// SeedDatabase inserts the predefined categories and, when ADMIN_EMAIL and
// ADMIN_PASSWORD are set, an active staff account.
func SeedDatabase(ctx context.Context, db *gorm.DB, cfg Config) error {
	db = db.WithContext(ctx)

	// ---------------- Categories ----------------
	var catCount int64
	if err := db.Model(&models.Category{}).Count(&catCount).Error; err != nil {
		return err
	}
	if catCount == 0 {
		names := []string{
			models.CategoryInstitutions,
			models.CategoryNationalPark,
			models.CategoryCamping,
			models.CategoryRockClimbing,
			models.CategoryOther,
		}
		categories := make([]models.Category, 0, len(names))
		for _, name := range names {
			categories = append(categories, models.Category{Name: name, Slug: name})
		}
		if err := db.Create(&categories).Error; err != nil {
			return err
		}
		log.Info().Int("count", len(categories)).Msg("categories seeded")
	}

	// ---------------- Staff ----------------
	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}
	var staffCount int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&staffCount).Error; err != nil {
		return err
	}
	if staffCount > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: email,
		Email:    email,
		Password: string(hash),
		IsActive: true,
		IsStaff:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("staff account seeded")
	return nil
}
