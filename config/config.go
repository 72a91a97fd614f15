package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farellandr/eventpass/internal/models"
)

const (
	StorageMemory   = "memory"
	StorageDatabase = "database"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port string

	StorageBackend string
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBPath         string

	JWTSecret     string
	SessionTTL    time.Duration
	SecureCookies bool
	AdminUsername string
	AdminPassword string

	UploadDir         string
	TicketDir         string
	GalleryDir        string
	BannerDir         string
	EventTitleFile    string
	EventSubtitleFile string
	LogoPath          string

	EventDate  string
	EventTime  string
	EventVenue string

	AllowedOrigins []string
	LogLevel       string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORAGE_BACKEND", StorageMemory)
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "eventpass")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "./data/eventpass.db")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "123456")
	v.SetDefault("UPLOAD_DIR", "./uploads/proofs")
	v.SetDefault("TICKET_DIR", "./uploads/tickets")
	v.SetDefault("GALLERY_DIR", "./static/gallery")
	v.SetDefault("BANNER_DIR", "./static/banners")
	v.SetDefault("EVENT_TITLE_FILE", "./data/event_title.txt")
	v.SetDefault("EVENT_SUBTITLE_FILE", "./data/event_subtitle.txt")
	v.SetDefault("LOGO_PATH", "./static/logo.png")
	v.SetDefault("EVENT_DATE", "A definir")
	v.SetDefault("EVENT_TIME", "A definir")
	v.SetDefault("EVENT_VENUE", "A definir")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
}

// LoadConfig reads the configuration from the environment (and any flags bound to
// the global viper instance), falling back to local-development defaults.
func LoadConfig() (*Config, error) {
	return loadFrom(viper.GetViper())
}

func loadFrom(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:              v.GetString("PORT"),
		StorageBackend:    strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		DBSSLMode:         v.GetString("DB_SSLMODE"),
		DBPath:            v.GetString("DB_PATH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		SecureCookies:     v.GetBool("SECURE_COOKIES"),
		AdminUsername:     v.GetString("ADMIN_USERNAME"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		TicketDir:         v.GetString("TICKET_DIR"),
		GalleryDir:        v.GetString("GALLERY_DIR"),
		BannerDir:         v.GetString("BANNER_DIR"),
		EventTitleFile:    v.GetString("EVENT_TITLE_FILE"),
		EventSubtitleFile: v.GetString("EVENT_SUBTITLE_FILE"),
		LogoPath:          v.GetString("LOGO_PATH"),
		EventDate:         v.GetString("EVENT_DATE"),
		EventTime:         v.GetString("EVENT_TIME"),
		EventVenue:        v.GetString("EVENT_VENUE"),
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
		LogLevel:          v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch cfg.StorageBackend {
	case StorageMemory, StorageDatabase:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want %s or %s)", cfg.StorageBackend, StorageMemory, StorageDatabase)
	}
	if cfg.StorageBackend == StorageDatabase {
		switch cfg.DBDriver {
		case DriverPostgres, DriverSQLite:
		default:
			return fmt.Errorf("unknown DB_DRIVER %q (want %s or %s)", cfg.DBDriver, DriverPostgres, DriverSQLite)
		}
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not configured")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}
	return nil
}

// Logistics returns the static event details printed on tickets.
func (cfg *Config) Logistics() models.EventLogistics {
	return models.EventLogistics{
		Date:  cfg.EventDate,
		Time:  cfg.EventTime,
		Venue: cfg.EventVenue,
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (cfg *Config) dialector() gorm.Dialector {
	if cfg.DBDriver == DriverSQLite {
		return sqlite.Open(cfg.DBPath)
	}
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
	)
	return postgres.Open(dsn)
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(cfg.dialector(), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == DriverSQLite {
		// SQLite allows a single writer; one connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(&models.Registration{}, &models.EventInfo{}, &models.Admin{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
