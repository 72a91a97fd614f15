// Package store holds the registration, event-info and admin-credential stores.
// Every store has an in-process implementation and a gorm implementation with the
// same contract; Open picks one family at startup from the configuration.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/eventpass/config"
	"github.com/farellandr/eventpass/internal/models"
)

// RegistrationStore owns registration records.
type RegistrationStore interface {
	// Create persists a new unvalidated registration and returns its fresh id.
	Create(ctx context.Context, in models.RegistrationInput) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	// List returns every registration. Order is backend specific.
	List(ctx context.Context) ([]models.Registration, error)
	// UpdateFields overwrites only the name, contact and ticket type fields present in upd.
	UpdateFields(ctx context.Context, id uuid.UUID, upd models.RegistrationUpdate) (*models.Registration, error)
	// MarkValidated sets the validated flag together with both artifact paths, only
	// if the registration is not validated yet. It returns apperrors.ErrAlreadyValidated
	// otherwise and leaves the record untouched.
	MarkValidated(ctx context.Context, id uuid.UUID, qrCodePath, ticketPath string) (*models.Registration, error)
	// Delete removes the registration and returns the removed record.
	Delete(ctx context.Context, id uuid.UUID) (*models.Registration, error)
}

// EventInfoStore owns the single event title/subtitle record. Get falls back to
// the built-in defaults for fields that were never set.
type EventInfoStore interface {
	Get(ctx context.Context) (models.EventInfo, error)
	SetTitle(ctx context.Context, title string) error
	SetSubtitle(ctx context.Context, subtitle string) error
}

// AdminStore owns the single admin credential.
type AdminStore interface {
	// Seed creates the admin when none exists yet; an existing admin is kept as is.
	Seed(ctx context.Context, username, passwordHash string) error
	Get(ctx context.Context) (*models.Admin, error)
	SetPasswordHash(ctx context.Context, passwordHash string) error
}

// Backend groups the stores of one storage family.
type Backend struct {
	Registrations RegistrationStore
	EventInfo     EventInfoStore
	Admins        AdminStore

	db *gorm.DB
}

// Open builds the backend selected by cfg.StorageBackend.
func Open(cfg *config.Config) (*Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.StorageBackend {
	case config.StorageDatabase:
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return NewDatabaseBackend(db), nil
	case config.StorageMemory:
		return NewMemoryBackend(cfg.EventTitleFile, cfg.EventSubtitleFile), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

// NewMemoryBackend keeps registrations and the admin in process memory and the
// event info in two flat files.
func NewMemoryBackend(titleFile, subtitleFile string) *Backend {
	return &Backend{
		Registrations: NewMemoryRegistrationStore(),
		EventInfo:     NewFileEventInfoStore(titleFile, subtitleFile),
		Admins:        NewMemoryAdminStore(),
	}
}

func NewDatabaseBackend(db *gorm.DB) *Backend {
	return &Backend{
		Registrations: NewGormRegistrationStore(db),
		EventInfo:     NewGormEventInfoStore(db),
		Admins:        NewGormAdminStore(db),
		db:            db,
	}
}

// Close releases the database connection pool, if any.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
