package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/models"
)

// GormRegistrationStore keeps registrations in the registrations table.
type GormRegistrationStore struct {
	db *gorm.DB
}

var _ RegistrationStore = (*GormRegistrationStore)(nil)

func NewGormRegistrationStore(db *gorm.DB) *GormRegistrationStore {
	return &GormRegistrationStore{db: db}
}

func (s *GormRegistrationStore) Create(ctx context.Context, in models.RegistrationInput) (uuid.UUID, error) {
	registration := models.Registration{
		ID:         uuid.New(),
		FullName:   in.FullName,
		Phone:      in.Phone,
		Email:      in.Email,
		TicketType: in.TicketType,
		ProofPath:  in.ProofPath,
	}
	if in.SecondaryName != "" {
		secondary := in.SecondaryName
		registration.SecondaryName = &secondary
	}

	if err := s.db.WithContext(ctx).Create(&registration).Error; err != nil {
		return uuid.Nil, storageError("create registration", err)
	}
	return registration.ID, nil
}

func (s *GormRegistrationStore) Get(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return s.get(s.db.WithContext(ctx), id)
}

func (s *GormRegistrationStore) get(tx *gorm.DB, id uuid.UUID) (*models.Registration, error) {
	var registration models.Registration
	if err := tx.Where("id = ?", id).First(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, storageError("get registration", err)
	}
	return &registration, nil
}

func (s *GormRegistrationStore) List(ctx context.Context) ([]models.Registration, error) {
	var registrations []models.Registration
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&registrations).Error; err != nil {
		return nil, storageError("list registrations", err)
	}
	return registrations, nil
}

func (s *GormRegistrationStore) UpdateFields(ctx context.Context, id uuid.UUID, upd models.RegistrationUpdate) (*models.Registration, error) {
	var updated *models.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.get(tx, id); err != nil {
			return err
		}
		if columns := upd.Columns(); len(columns) > 0 {
			err := tx.Model(&models.Registration{}).Where("id = ?", id).Updates(columns).Error
			if err != nil {
				return storageError("update registration", err)
			}
		}
		registration, err := s.get(tx, id)
		if err != nil {
			return err
		}
		updated = registration
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkValidated relies on a single conditional UPDATE so the flag and both paths
// become visible together, and only one caller can win.
func (s *GormRegistrationStore) MarkValidated(ctx context.Context, id uuid.UUID, qrCodePath, ticketPath string) (*models.Registration, error) {
	db := s.db.WithContext(ctx)
	now := time.Now().UTC()

	result := db.Model(&models.Registration{}).
		Where("id = ? AND validated = ?", id, false).
		Updates(map[string]interface{}{
			"validated":    true,
			"qr_code_path": qrCodePath,
			"ticket_path":  ticketPath,
			"validated_at": now,
		})
	if result.Error != nil {
		return nil, storageError("mark registration validated", result.Error)
	}

	registration, err := s.get(db, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, alreadyValidated(id)
	}
	return registration, nil
}

func (s *GormRegistrationStore) Delete(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var deleted *models.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		registration, err := s.get(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Registration{}, "id = ?", id).Error; err != nil {
			return storageError("delete registration", err)
		}
		deleted = registration
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// GormEventInfoStore keeps the title and subtitle in the single event_infos row.
type GormEventInfoStore struct {
	db *gorm.DB
}

var _ EventInfoStore = (*GormEventInfoStore)(nil)

func NewGormEventInfoStore(db *gorm.DB) *GormEventInfoStore {
	return &GormEventInfoStore{db: db}
}

func (s *GormEventInfoStore) Get(ctx context.Context) (models.EventInfo, error) {
	var info models.EventInfo
	err := s.db.WithContext(ctx).Where("id = ?", models.EventInfoID).First(&info).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.EventInfo{}, storageError("get event info", err)
	}
	info.ID = models.EventInfoID
	return info.WithDefaults(), nil
}

func (s *GormEventInfoStore) SetTitle(ctx context.Context, title string) error {
	return s.upsert(ctx, models.EventInfo{ID: models.EventInfoID, Title: title}, "title")
}

func (s *GormEventInfoStore) SetSubtitle(ctx context.Context, subtitle string) error {
	return s.upsert(ctx, models.EventInfo{ID: models.EventInfoID, Subtitle: subtitle}, "subtitle")
}

func (s *GormEventInfoStore) upsert(ctx context.Context, info models.EventInfo, column string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{column, "updated_at"}),
	}).Create(&info).Error
	if err != nil {
		return storageError("set event "+column, err)
	}
	return nil
}

// GormAdminStore keeps the admin credential in the admins table.
type GormAdminStore struct {
	db *gorm.DB
}

var _ AdminStore = (*GormAdminStore)(nil)

func NewGormAdminStore(db *gorm.DB) *GormAdminStore {
	return &GormAdminStore{db: db}
}

func (s *GormAdminStore) Seed(ctx context.Context, username, passwordHash string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: admin username is required", apperrors.ErrValidation)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Admin{}).Count(&count).Error; err != nil {
			return storageError("count admins", err)
		}
		if count > 0 {
			return nil
		}
		admin := models.Admin{Username: username, PasswordHash: passwordHash}
		if err := tx.Create(&admin).Error; err != nil {
			return storageError("seed admin", err)
		}
		return nil
	})
}

func (s *GormAdminStore) Get(ctx context.Context) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).Order("id ASC").First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: admin not seeded", apperrors.ErrNotFound)
		}
		return nil, storageError("get admin", err)
	}
	return &admin, nil
}

func (s *GormAdminStore) SetPasswordHash(ctx context.Context, passwordHash string) error {
	admin, err := s.Get(ctx)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(admin).Update("password_hash", passwordHash).Error
	if err != nil {
		return storageError("update admin password", err)
	}
	return nil
}
