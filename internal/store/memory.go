package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/models"
)

// MemoryRegistrationStore keeps registrations in a map and lists them in
// insertion order. Its state is lost when the process exits.
type MemoryRegistrationStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*models.Registration
	order   []uuid.UUID
	issued  map[uuid.UUID]struct{}
	now     func() time.Time
}

var _ RegistrationStore = (*MemoryRegistrationStore)(nil)

func NewMemoryRegistrationStore() *MemoryRegistrationStore {
	return &MemoryRegistrationStore{
		records: make(map[uuid.UUID]*models.Registration),
		issued:  make(map[uuid.UUID]struct{}),
		now:     time.Now,
	}
}

func (s *MemoryRegistrationStore) Create(_ context.Context, in models.RegistrationInput) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	for {
		if _, used := s.issued[id]; !used {
			break
		}
		id = uuid.New()
	}
	s.issued[id] = struct{}{}

	now := s.now().UTC()
	registration := &models.Registration{
		ID:         id,
		FullName:   in.FullName,
		Phone:      in.Phone,
		Email:      in.Email,
		TicketType: in.TicketType,
		ProofPath:  in.ProofPath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.SecondaryName != "" {
		secondary := in.SecondaryName
		registration.SecondaryName = &secondary
	}

	s.records[id] = registration
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryRegistrationStore) Get(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registration, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return registration.Clone(), nil
}

func (s *MemoryRegistrationStore) List(_ context.Context) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registrations := make([]models.Registration, 0, len(s.order))
	for _, id := range s.order {
		registrations = append(registrations, *s.records[id].Clone())
	}
	return registrations, nil
}

func (s *MemoryRegistrationStore) UpdateFields(_ context.Context, id uuid.UUID, upd models.RegistrationUpdate) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	registration, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	if !upd.Empty() {
		upd.Apply(registration)
		registration.UpdatedAt = s.now().UTC()
	}
	return registration.Clone(), nil
}

func (s *MemoryRegistrationStore) MarkValidated(_ context.Context, id uuid.UUID, qrCodePath, ticketPath string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	registration, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	if registration.Validated {
		return nil, alreadyValidated(id)
	}

	now := s.now().UTC()
	registration.Validated = true
	registration.QRCodePath = &qrCodePath
	registration.TicketPath = &ticketPath
	registration.ValidatedAt = &now
	registration.UpdatedAt = now
	return registration.Clone(), nil
}

func (s *MemoryRegistrationStore) Delete(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	registration, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return registration, nil
}

// MemoryAdminStore holds the admin credential for the lifetime of the process.
type MemoryAdminStore struct {
	mu    sync.RWMutex
	admin *models.Admin
}

var _ AdminStore = (*MemoryAdminStore)(nil)

func NewMemoryAdminStore() *MemoryAdminStore {
	return &MemoryAdminStore{}
}

func (s *MemoryAdminStore) Seed(_ context.Context, username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admin != nil {
		return nil
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: admin username is required", apperrors.ErrValidation)
	}
	now := time.Now().UTC()
	s.admin = &models.Admin{ID: 1, Username: username, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (s *MemoryAdminStore) Get(_ context.Context) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.admin == nil {
		return nil, fmt.Errorf("%w: admin not seeded", apperrors.ErrNotFound)
	}
	admin := *s.admin
	return &admin, nil
}

func (s *MemoryAdminStore) SetPasswordHash(_ context.Context, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admin == nil {
		return fmt.Errorf("%w: admin not seeded", apperrors.ErrNotFound)
	}
	s.admin.PasswordHash = passwordHash
	s.admin.UpdatedAt = time.Now().UTC()
	return nil
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("%w: registration %s", apperrors.ErrNotFound, id)
}

func alreadyValidated(id uuid.UUID) error {
	return fmt.Errorf("%w: registration %s", apperrors.ErrAlreadyValidated, id)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperrors.ErrStorage, op, err)
}
