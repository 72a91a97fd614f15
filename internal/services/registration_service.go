package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/metrics"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/store"
	"github.com/farellandr/eventpass/internal/tickets"
	"github.com/farellandr/eventpass/internal/validation"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TicketGenerator produces and removes the ticket files of a registration.
type TicketGenerator interface {
	Generate(ctx context.Context, reg *models.Registration, info models.EventInfo) (tickets.Artifacts, error)
	Discard(artifacts tickets.Artifacts)
}

type RegistrationService struct {
	registrations store.RegistrationStore
	events        store.EventInfoStore
	generator     TicketGenerator
	metrics       *metrics.Metrics
	log           zerolog.Logger
	locks         *keyedMutex
}

func NewRegistrationService(
	registrations store.RegistrationStore,
	events store.EventInfoStore,
	generator TicketGenerator,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RegistrationService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &RegistrationService{
		registrations: registrations,
		events:        events,
		generator:     generator,
		metrics:       m,
		log:           log.With().Str("component", "registrations").Logger(),
		locks:         newKeyedMutex(),
	}
}

// Submit validates the attendee input and creates an unvalidated registration.
func (s *RegistrationService) Submit(ctx context.Context, in models.RegistrationInput) (uuid.UUID, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.SecondaryName = strings.TrimSpace(in.SecondaryName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.TicketType = models.TicketType(strings.TrimSpace(string(in.TicketType)))

	if err := validation.Struct(ctx, in); err != nil {
		return uuid.Nil, err
	}

	id, err := s.registrations.Create(ctx, in)
	if err != nil {
		return uuid.Nil, err
	}

	s.metrics.RegistrationsSubmitted.Inc()
	s.log.Info().
		Str("registration_id", id.String()).
		Str("ticket_type", string(in.TicketType)).
		Msg("registration submitted")
	return id, nil
}

func (s *RegistrationService) Get(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return s.registrations.Get(ctx, id)
}

func (s *RegistrationService) List(ctx context.Context) ([]models.Registration, error) {
	return s.registrations.List(ctx)
}

// Page returns one page of registrations plus the total count. Out-of-range
// page and limit values are clamped.
func (s *RegistrationService) Page(ctx context.Context, page, limit int) ([]models.Registration, int, error) {
	all, err := s.registrations.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Registration{}, len(all), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

// Update edits the name, contact and ticket type fields. The id, proof,
// validated flag and ticket files are never touched.
func (s *RegistrationService) Update(ctx context.Context, id uuid.UUID, upd models.RegistrationUpdate) (*models.Registration, error) {
	upd.FullName = trimPtr(upd.FullName)
	upd.SecondaryName = trimPtr(upd.SecondaryName)
	upd.Phone = trimPtr(upd.Phone)
	upd.Email = trimPtr(upd.Email)
	if upd.TicketType != nil {
		t := models.TicketType(strings.TrimSpace(string(*upd.TicketType)))
		upd.TicketType = &t
	}

	if upd.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}
	if err := validation.Struct(ctx, upd); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	registration, err := s.registrations.UpdateFields(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("registration_id", id.String()).Msg("registration updated")
	return registration, nil
}

// Validate issues the ticket for a submitted registration. A registration is
// validated at most once; a second call fails with apperrors.ErrAlreadyValidated.
func (s *RegistrationService) Validate(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	registration, err := s.registrations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if registration.Validated {
		return nil, fmt.Errorf("%w: registration %s", apperrors.ErrAlreadyValidated, id)
	}

	info, err := s.events.Get(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	artifacts, err := s.generator.Generate(ctx, registration, info)
	s.metrics.TicketGenerationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.TicketGenerationFailures.Inc()
		s.log.Error().Err(err).Str("registration_id", id.String()).Msg("ticket generation failed")
		return nil, err
	}

	validated, err := s.registrations.MarkValidated(ctx, id, artifacts.QRCodePath, artifacts.TicketPath)
	if err != nil {
		// Another process won the race and owns the files at these paths.
		if !errors.Is(err, apperrors.ErrAlreadyValidated) {
			s.generator.Discard(artifacts)
		}
		return nil, err
	}

	s.metrics.RegistrationsValidated.Inc()
	s.log.Info().Str("registration_id", id.String()).Msg("registration validated")
	return validated, nil
}

// Delete removes the registration together with its proof and ticket files.
func (s *RegistrationService) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	registration, err := s.registrations.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.removeFile(registration.ProofPath)
	if registration.QRCodePath != nil {
		s.removeFile(*registration.QRCodePath)
	}
	if registration.TicketPath != nil {
		s.removeFile(*registration.TicketPath)
	}

	s.metrics.RegistrationsDeleted.Inc()
	s.log.Info().Str("registration_id", id.String()).Msg("registration deleted")
	return nil
}

func (s *RegistrationService) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", path).Msg("failed to remove registration file")
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
