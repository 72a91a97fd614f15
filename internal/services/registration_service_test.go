package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/metrics"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/store"
	"github.com/farellandr/eventpass/internal/tickets"
)

type fakeGenerator struct {
	mu        sync.Mutex
	calls     int
	err       error
	delay     time.Duration
	discarded []tickets.Artifacts
}

func (g *fakeGenerator) Generate(_ context.Context, reg *models.Registration, _ models.EventInfo) (tickets.Artifacts, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	time.Sleep(g.delay)
	if g.err != nil {
		return tickets.Artifacts{}, g.err
	}
	return tickets.Artifacts{
		QRCodePath: fmt.Sprintf("tickets/qr_%s.png", reg.ID),
		TicketPath: fmt.Sprintf("tickets/ingresso_%s.pdf", reg.ID),
	}, nil
}

func (g *fakeGenerator) Discard(artifacts tickets.Artifacts) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.discarded = append(g.discarded, artifacts)
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newBackend(t *testing.T) *store.Backend {
	t.Helper()
	dir := t.TempDir()
	return store.NewMemoryBackend(filepath.Join(dir, "title.txt"), filepath.Join(dir, "subtitle.txt"))
}

func anaSilva(proofPath string) models.RegistrationInput {
	return models.RegistrationInput{
		FullName:   "Ana Silva",
		Phone:      "71999990000",
		Email:      "ana@example.com",
		TicketType: models.TicketTypeFull,
		ProofPath:  proofPath,
	}
}

func strPtr(s string) *string { return &s }

func TestRegistrationService_Submit(t *testing.T) {
	backend := newBackend(t)
	m := metrics.New(nil)
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, &fakeGenerator{}, m, zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Submit(ctx, anaSilva("uploads/proofs/pix.png"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, got.Status())
	assert.Nil(t, got.QRCodePath)
	assert.Nil(t, got.TicketPath)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsSubmitted))
}

func TestRegistrationService_SubmitRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *models.RegistrationInput)
		field  string
	}{
		{"malformed email", func(in *models.RegistrationInput) { in.Email = "not-an-email" }, "email"},
		{"missing name", func(in *models.RegistrationInput) { in.FullName = "   " }, "full_name"},
		{"missing phone", func(in *models.RegistrationInput) { in.Phone = "" }, "phone"},
		{"unknown ticket type", func(in *models.RegistrationInput) { in.TicketType = "VIP" }, "ticket_type"},
		{"missing proof", func(in *models.RegistrationInput) { in.ProofPath = "" }, "ProofPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newBackend(t)
			svc := NewRegistrationService(backend.Registrations, backend.EventInfo, &fakeGenerator{}, nil, zerolog.Nop())
			ctx := context.Background()

			in := anaSilva("uploads/proofs/pix.png")
			tt.mutate(&in)

			_, err := svc.Submit(ctx, in)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.field)

			all, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestRegistrationService_Validate(t *testing.T) {
	backend := newBackend(t)
	m := metrics.New(nil)
	gen := &fakeGenerator{}
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, gen, m, zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Submit(ctx, anaSilva("uploads/proofs/pix.png"))
	require.NoError(t, err)

	validated, err := svc.Validate(ctx, id)
	require.NoError(t, err)
	assert.True(t, validated.Validated)
	require.True(t, validated.HasArtifacts())
	assert.Equal(t, "tickets/qr_"+id.String()+".png", *validated.QRCodePath)

	_, err = svc.Validate(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyValidated)
	assert.Equal(t, 1, gen.Calls())

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *validated.QRCodePath, *got.QRCodePath)
	assert.Equal(t, *validated.TicketPath, *got.TicketPath)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsValidated))
}

func TestRegistrationService_ValidateUnknown(t *testing.T) {
	backend := newBackend(t)
	gen := &fakeGenerator{}
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, gen, nil, zerolog.Nop())

	_, err := svc.Validate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Zero(t, gen.Calls())
}

func TestRegistrationService_ValidateGenerationFailure(t *testing.T) {
	backend := newBackend(t)
	m := metrics.New(nil)
	gen := &fakeGenerator{err: fmt.Errorf("%w: disk on fire", apperrors.ErrGeneration)}
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, gen, m, zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Submit(ctx, anaSilva("uploads/proofs/pix.png"))
	require.NoError(t, err)

	_, err = svc.Validate(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrGeneration)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Validated)
	assert.False(t, got.HasArtifacts())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicketGenerationFailures))
	assert.Zero(t, testutil.ToFloat64(m.RegistrationsValidated))

	gen.err = nil
	validated, err := svc.Validate(ctx, id)
	require.NoError(t, err)
	assert.True(t, validated.Validated)
}

func TestRegistrationService_ConcurrentValidate(t *testing.T) {
	backend := newBackend(t)
	gen := &fakeGenerator{delay: 5 * time.Millisecond}
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, gen, nil, zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Submit(ctx, anaSilva("uploads/proofs/pix.png"))
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Validate(ctx, id)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrAlreadyValidated)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, gen.Calls())
	assert.Empty(t, gen.discarded)
	assert.Zero(t, svc.locks.size())
}

type failingMarkStore struct {
	store.RegistrationStore
	err error
}

func (s failingMarkStore) MarkValidated(context.Context, uuid.UUID, string, string) (*models.Registration, error) {
	return nil, s.err
}

func TestRegistrationService_ValidateDiscardsOnPersistFailure(t *testing.T) {
	backend := newBackend(t)
	gen := &fakeGenerator{}
	registrations := failingMarkStore{RegistrationStore: backend.Registrations, err: fmt.Errorf("%w: db down", apperrors.ErrStorage)}
	svc := NewRegistrationService(registrations, backend.EventInfo, gen, nil, zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Submit(ctx, anaSilva("uploads/proofs/pix.png"))
	require.NoError(t, err)

	_, err = svc.Validate(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	require.Len(t, gen.discarded, 1)
	assert.Equal(t, "tickets/qr_"+id.String()+".png", gen.discarded[0].QRCodePath)

	registrations.err = fmt.Errorf("%w: lost race", apperrors.ErrAlreadyValidated)
	svc = NewRegistrationService(registrations, backend.EventInfo, gen, nil, zerolog.Nop())
	_, err = svc.Validate(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyValidated)
	assert.Len(t, gen.discarded, 1)
}

func TestRegistrationService_ValidateWithRealGenerator(t *testing.T) {
	backend := newBackend(t)
	dir := t.TempDir()
	gen := tickets.NewGenerator(dir, models.EventLogistics{Date: "20/11", Time: "19h", Venue: "Templo"}, "", zerolog.Nop())
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, gen, nil, zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Submit(ctx, anaSilva("uploads/proofs/pix.png"))
	require.NoError(t, err)

	validated, err := svc.Validate(ctx, id)
	require.NoError(t, err)

	pdf, err := os.ReadFile(*validated.TicketPath)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), "Ana Silva")
	assert.FileExists(t, *validated.QRCodePath)
}

func TestRegistrationService_Update(t *testing.T) {
	backend := newBackend(t)
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, &fakeGenerator{}, nil, zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Submit(ctx, anaSilva("uploads/proofs/pix.png"))
	require.NoError(t, err)
	validated, err := svc.Validate(ctx, id)
	require.NoError(t, err)

	half := models.TicketTypeHalf
	updated, err := svc.Update(ctx, id, models.RegistrationUpdate{
		FullName:   strPtr("  Ana Maria Silva "),
		Email:      strPtr("ana.maria@example.com"),
		TicketType: &half,
	})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "Ana Maria Silva", updated.FullName)
	assert.Equal(t, "ana.maria@example.com", updated.Email)
	assert.Equal(t, models.TicketTypeHalf, updated.TicketType)
	assert.True(t, updated.Validated)
	assert.Equal(t, *validated.QRCodePath, *updated.QRCodePath)
	assert.Equal(t, *validated.TicketPath, *updated.TicketPath)
	assert.Equal(t, "uploads/proofs/pix.png", updated.ProofPath)
}

func TestRegistrationService_UpdateRejects(t *testing.T) {
	backend := newBackend(t)
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, &fakeGenerator{}, nil, zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Submit(ctx, anaSilva("uploads/proofs/pix.png"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, id, models.RegistrationUpdate{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Update(ctx, id, models.RegistrationUpdate{Email: strPtr("nope")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Update(ctx, id, models.RegistrationUpdate{FullName: strPtr("  ")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Update(ctx, uuid.New(), models.RegistrationUpdate{Phone: strPtr("123")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "Ana Silva", got.FullName)
}

func TestRegistrationService_Delete(t *testing.T) {
	backend := newBackend(t)
	dir := t.TempDir()
	gen := tickets.NewGenerator(filepath.Join(dir, "tickets"), models.EventLogistics{}, "", zerolog.Nop())
	m := metrics.New(nil)
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, gen, m, zerolog.Nop())
	ctx := context.Background()

	proof := filepath.Join(dir, "proof.png")
	require.NoError(t, os.WriteFile(proof, []byte("proof"), 0o644))

	id, err := svc.Submit(ctx, anaSilva(proof))
	require.NoError(t, err)
	validated, err := svc.Validate(ctx, id)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoFileExists(t, proof)
	assert.NoFileExists(t, *validated.QRCodePath)
	assert.NoFileExists(t, *validated.TicketPath)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsDeleted))

	err = svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegistrationService_Page(t *testing.T) {
	backend := newBackend(t)
	svc := NewRegistrationService(backend.Registrations, backend.EventInfo, &fakeGenerator{}, nil, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Submit(ctx, anaSilva(fmt.Sprintf("uploads/proofs/%d.png", i)))
		require.NoError(t, err)
	}

	page, total, err := svc.Page(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "uploads/proofs/2.png", page[0].ProofPath)

	page, _, err = svc.Page(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, _, err = svc.Page(ctx, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, _, err = svc.Page(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, 5)
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()
	id := uuid.New()

	unlock := k.Lock(id)
	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		k.Lock(id)()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(20 * time.Millisecond):
	}

	otherUnlock := k.Lock(uuid.New())
	otherUnlock()

	unlock()
	<-acquired
	assert.Zero(t, k.size())
}
