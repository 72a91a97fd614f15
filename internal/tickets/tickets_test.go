package tickets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/models"
)

func decodeScanCode(t *testing.T, data []byte) string {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	result, err := zxingqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return result.GetText()
}

func registration() *models.Registration {
	return &models.Registration{
		ID:         uuid.New(),
		FullName:   "Ana Silva",
		Phone:      "71999990000",
		Email:      "ana@example.com",
		TicketType: models.TicketTypeFull,
		ProofPath:  "uploads/proofs/pix.png",
	}
}

func logistics() models.EventLogistics {
	return models.EventLogistics{Date: "20/11/2026", Time: "19h", Venue: "Igreja Central"}
}

func writeLogo(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestPayload(t *testing.T) {
	id := uuid.MustParse("0b9d6f6e-1c1e-4b8a-9a51-3f0d2a1c7e11")
	assert.Equal(t, "ingresso_id:0b9d6f6e-1c1e-4b8a-9a51-3f0d2a1c7e11", Payload(id))
}

func TestEncodeScanCode_RoundTrip(t *testing.T) {
	payload := Payload(uuid.New())

	data, err := EncodeScanCode(payload)
	require.NoError(t, err)

	assert.Equal(t, payload, decodeScanCode(t, data))
}

func TestEncodeScanCode_EmptyPayload(t *testing.T) {
	_, err := EncodeScanCode("")
	assert.ErrorIs(t, err, apperrors.ErrGeneration)
}

func TestRenderDocument(t *testing.T) {
	reg := registration()
	scanCode, err := EncodeScanCode(Payload(reg.ID))
	require.NoError(t, err)

	pdf, err := RenderDocument(Document{
		Registration: *reg,
		Event:        models.EventInfo{}.WithDefaults(),
		Logistics:    logistics(),
		ScanCode:     scanCode,
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Contains(t, string(pdf), "Ana Silva")
	assert.Contains(t, string(pdf), reg.ID.String())
	assert.Contains(t, string(pdf), "Igreja Central")
}

func TestRenderDocument_RequiresScanCode(t *testing.T) {
	_, err := RenderDocument(Document{Registration: *registration()})
	assert.ErrorIs(t, err, apperrors.ErrGeneration)
}

func TestLoadLogo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	writeLogo(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	logo, err := LoadLogo(data)
	require.NoError(t, err)
	assert.Equal(t, "png", logo.Format)

	_, err = LoadLogo([]byte("not an image"))
	assert.Error(t, err)
}

func TestGenerator_Generate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) string
	}{
		{
			name:  "without logo configured",
			setup: func(t *testing.T, dir string) string { return "" },
		},
		{
			name:  "with missing logo file",
			setup: func(t *testing.T, dir string) string { return filepath.Join(dir, "missing.png") },
		},
		{
			name: "with unusable logo file",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "logo.png")
				require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
				return path
			},
		},
		{
			name: "with logo",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "logo.png")
				writeLogo(t, path)
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			logoPath := tt.setup(t, base)
			gen := NewGenerator(filepath.Join(base, "tickets"), logistics(), logoPath, zerolog.Nop())
			reg := registration()

			artifacts, err := gen.Generate(context.Background(), reg, models.EventInfo{})
			require.NoError(t, err)
			assert.Equal(t, gen.Paths(reg.ID), artifacts)
			assert.Equal(t, "qr_"+reg.ID.String()+".png", filepath.Base(artifacts.QRCodePath))
			assert.Equal(t, "ingresso_"+reg.ID.String()+".pdf", filepath.Base(artifacts.TicketPath))

			qr, err := os.ReadFile(artifacts.QRCodePath)
			require.NoError(t, err)
			assert.Equal(t, Payload(reg.ID), decodeScanCode(t, qr))

			pdf, err := os.ReadFile(artifacts.TicketPath)
			require.NoError(t, err)
			assert.Contains(t, string(pdf), "Ana Silva")
			assert.Contains(t, string(pdf), models.DefaultEventSubtitle[:10])
		})
	}
}

func TestGenerator_WriteFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir, logistics(), "", zerolog.Nop())
	reg := registration()
	paths := gen.Paths(reg.ID)

	// A directory in place of the document makes the final rename fail.
	require.NoError(t, os.Mkdir(paths.TicketPath, 0o755))

	_, err := gen.Generate(context.Background(), reg, models.EventInfo{})
	assert.ErrorIs(t, err, apperrors.ErrStorage)

	_, err = os.Stat(paths.QRCodePath)
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(paths.TicketPath), entries[0].Name())
}

func TestGenerator_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir, logistics(), "", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, registration(), models.EventInfo{})
	assert.ErrorIs(t, err, apperrors.ErrGeneration)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerator_Discard(t *testing.T) {
	gen := NewGenerator(t.TempDir(), logistics(), "", zerolog.Nop())
	reg := registration()

	artifacts, err := gen.Generate(context.Background(), reg, models.EventInfo{Title: "Conferência 2026"})
	require.NoError(t, err)

	gen.Discard(artifacts)
	gen.Discard(artifacts)

	_, err = os.Stat(artifacts.QRCodePath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(artifacts.TicketPath)
	assert.True(t, os.IsNotExist(err))
}
