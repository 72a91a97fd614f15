package tickets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/models"
)

// Artifacts are the files written for one validated registration.
type Artifacts struct {
	QRCodePath string
	TicketPath string
}

// Generator writes QR codes and ticket documents into a single directory.
type Generator struct {
	dir       string
	logistics models.EventLogistics
	logoPath  string
	log       zerolog.Logger
}

func NewGenerator(dir string, logistics models.EventLogistics, logoPath string, log zerolog.Logger) *Generator {
	return &Generator{
		dir:       dir,
		logistics: logistics,
		logoPath:  logoPath,
		log:       log.With().Str("component", "tickets").Logger(),
	}
}

// Paths returns where the artifacts for id are written.
func (g *Generator) Paths(id uuid.UUID) Artifacts {
	return Artifacts{
		QRCodePath: filepath.Join(g.dir, fmt.Sprintf("qr_%s.png", id)),
		TicketPath: filepath.Join(g.dir, fmt.Sprintf("ingresso_%s.pdf", id)),
	}
}

// Generate writes both artifacts for reg. On error nothing is left on disk.
func (g *Generator) Generate(ctx context.Context, reg *models.Registration, info models.EventInfo) (Artifacts, error) {
	if err := ctx.Err(); err != nil {
		return Artifacts{}, fmt.Errorf("%w: %w", apperrors.ErrGeneration, err)
	}
	start := time.Now()
	paths := g.Paths(reg.ID)

	scanCode, err := EncodeScanCode(Payload(reg.ID))
	if err != nil {
		return Artifacts{}, err
	}

	doc := Document{
		Registration: *reg,
		Event:        info.WithDefaults(),
		Logistics:    g.logistics,
		ScanCode:     scanCode,
		Logo:         g.logo(),
	}
	pdf, err := RenderDocument(doc)
	if err != nil && doc.Logo != nil {
		g.log.Warn().Err(err).Str("logo", g.logoPath).Msg("rendering ticket without logo")
		doc.Logo = nil
		pdf, err = RenderDocument(doc)
	}
	if err != nil {
		return Artifacts{}, err
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("%w: create ticket directory: %w", apperrors.ErrStorage, err)
	}
	if err := writeAtomic(paths.QRCodePath, scanCode); err != nil {
		return Artifacts{}, fmt.Errorf("%w: write qr code: %w", apperrors.ErrStorage, err)
	}
	if err := writeAtomic(paths.TicketPath, pdf); err != nil {
		g.remove(paths.QRCodePath)
		return Artifacts{}, fmt.Errorf("%w: write ticket document: %w", apperrors.ErrStorage, err)
	}

	g.log.Info().
		Str("registration_id", reg.ID.String()).
		Dur("took", time.Since(start)).
		Msg("ticket generated")
	return paths, nil
}

// Discard removes previously generated artifacts, ignoring files already gone.
func (g *Generator) Discard(artifacts Artifacts) {
	g.remove(artifacts.QRCodePath)
	g.remove(artifacts.TicketPath)
}

func (g *Generator) remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		g.log.Warn().Err(err).Str("path", path).Msg("failed to remove ticket artifact")
	}
}

// logo returns nil when no logo is configured or it cannot be used.
func (g *Generator) logo() *Logo {
	if g.logoPath == "" {
		return nil
	}
	data, err := os.ReadFile(g.logoPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			g.log.Warn().Err(err).Str("logo", g.logoPath).Msg("logo unreadable")
		}
		return nil
	}
	logo, err := LoadLogo(data)
	if err != nil {
		g.log.Warn().Err(err).Str("logo", g.logoPath).Msg("logo ignored")
		return nil
	}
	return logo
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
