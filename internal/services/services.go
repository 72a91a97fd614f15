// Package services holds the application logic behind the HTTP handlers: the
// registration lifecycle, event info, admin authentication and media files.
package services

import (
	"github.com/rs/zerolog"

	"github.com/farellandr/eventpass/config"
	"github.com/farellandr/eventpass/internal/metrics"
	"github.com/farellandr/eventpass/internal/store"
	"github.com/farellandr/eventpass/internal/tickets"
)

type Services struct {
	Registrations *RegistrationService
	Events        *EventService
	Auth          *AuthService
	Media         *MediaService

	// ProofDir is where payment proof uploads are saved.
	ProofDir string
}

// New wires every service on top of backend.
func New(backend *store.Backend, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger, authOpts ...AuthOption) *Services {
	generator := tickets.NewGenerator(cfg.TicketDir, cfg.Logistics(), cfg.LogoPath, log)
	return &Services{
		Registrations: NewRegistrationService(backend.Registrations, backend.EventInfo, generator, m, log),
		Events:        NewEventService(backend.EventInfo, cfg.Logistics(), log),
		Auth:          NewAuthService(backend.Admins, cfg.JWTSecret, cfg.SessionTTL, cfg.SecureCookies, log, authOpts...),
		Media:         NewMediaService(cfg.GalleryDir, cfg.BannerDir, log),
		ProofDir:      cfg.UploadDir,
	}
}
