package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/farellandr/eventpass/config"
	"github.com/farellandr/eventpass/internal/handlers"
	"github.com/farellandr/eventpass/internal/metrics"
	"github.com/farellandr/eventpass/internal/middleware"
	"github.com/farellandr/eventpass/internal/services"
	"github.com/farellandr/eventpass/internal/store"
)

const (
	maxMultipartMemory = 16 << 20
	shutdownTimeout    = 10 * time.Second
)

func Start(cfg *config.Config, log zerolog.Logger) error {
	for _, dir := range []string{cfg.UploadDir, cfg.TicketDir, cfg.GalleryDir, cfg.BannerDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	backend, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := services.New(backend, cfg, metrics.New(registry), log)
	if err := svc.Auth.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(svc, cfg, log, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageBackend).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(svc *services.Services, cfg *config.Config, log zerolog.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(gin.Recovery(), middleware.LoggingMiddleware(log))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Static(handlers.GalleryURLPrefix, cfg.GalleryDir)
	r.Static(handlers.BannerURLPrefix, cfg.BannerDir)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/health", handlers.Health)

	setupRoutes(r, svc)
	return r
}

func setupRoutes(r *gin.Engine, svc *services.Services) {
	r.Use(middleware.ServicesMiddleware(svc))

	public := r.Group("/v1")
	{
		public.GET("/", handlers.Home)
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
		public.POST("/logout", handlers.Logout)

		ticketPublic := public.Group("/tickets")
		{
			ticketPublic.GET("/:id/qrcode", handlers.GetTicketQRCode)
			ticketPublic.GET("/:id/document", handlers.GetTicketDocument)
		}
	}

	admin := r.Group("/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware())
	{
		admin.GET("", handlers.Dashboard)
		admin.PUT("/event", handlers.UpdateEvent)
		admin.PUT("/password", handlers.ChangePassword)

		registrations := admin.Group("/registrations")
		{
			registrations.GET("", handlers.ListRegistrations)
			registrations.GET("/:id", handlers.GetRegistration)
			registrations.PUT("/:id", handlers.UpdateRegistration)
			registrations.DELETE("/:id", handlers.DeleteRegistration)
			registrations.POST("/:id/validate", handlers.ValidateRegistration)
			registrations.GET("/:id/proof", handlers.GetPaymentProof)
		}

		admin.GET("/media", handlers.ListMedia)
		admin.POST("/media", handlers.UploadMedia)
		admin.DELETE("/gallery/:filename", handlers.DeleteGalleryPhoto)
		admin.DELETE("/banner", handlers.DeleteBanner)
	}
}
