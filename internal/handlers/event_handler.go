package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/models"
)

const (
	GalleryURLPrefix = "/static/gallery/"
	BannerURLPrefix  = "/static/banners/"
)

type UpdateEventRequest struct {
	Title    string `json:"title" form:"title"`
	Subtitle string `json:"subtitle" form:"subtitle"`
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Home returns everything the public landing page shows.
func Home(c *gin.Context) {
	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	info, err := svc.Events.Info(c.Request.Context())
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load event info.")
		return
	}

	photos, err := svc.Media.GalleryPhotos()
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load gallery.")
		return
	}
	banner, err := svc.Media.LatestBanner()
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load banner.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":        info,
		"logistics":    svc.Events.Logistics(),
		"ticket_types": models.TicketTypes,
		"gallery":      galleryURLs(photos),
		"banner":       bannerURL(banner),
	})
}

// Dashboard returns the admin overview: event info and every registration.
func Dashboard(c *gin.Context) {
	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	info, err := svc.Events.Info(c.Request.Context())
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load event info.")
		return
	}
	registrations, err := svc.Registrations.List(c.Request.Context())
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load registrations.")
		return
	}

	validated := 0
	items := make([]gin.H, 0, len(registrations))
	for i := range registrations {
		if registrations[i].Validated {
			validated++
		}
		items = append(items, registrationResponse(&registrations[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"event":         info,
		"logistics":     svc.Events.Logistics(),
		"registrations": items,
		"counts": gin.H{
			"total":     len(registrations),
			"validated": validated,
			"submitted": len(registrations) - validated,
		},
	})
}

func UpdateEvent(c *gin.Context) {
	var req UpdateEventRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	info, err := svc.Events.Update(c.Request.Context(), req.Title, req.Subtitle)
	if errors.Is(err, apperrors.ErrValidation) {
		// The non-blank field was still saved; report the current state with the error.
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   helpers.HTTPStatusText(http.StatusBadRequest),
			"message": err.Error(),
			"event":   info,
		})
		return
	}
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to update event info.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event info updated successfully.",
		"event":   info,
	})
}

func galleryURLs(photos []string) []string {
	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		urls = append(urls, GalleryURLPrefix+photo)
	}
	return urls
}

func bannerURL(banner string) *string {
	if banner == "" {
		return nil
	}
	url := BannerURLPrefix + banner
	return &url
}
