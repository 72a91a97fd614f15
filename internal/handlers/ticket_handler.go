package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/models"
)

func GetTicketQRCode(c *gin.Context) {
	registration, ok := validatedRegistration(c)
	if !ok {
		return
	}
	serveFile(c, *registration.QRCodePath, "Ticket not found.")
}

func GetTicketDocument(c *gin.Context) {
	registration, ok := validatedRegistration(c)
	if !ok {
		return
	}
	if !fileExists(*registration.TicketPath) {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}
	c.FileAttachment(*registration.TicketPath, "ingresso_"+registration.ID.String()+".pdf")
}

// validatedRegistration loads the registration named by :id and answers 404
// unless its ticket has been issued.
func validatedRegistration(c *gin.Context) (*models.Registration, bool) {
	id, ok := helpers.ParseUUIDParam(c, "id")
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return nil, false
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return nil, false
	}

	registration, err := svc.Registrations.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load ticket.")
		return nil, false
	}
	if !registration.Validated || !registration.HasArtifacts() {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return nil, false
	}
	return registration, true
}

func serveFile(c *gin.Context, path, notFound string) {
	if !fileExists(path) {
		helpers.RespondWithError(c, http.StatusNotFound, notFound)
		return
	}
	c.File(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
