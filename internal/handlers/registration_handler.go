package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/services"
)

func registrationResponse(reg *models.Registration) gin.H {
	resp := gin.H{
		"id":             reg.ID,
		"full_name":      reg.FullName,
		"secondary_name": reg.SecondaryName,
		"phone":          reg.Phone,
		"email":          reg.Email,
		"ticket_type":    reg.TicketType,
		"status":         reg.Status(),
		"validated":      reg.Validated,
		"validated_at":   reg.ValidatedAt,
		"created_at":     reg.CreatedAt,
		"updated_at":     reg.UpdatedAt,
		"proof_url":      "/v1/admin/registrations/" + reg.ID.String() + "/proof",
	}
	if reg.HasArtifacts() {
		resp["qr_code_url"] = "/v1/tickets/" + reg.ID.String() + "/qrcode"
		resp["ticket_url"] = "/v1/tickets/" + reg.ID.String() + "/document"
	}
	return resp
}

// Register accepts the public registration form with its payment proof image.
func Register(c *gin.Context) {
	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	proof, err := c.FormFile("payment_proof")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "payment_proof is required")
		return
	}

	proofPath, err := helpers.UploadFile(c, proof, helpers.DefaultImageUploadConfig.In(svc.ProofDir))
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to save payment proof.")
		return
	}

	input := models.RegistrationInput{
		FullName:      c.PostForm("full_name"),
		SecondaryName: c.PostForm("secondary_name"),
		Phone:         c.PostForm("phone"),
		Email:         c.PostForm("email"),
		TicketType:    models.TicketType(c.PostForm("ticket_type")),
		ProofPath:     proofPath,
	}

	id, err := svc.Registrations.Submit(c.Request.Context(), input)
	if err != nil {
		if rmErr := helpers.DeleteFile(proofPath); rmErr != nil {
			_ = c.Error(rmErr)
		}
		helpers.RespondWithAppError(c, err, "Failed to create registration.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Registration submitted successfully.",
		"registration_id": id,
	})
}

func ListRegistrations(c *gin.Context) {
	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	page := helpers.QueryInt(c, "page", 1)
	limit := helpers.QueryInt(c, "limit", services.DefaultPageSize)

	registrations, total, err := svc.Registrations.Page(c.Request.Context(), page, limit)
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to list registrations.")
		return
	}

	items := make([]gin.H, 0, len(registrations))
	for i := range registrations {
		items = append(items, registrationResponse(&registrations[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"registrations": items,
		"page":          page,
		"limit":         limit,
		"total":         total,
	})
}

func GetRegistration(c *gin.Context) {
	id, ok := helpers.ParseUUIDParam(c, "id")
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid registration ID.")
		return
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	registration, err := svc.Registrations.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load registration.")
		return
	}

	c.JSON(http.StatusOK, registrationResponse(registration))
}

func UpdateRegistration(c *gin.Context) {
	id, ok := helpers.ParseUUIDParam(c, "id")
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid registration ID.")
		return
	}

	var req models.RegistrationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	registration, err := svc.Registrations.Update(c.Request.Context(), id, req)
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to update registration.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Registration updated successfully.",
		"registration": registrationResponse(registration),
	})
}

func DeleteRegistration(c *gin.Context) {
	id, ok := helpers.ParseUUIDParam(c, "id")
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid registration ID.")
		return
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	if err := svc.Registrations.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithAppError(c, err, "Failed to delete registration.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration deleted successfully."})
}

func ValidateRegistration(c *gin.Context) {
	id, ok := helpers.ParseUUIDParam(c, "id")
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid registration ID.")
		return
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	registration, err := svc.Registrations.Validate(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to validate registration.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Ticket for " + registration.FullName + " validated successfully.",
		"registration": registrationResponse(registration),
	})
}

func GetPaymentProof(c *gin.Context) {
	id, ok := helpers.ParseUUIDParam(c, "id")
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid registration ID.")
		return
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	registration, err := svc.Registrations.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load registration.")
		return
	}

	serveFile(c, registration.ProofPath, "Payment proof not found.")
}
