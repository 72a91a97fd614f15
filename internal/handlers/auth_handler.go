package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/middleware"
	"github.com/farellandr/eventpass/internal/services"
)

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" binding:"required"`
	NewPassword string `json:"new_password" form:"new_password" binding:"required"`
}

// servicesFrom fetches the service container or answers 500 when it is missing.
func servicesFrom(c *gin.Context) (*services.Services, bool) {
	svc := middleware.GetServices(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not configured.")
		return nil, false
	}
	return svc, true
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	token, err := svc.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to log in.")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(svc.Auth.SessionTTL().Seconds()), "/", "", svc.Auth.SecureCookie(), true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully.",
		"token":   token,
	})
}

func Logout(c *gin.Context) {
	secure := false
	if svc := middleware.GetServices(c); svc != nil {
		secure = svc.Auth.SecureCookie()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

func ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	if err := svc.Auth.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword); err != nil {
		helpers.RespondWithAppError(c, err, "Failed to change the password.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully."})
}
