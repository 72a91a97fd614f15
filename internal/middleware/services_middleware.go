package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/services"
)

const servicesKey = "services"

func ServicesMiddleware(svc *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(servicesKey, svc)
		c.Next()
	}
}

func GetServices(c *gin.Context) *services.Services {
	svc, exists := c.Get(servicesKey)
	if !exists {
		return nil
	}
	return svc.(*services.Services)
}
