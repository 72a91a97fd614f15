package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// QueryInt reads an integer query parameter, returning def when it is absent or malformed.
func QueryInt(c *gin.Context, key string, def int) int {
	value, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	n, err := StringToInt(value)
	if err != nil {
		return def
	}
	return n
}

func ParseUUIDParam(c *gin.Context, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
