package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/lessonforge/planner-api/pkg/errors"
)

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}
