package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pizza-nz/food-ordering/internal/api"
)

// pathID parses a positive integer path parameter, writing a 400 when it is not one
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		api.BadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
