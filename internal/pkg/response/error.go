package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trailstay/booking-backend/internal/pkg/apperror"
)

// ErrorResponse is the JSON envelope for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes a JSON error response. AppErrors carry their own status code;
// anything else is reported as a 500 without leaking internals.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
