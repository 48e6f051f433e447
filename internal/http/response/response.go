package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rateio-sync-backend/internal/platform/apierr"
)

// ErrorEnvelope is the only error shape callers see.
type ErrorEnvelope struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	RespondErrorDetails(c, status, code, err, nil)
}

func RespondErrorDetails(c *gin.Context, status int, code string, err error, details any) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		OK:      false,
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// RespondAPIError renders *apierr.Error as-is and anything else as a 500 under fallbackCode.
func RespondAPIError(c *gin.Context, err error, fallbackCode string) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondErrorDetails(c, ae.Status, ae.Code, ae.Err, ae.Details)
		return
	}
	RespondError(c, http.StatusInternalServerError, fallbackCode, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
