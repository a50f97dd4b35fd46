package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every reply. Data is null on errors.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const internalMessage = "internal server error"

func success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: message})
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with the envelope for err. Internal details only reach
// the log.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		fail(c, status, internalMessage)
		return
	}
	fail(c, status, common.MessageOf(err, http.StatusText(status)))
}
