package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/pkg/response"
)

// renderDomainError maps an expected DomainError to an HTTP failure with
// its kind in the payload, and anything else to a 500 without leaking
// internals. Returns true if err was handled.
func renderDomainError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	var de *entity.DomainError
	if errors.As(err, &de) {
		response.Failure[any](c, statusFor(de.Kind), string(de.Kind), de.Message, nil)
		return true
	}
	response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	return true
}

func statusFor(kind entity.FailureKind) int {
	switch kind {
	case entity.KindDuplicateUser:
		return http.StatusConflict
	case entity.KindSenderNotFound, entity.KindRecipientNotFound:
		return http.StatusNotFound
	case entity.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
