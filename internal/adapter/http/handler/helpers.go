package handler

import (
	"federated-bank/internal/adapter/http/middleware"
	"federated-bank/internal/core/domain"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// principal returns the authenticated caller, writing AUTH_004 when the
// route was mounted without BearerAuth.
func principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrMalformedToken())
	}
	return p, ok
}

// pathID parses the :id route parameter, answering notFound when it is not a UUID.
func pathID(c *gin.Context, notFound *apperror.AppError) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}
