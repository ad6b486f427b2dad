package handlers

import (
	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/interfaces/http/middleware"
	"blood-donate.backend/internal/interfaces/http/response"
	"blood-donate.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requireIdentity writes 401 and returns false when AuthMiddleware did not run.
func requireIdentity(c *gin.Context) (*entities.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("missing verified identity"))
		return nil, false
	}
	return identity, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request ID"))
		return uuid.Nil, false
	}
	return id, true
}

// bindPage reads zero-based page and size from the query string.
func bindPage(c *gin.Context) (utils.PaginationParams, bool) {
	var page utils.PaginationParams
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, domainerrors.BadRequest("page and size must be integers"))
		return page, false
	}
	return utils.GetPaginationParams(page.Page, page.Size), true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return false
	}
	return true
}
