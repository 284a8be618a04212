// File: internal/visit/handler.go
package visit

import (
	"errors"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for visit handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new visit handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the visit-request routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	visits := router.Group("/visits")
	visits.Use(authMW)
	{
		visits.POST("", middleware.RequireCapability(common.CapSubmitVisit), h.submitVisit)
		visits.GET("", h.listVisits)
		visits.GET("/:id", h.getVisit)
		visits.POST("/:id/decision", middleware.RequireCapability(common.CapDecideVisit), h.decideVisit)
	}
}

func (h *Handler) submitVisit(c *gin.Context) {
	var req SubmitVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		return
	}

	tenantID := middleware.GetUserIDFromContext(c)
	visit, err := h.service.Submit(c.Request.Context(), tenantID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Visit request submitted successfully.", ToVisitResponse(visit))
}

func (h *Handler) listVisits(c *gin.Context) {
	var query VisitListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters: "+err.Error()))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	visits, total, err := h.service.ListMine(c.Request.Context(), actorID, actorRole, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]VisitResponse, len(visits))
	for i := range visits {
		responses[i] = ToVisitResponse(&visits[i])
	}
	pagination := common.NewPagination(total, query.Page, query.Limit())
	common.RespondPaginated(c, "Visit requests retrieved successfully.", responses, pagination)
}

func (h *Handler) getVisit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid visit request ID format."))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	visit, err := h.service.GetByID(c.Request.Context(), actorID, actorRole, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Visit request retrieved successfully.", ToVisitResponse(visit))
}

func (h *Handler) decideVisit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid visit request ID format."))
		return
	}

	var req DecideVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	visit, err := h.service.Decide(c.Request.Context(), actorID, actorRole, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Visit request decided successfully.", ToVisitResponse(visit))
}
