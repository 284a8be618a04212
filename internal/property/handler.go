// File: internal/property/handler.go
package property

import (
	"errors"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for property handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new property handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up property routes. Browsing is public; mutation
// requires a capability.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	props := router.Group("/properties")
	{
		props.GET("", h.searchProperties)
		props.GET("/:id", h.getProperty)
		props.GET("/slug/:slug", h.getPropertyBySlug)
	}

	authed := router.Group("/properties")
	authed.Use(authMW)
	{
		authed.POST("", middleware.RequireCapability(common.CapCreateProperty), h.createProperty)
		authed.PUT("/:id", middleware.RequireCapability(common.CapManageProperty), h.updateProperty)
		authed.PATCH("/:id/active", middleware.RequireCapability(common.CapManageProperty), h.setActive)
		authed.PATCH("/:id/featured", middleware.RequireCapability(common.CapFeatureProperty), h.setFeatured)
		authed.DELETE("/:id", middleware.RequireCapability(common.CapManageProperty), h.deleteProperty)
	}
}

func (h *Handler) searchProperties(c *gin.Context) {
	var query PropertySearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters: "+err.Error()))
		return
	}

	props, total, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]PropertyResponse, len(props))
	for i := range props {
		responses[i] = ToPropertyResponse(&props[i])
	}
	pagination := common.NewPagination(total, query.Page, query.Limit())
	common.RespondPaginated(c, "Properties retrieved successfully.", responses, pagination)
}

func (h *Handler) getProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid property ID format."))
		return
	}

	prop, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Property retrieved successfully.", ToPropertyResponse(prop))
}

func (h *Handler) getPropertyBySlug(c *gin.Context) {
	prop, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Property retrieved successfully.", ToPropertyResponse(prop))
}

func (h *Handler) createProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	prop, err := h.service.Create(c.Request.Context(), actorID, actorRole, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Property created successfully.", ToPropertyResponse(prop))
}

func (h *Handler) updateProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid property ID format."))
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	prop, err := h.service.Update(c.Request.Context(), actorID, actorRole, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Property updated successfully.", ToPropertyResponse(prop))
}

func (h *Handler) setActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid property ID format."))
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	prop, err := h.service.SetActive(c.Request.Context(), actorID, actorRole, id, req.Active)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Property status updated successfully.", ToPropertyResponse(prop))
}

func (h *Handler) setFeatured(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid property ID format."))
		return
	}

	var req SetFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	prop, err := h.service.SetFeatured(c.Request.Context(), actorID, actorRole, id, req.IsFeatured)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Property featured flag updated successfully.", ToPropertyResponse(prop))
}

func (h *Handler) deleteProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid property ID format."))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	if err := h.service.Delete(c.Request.Context(), actorID, actorRole, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
