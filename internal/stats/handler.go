// File: internal/stats/handler.go
package stats

import (
	"estatehub_backend/internal/common"
	"estatehub_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for dashboard handlers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new stats handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the role-scoped dashboard route.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	dashboard := router.Group("/dashboard")
	dashboard.Use(authMW)
	dashboard.Use(middleware.RequireCapability(common.CapViewDashboard))
	{
		dashboard.GET("", h.getDashboard)
	}
}

// getDashboard dispatches on the caller's role.
func (h *Handler) getDashboard(c *gin.Context) {
	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)

	switch actorRole {
	case common.RoleAdmin:
		dash, err := h.service.AdminDashboard(c.Request.Context())
		if err != nil {
			common.RespondWithError(c, err)
			return
		}
		common.RespondOK(c, "Dashboard retrieved successfully.", dash)
	case common.RoleSeller:
		dash, err := h.service.SellerDashboard(c.Request.Context(), actorID)
		if err != nil {
			common.RespondWithError(c, err)
			return
		}
		common.RespondOK(c, "Dashboard retrieved successfully.", dash)
	case common.RoleTenant:
		dash, err := h.service.TenantDashboard(c.Request.Context(), actorID)
		if err != nil {
			common.RespondWithError(c, err)
			return
		}
		common.RespondOK(c, "Dashboard retrieved successfully.", dash)
	default:
		common.RespondWithError(c, common.ErrForbidden.WithDetails("No dashboard is defined for this role."))
	}
}
