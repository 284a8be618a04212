// File: internal/booking/handler.go
package booking

import (
	"errors"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for booking handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new booking handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the booking routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	bookings := router.Group("/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireCapability(common.CapCreateBooking), h.createBooking)
		bookings.GET("", h.listBookings)
		bookings.GET("/:id", h.getBooking)
		bookings.POST("/:id/confirm", middleware.RequireCapability(common.CapConfirmBooking), h.confirmBooking)
		bookings.POST("/:id/cancel", middleware.RequireCapability(common.CapCancelBooking), h.cancelBooking)
		bookings.DELETE("/:id", middleware.RequireCapability(common.CapDeleteBooking), h.deleteBooking)
	}
}

func (h *Handler) createBooking(c *gin.Context) {
	var req CreateBookingRequest
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
	booking, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Booking created successfully.", ToBookingResponse(booking))
}

func (h *Handler) listBookings(c *gin.Context) {
	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters: "+err.Error()))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	bookings, total, err := h.service.ListMine(c.Request.Context(), actorID, actorRole, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = ToBookingResponse(&bookings[i])
	}
	pagination := common.NewPagination(total, query.Page, query.Limit())
	common.RespondPaginated(c, "Bookings retrieved successfully.", responses, pagination)
}

func (h *Handler) getBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	booking, err := h.service.GetByID(c.Request.Context(), actorID, actorRole, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Booking retrieved successfully.", ToBookingResponse(booking))
}

func (h *Handler) confirmBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	booking, err := h.service.Confirm(c.Request.Context(), actorID, actorRole, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Booking confirmed successfully.", ToBookingResponse(booking))
}

func (h *Handler) cancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	booking, err := h.service.Cancel(c.Request.Context(), actorID, actorRole, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Booking cancelled successfully.", ToBookingResponse(booking))
}

func (h *Handler) deleteBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	actorRole := middleware.GetUserRoleFromContext(c)
	if err := h.service.Delete(c.Request.Context(), actorRole, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
