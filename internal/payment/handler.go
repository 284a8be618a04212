// File: internal/payment/handler.go
package payment

import (
	"errors"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for payment handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the payment routes. Sale completion lives here
// because it produces a payment.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	payments := router.Group("/payments")
	payments.Use(authMW)
	{
		payments.POST("", middleware.RequireCapability(common.CapInitiatePayment), h.initiatePayment)
		payments.GET("", h.listPayments)
		payments.GET("/:id", h.getPayment)
		payments.POST("/:id/approve", middleware.RequireCapability(common.CapReviewPayment), h.approvePayment)
		payments.POST("/:id/reject", middleware.RequireCapability(common.CapReviewPayment), h.rejectPayment)
		payments.POST("/:id/payout", middleware.RequireCapability(common.CapSendPayout), h.sendPayout)
	}

	bookings := router.Group("/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("/:id/complete-sale", middleware.RequireCapability(common.CapCompleteSale), h.completeSale)
	}
}

func (h *Handler) initiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
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
	pmt, err := h.service.Initiate(c.Request.Context(), tenantID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Payment initiated successfully.", ToPaymentResponse(pmt))
}

func (h *Handler) listPayments(c *gin.Context) {
	var query PaymentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters: "+err.Error()))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	payments, total, err := h.service.ListMine(c.Request.Context(), actorID, actorRole, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	pagination := common.NewPagination(total, query.Page, query.Limit())
	common.RespondPaginated(c, "Payments retrieved successfully.", responses, pagination)
}

func (h *Handler) getPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid payment ID format."))
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	pmt, err := h.service.GetByID(c.Request.Context(), actorID, actorRole, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Payment retrieved successfully.", ToPaymentResponse(pmt))
}

func (h *Handler) approvePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid payment ID format."))
		return
	}

	approverID := middleware.GetUserIDFromContext(c)
	pmt, err := h.service.Approve(c.Request.Context(), approverID, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Payment approved successfully.", ToPaymentResponse(pmt))
}

func (h *Handler) rejectPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid payment ID format."))
		return
	}

	approverID := middleware.GetUserIDFromContext(c)
	pmt, err := h.service.Reject(c.Request.Context(), approverID, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Payment rejected successfully.", ToPaymentResponse(pmt))
}

func (h *Handler) sendPayout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid payment ID format."))
		return
	}

	pmt, err := h.service.SendPayout(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Seller payout sent successfully.", ToPaymentResponse(pmt))
}

func (h *Handler) completeSale(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	var req CompleteSaleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
			return
		}
	}

	approverID := middleware.GetUserIDFromContext(c)
	pmt, err := h.service.CompleteSale(c.Request.Context(), approverID, bookingID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Sale completed successfully.", ToPaymentResponse(pmt))
}
