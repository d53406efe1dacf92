package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	portssvc "github.com/drkbluescience/verein-finanz/internal/core/ports/services"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/drkbluescience/verein-finanz/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles HTTP requests related to payments and the derived
// member finance summary.
type paymentHandler struct {
	paymentService    portssvc.PaymentSvcFacade
	allocationService portssvc.AllocationSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade, as portssvc.AllocationSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService:    ps,
		allocationService: as,
	}
}

// registerPaymentRoutes registers routes related to payments.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade, allocationService portssvc.AllocationSvcFacade) {
	h := newPaymentHandler(paymentService, allocationService)

	vereinScoped := rg.Group("/vereine/:verein_id")
	{
		vereinScoped.POST("/payments", h.createPayment)
		vereinScoped.GET("/members/:member_id/payments", h.listByMember)
		vereinScoped.GET("/members/:member_id/finance-summary", h.getMemberFinanceSummary)
	}

	rg.GET("/payments/:payment_id", h.getPayment)
	rg.POST("/payments/:payment_id/reversal", h.cancelPayment)
}

// createPayment godoc
// @Summary Record a manually entered payment
// @Description Records a payment and allocates it across the member's open claims, oldest due date first, or against the requested claims.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   payment body dto.CreatePaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid input or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Member not found"
// @Failure 422 {object} map[string]string "Allocation exceeds claim or payment limit"
// @Security BearerAuth
// @Router /vereine/{verein_id}/payments [post]
func (h *paymentHandler) createPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for payment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("verein_id", vereinID), slog.String("member_id", req.MemberID))
	logger.Info("Received request to record payment")

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), vereinID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Member not found for payment", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrAllocationExceedsLimit):
			logger.Warn("Payment allocation over limit", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error recording payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to record payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		}
		return
	}

	logger.Info("Payment recorded", slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, payment)
}

// getPayment godoc
// @Summary Get a payment by ID
// @Description Retrieves a payment with its allocation rows.
// @Tags payments
// @Produce  json
// @Param   payment_id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment not found"
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("payment_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Payment not found", slog.String("payment_id", paymentID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			logger.Error("Failed to get payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment"})
		}
		return
	}

	c.JSON(http.StatusOK, payment)
}

// cancelPayment godoc
// @Summary Reverse a payment
// @Description Reverses a payment (Storno): allocations are removed, claims they closed reopen, and the payment is flagged STORNIERT.
// @Tags payments
// @Produce  json
// @Param   payment_id path string true "Payment ID"
// @Success 204 "Payment reversed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Payment already reversed"
// @Security BearerAuth
// @Router /payments/{payment_id}/reversal [post]
func (h *paymentHandler) cancelPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("payment_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("payment_id", paymentID))
	logger.Info("Received request to reverse payment")

	if err := h.paymentService.CancelPayment(c.Request.Context(), paymentID, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Payment not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Payment already reversed", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reverse payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse payment"})
		}
		return
	}

	logger.Info("Payment reversed")
	c.Status(http.StatusNoContent)
}

// listByMember godoc
// @Summary List a member's payments
// @Tags payments
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   member_id path string true "Member ID"
// @Success 200 {array} dto.PaymentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/members/{member_id}/payments [get]
func (h *paymentHandler) listByMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")
	memberID := c.Param("member_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payments, err := h.paymentService.ListByMember(c.Request.Context(), vereinID, memberID)
	if err != nil {
		logger.Error("Failed to list member payments", slog.String("error", err.Error()), slog.String("member_id", memberID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

// getMemberFinanceSummary godoc
// @Summary Derived financial overview of a member
// @Description Derives open, overdue, paid and credit totals from claims, payments, allocations and credit balances.
// @Tags payments
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   member_id path string true "Member ID"
// @Success 200 {object} dto.MemberFinanceSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /vereine/{verein_id}/members/{member_id}/finance-summary [get]
func (h *paymentHandler) getMemberFinanceSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")
	memberID := c.Param("member_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summary, err := h.allocationService.GetMemberFinanceSummary(c.Request.Context(), vereinID, memberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Member not found for finance summary", slog.String("member_id", memberID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		} else {
			logger.Error("Failed to build finance summary", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build finance summary"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}
