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

// statementHandler handles HTTP requests related to bank statement ingestion
// and manual match resolution.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
}

// newStatementHandler creates a new statementHandler.
func newStatementHandler(ss portssvc.StatementSvcFacade) *statementHandler {
	return &statementHandler{
		statementService: ss,
	}
}

// registerStatementRoutes registers routes related to statement batches.
func registerStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade) {
	h := newStatementHandler(statementService)

	vereinScoped := rg.Group("/vereine/:verein_id")
	{
		vereinScoped.POST("/bank-uploads", h.uploadStatement)
		vereinScoped.GET("/bank-transactions/unmatched", h.listUnmatched)
	}

	rg.POST("/bank-transactions/match", h.manualMatch)
}

// uploadStatement godoc
// @Summary Ingest a parsed bank statement batch
// @Description Ingests normalized statement rows for one bank account, matching each row to a member and allocating matched payments. Always returns 200 with per-row outcomes.
// @Tags statements
// @Accept  json
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   batch body dto.BankUploadRequest true "Statement batch"
// @Success 200 {object} dto.BankUploadResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/bank-uploads [post]
func (h *statementHandler) uploadStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	var req dto.BankUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for statement upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("verein_id", vereinID), slog.Int("row_count", len(req.Rows)))
	logger.Info("Received statement batch")

	// Batch results always come back as 200; per-row problems live in the
	// details, a service error here means the batch could not run at all.
	resp, err := h.statementService.ProcessStatement(c.Request.Context(), vereinID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error processing statement", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to process statement batch", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process statement batch"})
		}
		return
	}

	logger.Info("Statement batch processed",
		slog.Int("success", resp.SuccessCount),
		slog.Int("unmatched", resp.UnmatchedCount),
		slog.Int("skipped", resp.SkippedCount),
		slog.Int("failed", resp.FailedCount))
	c.JSON(http.StatusOK, resp)
}

// manualMatch godoc
// @Summary Manually match an unmatched bank transaction
// @Description Resolves an unmatched bank transaction to a member and allocates the resulting payment.
// @Tags statements
// @Accept  json
// @Produce  json
// @Param   match body dto.ManualMatchRequest true "Match details"
// @Success 200 {object} dto.ManualMatchResponse
// @Failure 400 {object} map[string]string "Invalid input or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction or member not found"
// @Failure 409 {object} map[string]string "Transaction already matched"
// @Security BearerAuth
// @Router /bank-transactions/match [post]
func (h *statementHandler) manualMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for manual match", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(
		slog.String("bank_transaction_id", req.BankTransactionID),
		slog.String("member_id", req.MemberID))
	logger.Info("Received manual match request")

	resp, err := h.statementService.ManualMatch(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Manual match target not found", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Manual match conflicts with transaction state", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrAllocationExceedsLimit):
			logger.Warn("Manual match allocation over limit", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error in manual match", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to resolve manual match", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve manual match"})
		}
		return
	}

	logger.Info("Manual match resolved", slog.String("payment_id", resp.PaymentID))
	c.JSON(http.StatusOK, resp)
}

// listUnmatched godoc
// @Summary List unmatched bank transactions
// @Description Retrieves a paginated list of bank transactions awaiting manual resolution, newest booking date first.
// @Tags statements
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListUnmatchedResponse
// @Failure 400 {object} map[string]string "Invalid pagination token"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/bank-transactions/unmatched [get]
func (h *statementHandler) listUnmatched(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	var params dto.ListUnmatchedParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for unmatched listing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.statementService.ListUnmatched(c.Request.Context(), vereinID, params)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusBadRequest {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message})
			return
		}
		logger.Error("Failed to list unmatched transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list unmatched transactions"})
		return
	}

	logger.Info("Unmatched transactions listed", slog.Int("count", len(resp.Transactions)))
	c.JSON(http.StatusOK, resp)
}
