package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	portssvc "github.com/drkbluescience/verein-finanz/internal/core/ports/services"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/drkbluescience/verein-finanz/internal/middleware"
	"github.com/gin-gonic/gin"
)

// cashBookHandler handles HTTP requests related to the cash-book ledger.
type cashBookHandler struct {
	cashBookService portssvc.CashBookSvcFacade
}

// newCashBookHandler creates a new cashBookHandler.
func newCashBookHandler(cs portssvc.CashBookSvcFacade) *cashBookHandler {
	return &cashBookHandler{
		cashBookService: cs,
	}
}

// RegisterCashBookRoutes registers routes related to the cash book.
func RegisterCashBookRoutes(rg *gin.RouterGroup, cashBookService portssvc.CashBookSvcFacade) {
	h := newCashBookHandler(cashBookService)

	vereinScoped := rg.Group("/vereine/:verein_id/cashbook")
	{
		vereinScoped.POST("/entries", h.postEntry)
		vereinScoped.GET("/entries", h.listByDateRange)
		vereinScoped.GET("/years/:year", h.listByYear)
		vereinScoped.GET("/years/:year/receipts/:receipt_no", h.getEntryByReceiptNo)
		vereinScoped.GET("/years/:year/account-summary", h.getAccountSummary)
		vereinScoped.GET("/accounts/:account_no", h.listByAccount)
	}

	entries := rg.Group("/cashbook/entries")
	{
		entries.GET("/:entry_id", h.getEntry)
		entries.DELETE("/:entry_id", h.deleteEntry)
	}
}

// postEntry godoc
// @Summary Post a cash-book entry
// @Description Posts one ledger entry with exactly one money column set, assigning the next gap-free receipt number for the fiscal year.
// @Tags cashbook
// @Accept  json
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   entry body dto.CreateCashBookEntryRequest true "Entry details"
// @Success 201 {object} dto.CashBookEntryResponse
// @Failure 400 {object} map[string]string "Invalid input or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Fiscal year already audited"
// @Security BearerAuth
// @Router /vereine/{verein_id}/cashbook/entries [post]
func (h *cashBookHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	var req dto.CreateCashBookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for cash-book entry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("verein_id", vereinID), slog.String("account_no", req.AccountNo))
	logger.Info("Received request to post cash-book entry")

	entry, err := h.cashBookService.PostEntry(c.Request.Context(), vereinID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error posting entry", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrSequenceViolation):
			logger.Warn("Posting refused for audited year", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to post cash-book entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post cash-book entry"})
		}
		return
	}

	logger.Info("Cash-book entry posted", slog.String("entry_id", entry.EntryID), slog.Int("receipt_no", entry.ReceiptNo))
	c.JSON(http.StatusCreated, entry)
}

// deleteEntry godoc
// @Summary Delete a cash-book entry
// @Description Soft-deletes an entry. The receipt number is kept so the per-year sequence stays traceable. Refused for audited years.
// @Tags cashbook
// @Produce  json
// @Param   entry_id path string true "Entry ID"
// @Success 204 "Entry deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Fiscal year already audited"
// @Security BearerAuth
// @Router /cashbook/entries/{entry_id} [delete]
func (h *cashBookHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("entry_id", entryID))
	logger.Info("Received request to delete cash-book entry")

	if err := h.cashBookService.DeleteEntry(c.Request.Context(), entryID, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Cash-book entry not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Cash-book entry not found"})
		case errors.Is(err, apperrors.ErrSequenceViolation):
			logger.Warn("Deletion refused for audited year", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to delete cash-book entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cash-book entry"})
		}
		return
	}

	logger.Info("Cash-book entry deleted")
	c.Status(http.StatusNoContent)
}

// getEntry godoc
// @Summary Get a cash-book entry by ID
// @Tags cashbook
// @Produce  json
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.CashBookEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /cashbook/entries/{entry_id} [get]
func (h *cashBookHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entry_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.cashBookService.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Cash-book entry not found", slog.String("entry_id", entryID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Cash-book entry not found"})
		} else {
			logger.Error("Failed to get cash-book entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cash-book entry"})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// getEntryByReceiptNo godoc
// @Summary Get a cash-book entry by receipt number
// @Description Retrieves an entry by its receipt number within a fiscal year.
// @Tags cashbook
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   year path int true "Fiscal year"
// @Param   receipt_no path int true "Receipt number"
// @Success 200 {object} dto.CashBookEntryResponse
// @Failure 400 {object} map[string]string "Invalid year or receipt number"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /vereine/{verein_id}/cashbook/years/{year}/receipts/{receipt_no} [get]
func (h *cashBookHandler) getEntryByReceiptNo(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year: " + c.Param("year")})
		return
	}
	receiptNo, err := strconv.Atoi(c.Param("receipt_no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receipt number: " + c.Param("receipt_no")})
		return
	}

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.cashBookService.GetEntryByReceiptNo(c.Request.Context(), vereinID, year, receiptNo)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Cash-book entry not found", slog.Int("year", year), slog.Int("receipt_no", receiptNo))
			c.JSON(http.StatusNotFound, gin.H{"error": "Cash-book entry not found"})
		} else {
			logger.Error("Failed to get cash-book entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cash-book entry"})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// listByYear godoc
// @Summary List a fiscal year's cash-book entries
// @Description Retrieves the year's entries in receipt-number order with derived running balances and totals.
// @Tags cashbook
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   year path int true "Fiscal year"
// @Success 200 {object} dto.CashBookListResponse
// @Failure 400 {object} map[string]string "Invalid year"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/cashbook/years/{year} [get]
func (h *cashBookHandler) listByYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year: " + c.Param("year")})
		return
	}

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	listing, err := h.cashBookService.ListByYear(c.Request.Context(), vereinID, year)
	if err != nil {
		logger.Error("Failed to list cash-book entries", slog.String("error", err.Error()), slog.Int("year", year))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cash-book entries"})
		return
	}

	logger.Info("Cash-book year listed", slog.Int("year", year), slog.Int("count", len(listing.Entries)))
	c.JSON(http.StatusOK, listing)
}

// listByDateRange godoc
// @Summary List cash-book entries in a date range
// @Description Retrieves entries between from and to inclusive with running balances seeded from postings before the range.
// @Tags cashbook
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   from query string true "Range start (YYYY-MM-DD)"
// @Param   to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.CashBookListResponse
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/cashbook/entries [get]
func (h *cashBookHandler) listByDateRange(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date, expected YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date, expected YYYY-MM-DD"})
		return
	}

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	listing, err := h.cashBookService.ListByDateRange(c.Request.Context(), vereinID, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid date range", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list cash-book entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cash-book entries"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// listByAccount godoc
// @Summary List one account's cash-book entries
// @Description Retrieves postings for a chart-of-accounts number, optionally restricted to one fiscal year.
// @Tags cashbook
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   account_no path string true "Chart-of-accounts number"
// @Param   year query int false "Fiscal year"
// @Success 200 {array} dto.CashBookEntryResponse
// @Failure 400 {object} map[string]string "Invalid year"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/cashbook/accounts/{account_no} [get]
func (h *cashBookHandler) listByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")
	accountNo := c.Param("account_no")

	var year *int
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year: " + raw})
			return
		}
		year = &y
	}

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.cashBookService.ListByAccount(c.Request.Context(), vereinID, accountNo, year)
	if err != nil {
		logger.Error("Failed to list account entries", slog.String("error", err.Error()), slog.String("account_no", accountNo))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list account entries"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// getAccountSummary godoc
// @Summary Per-account summary of a fiscal year
// @Description Aggregates the year's postings per chart-of-accounts number with resolved descriptions.
// @Tags cashbook
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   year path int true "Fiscal year"
// @Success 200 {array} dto.AccountSummaryResponse
// @Failure 400 {object} map[string]string "Invalid year"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/cashbook/years/{year}/account-summary [get]
func (h *cashBookHandler) getAccountSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year: " + c.Param("year")})
		return
	}

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summary, err := h.cashBookService.GetAccountSummary(c.Request.Context(), vereinID, year)
	if err != nil {
		logger.Error("Failed to build account summary", slog.String("error", err.Error()), slog.Int("year", year))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build account summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
