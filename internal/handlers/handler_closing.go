package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	portssvc "github.com/drkbluescience/verein-finanz/internal/core/ports/services"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/drkbluescience/verein-finanz/internal/middleware"
	"github.com/gin-gonic/gin"
)

// closingHandler handles HTTP requests related to year-end closings.
type closingHandler struct {
	closingService portssvc.ClosingSvcFacade
}

// newClosingHandler creates a new closingHandler.
func newClosingHandler(cs portssvc.ClosingSvcFacade) *closingHandler {
	return &closingHandler{
		closingService: cs,
	}
}

// registerClosingRoutes registers routes related to year-end closings.
func registerClosingRoutes(rg *gin.RouterGroup, closingService portssvc.ClosingSvcFacade) {
	h := newClosingHandler(closingService)

	vereinScoped := rg.Group("/vereine/:verein_id/closings")
	{
		vereinScoped.POST("", h.createClosing)
		vereinScoped.GET("", h.listByVerein)
		vereinScoped.POST("/years/:year/calculate", h.calculateAndClose)
		vereinScoped.GET("/years/:year", h.getByYear)
	}

	rg.POST("/closings/:closing_id/audit", h.markAudited)
}

// createClosing godoc
// @Summary Close a fiscal year with explicit balances
// @Description Creates a year-end closing. Years close strictly in sequence; opening balances are carried from the prior closing.
// @Tags closings
// @Accept  json
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   closing body dto.CreateClosingRequest true "Closing details"
// @Success 201 {object} dto.ClosingResponse
// @Failure 400 {object} map[string]string "Invalid input or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Year already closed or out of sequence"
// @Security BearerAuth
// @Router /vereine/{verein_id}/closings [post]
func (h *closingHandler) createClosing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	var req dto.CreateClosingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for closing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("verein_id", vereinID), slog.Int("year", req.Year))
	logger.Info("Received request to close fiscal year")

	closing, err := h.closingService.CreateClosing(c.Request.Context(), vereinID, req, userID)
	if err != nil {
		respondClosingError(c, logger, err, "Failed to close fiscal year")
		return
	}

	logger.Info("Fiscal year closed", slog.String("closing_id", closing.ClosingID))
	c.JSON(http.StatusCreated, closing)
}

// calculateAndClose godoc
// @Summary Close a fiscal year from derived balances
// @Description Derives the closing balances from the year's cash-book saldi plus the prior closing's balances, then closes the year.
// @Tags closings
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   year path int true "Fiscal year"
// @Success 201 {object} dto.ClosingResponse
// @Failure 400 {object} map[string]string "Invalid year"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Year already closed or out of sequence"
// @Security BearerAuth
// @Router /vereine/{verein_id}/closings/years/{year}/calculate [post]
func (h *closingHandler) calculateAndClose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year: " + c.Param("year")})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("verein_id", vereinID), slog.Int("year", year))
	logger.Info("Received request to calculate and close fiscal year")

	closing, err := h.closingService.CalculateAndClose(c.Request.Context(), vereinID, year, userID)
	if err != nil {
		respondClosingError(c, logger, err, "Failed to calculate and close fiscal year")
		return
	}

	logger.Info("Fiscal year calculated and closed", slog.String("closing_id", closing.ClosingID))
	c.JSON(http.StatusCreated, closing)
}

// markAudited godoc
// @Summary Record audit sign-off for a closing
// @Description Marks a closing audited, locking its year against postings and deletions. Idempotent.
// @Tags closings
// @Accept  json
// @Produce  json
// @Param   closing_id path string true "Closing ID"
// @Param   audit body dto.MarkAuditedRequest true "Audit details"
// @Success 200 {object} dto.ClosingResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Closing not found"
// @Security BearerAuth
// @Router /closings/{closing_id}/audit [post]
func (h *closingHandler) markAudited(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	closingID := c.Param("closing_id")

	var req dto.MarkAuditedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for audit sign-off", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("closing_id", closingID))
	logger.Info("Received audit sign-off")

	closing, err := h.closingService.MarkAudited(c.Request.Context(), closingID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Closing not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Closing not found"})
		} else {
			logger.Error("Failed to record audit sign-off", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record audit sign-off"})
		}
		return
	}

	logger.Info("Closing marked audited", slog.String("audited_by", closing.AuditedBy))
	c.JSON(http.StatusOK, closing)
}

// getByYear godoc
// @Summary Get the closing for a fiscal year
// @Tags closings
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   year path int true "Fiscal year"
// @Success 200 {object} dto.ClosingResponse
// @Failure 400 {object} map[string]string "Invalid year"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Closing not found"
// @Security BearerAuth
// @Router /vereine/{verein_id}/closings/years/{year} [get]
func (h *closingHandler) getByYear(c *gin.Context) {
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

	closing, err := h.closingService.GetByYear(c.Request.Context(), vereinID, year)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Closing not found", slog.Int("year", year))
			c.JSON(http.StatusNotFound, gin.H{"error": "Closing not found"})
		} else {
			logger.Error("Failed to get closing", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve closing"})
		}
		return
	}

	c.JSON(http.StatusOK, closing)
}

// listByVerein godoc
// @Summary List an association's year-end closings
// @Tags closings
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Success 200 {array} dto.ClosingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/closings [get]
func (h *closingHandler) listByVerein(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	closings, err := h.closingService.ListByVerein(c.Request.Context(), vereinID)
	if err != nil {
		logger.Error("Failed to list closings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list closings"})
		return
	}

	c.JSON(http.StatusOK, closings)
}

// respondClosingError maps closing-creation errors onto HTTP codes. Both
// explicit and calculated closings fail the same ways.
func respondClosingError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Year already closed", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSequenceViolation):
		logger.Warn("Closing out of sequence", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error closing year", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
