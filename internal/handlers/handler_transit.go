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

// transitHandler handles HTTP requests related to pass-through items.
type transitHandler struct {
	transitService portssvc.TransitSvcFacade
}

// newTransitHandler creates a new transitHandler.
func newTransitHandler(ts portssvc.TransitSvcFacade) *transitHandler {
	return &transitHandler{
		transitService: ts,
	}
}

// registerTransitRoutes registers routes related to transit items.
func registerTransitRoutes(rg *gin.RouterGroup, transitService portssvc.TransitSvcFacade) {
	h := newTransitHandler(transitService)

	vereinScoped := rg.Group("/vereine/:verein_id/transit-items")
	{
		vereinScoped.POST("", h.createItem)
		vereinScoped.GET("", h.listByVerein)
		vereinScoped.GET("/open", h.listOpen)
		vereinScoped.GET("/total-open", h.getTotalOpenAmount)
		vereinScoped.GET("/recipient-summary", h.getRecipientSummary)
	}

	items := rg.Group("/transit-items")
	{
		items.GET("/:transit_item_id", h.getItem)
		items.POST("/:transit_item_id/outgoing", h.recordOutgoing)
	}
}

// createItem godoc
// @Summary Record incoming third-party money
// @Description Creates a transit item for money held on behalf of a third party. The item starts OFFEN.
// @Tags transit
// @Accept  json
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   item body dto.CreateTransitItemRequest true "Item details"
// @Success 201 {object} dto.TransitItemResponse
// @Failure 400 {object} map[string]string "Invalid input or non-transit account"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/transit-items [post]
func (h *transitHandler) createItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	var req dto.CreateTransitItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for transit item", slog.String("error", err.Error()))
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
	logger.Info("Received request to create transit item")

	item, err := h.transitService.CreateItem(c.Request.Context(), vereinID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating transit item", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create transit item", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transit item"})
		}
		return
	}

	logger.Info("Transit item created", slog.String("transit_item_id", item.TransitItemID))
	c.JSON(http.StatusCreated, item)
}

// recordOutgoing godoc
// @Summary Record an outgoing posting against a transit item
// @Description Accumulates the outgoing amount and re-derives the item status. An amount over the outstanding balance is rejected, never clamped.
// @Tags transit
// @Accept  json
// @Produce  json
// @Param   transit_item_id path string true "Transit item ID"
// @Param   outgoing body dto.RecordOutgoingRequest true "Outgoing details"
// @Success 200 {object} dto.TransitItemResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 409 {object} map[string]string "Item already closed"
// @Failure 422 {object} map[string]string "Amount exceeds outstanding balance"
// @Security BearerAuth
// @Router /transit-items/{transit_item_id}/outgoing [post]
func (h *transitHandler) recordOutgoing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transitItemID := c.Param("transit_item_id")

	var req dto.RecordOutgoingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for outgoing posting", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("transit_item_id", transitItemID))
	logger.Info("Received request to record outgoing posting")

	item, err := h.transitService.RecordOutgoing(c.Request.Context(), transitItemID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Transit item not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transit item not found"})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Outgoing posting refused for closed item", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrAllocationExceedsLimit):
			logger.Warn("Outgoing amount over outstanding balance", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error recording outgoing posting", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to record outgoing posting", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record outgoing posting"})
		}
		return
	}

	logger.Info("Outgoing posting recorded", slog.String("status", item.Status))
	c.JSON(http.StatusOK, item)
}

// getItem godoc
// @Summary Get a transit item by ID
// @Tags transit
// @Produce  json
// @Param   transit_item_id path string true "Transit item ID"
// @Success 200 {object} dto.TransitItemResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Item not found"
// @Security BearerAuth
// @Router /transit-items/{transit_item_id} [get]
func (h *transitHandler) getItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transitItemID := c.Param("transit_item_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	item, err := h.transitService.GetItem(c.Request.Context(), transitItemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transit item not found", slog.String("transit_item_id", transitItemID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Transit item not found"})
		} else {
			logger.Error("Failed to get transit item", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transit item"})
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// listByVerein godoc
// @Summary List an association's transit items
// @Tags transit
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Success 200 {array} dto.TransitItemResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/transit-items [get]
func (h *transitHandler) listByVerein(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.transitService.ListByVerein(c.Request.Context(), vereinID)
	if err != nil {
		logger.Error("Failed to list transit items", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transit items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// listOpen godoc
// @Summary List transit items not yet fully forwarded
// @Tags transit
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Success 200 {array} dto.TransitItemResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/transit-items/open [get]
func (h *transitHandler) listOpen(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.transitService.ListOpen(c.Request.Context(), vereinID)
	if err != nil {
		logger.Error("Failed to list open transit items", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list open transit items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// getTotalOpenAmount godoc
// @Summary Outstanding pass-through total
// @Tags transit
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Success 200 {object} map[string]string "totalOpenAmount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/transit-items/total-open [get]
func (h *transitHandler) getTotalOpenAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	total, err := h.transitService.GetTotalOpenAmount(c.Request.Context(), vereinID)
	if err != nil {
		logger.Error("Failed to compute open transit total", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute open transit total"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalOpenAmount": total})
}

// getRecipientSummary godoc
// @Summary Per-recipient aggregate of transit items
// @Tags transit
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Success 200 {array} dto.RecipientSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/transit-items/recipient-summary [get]
func (h *transitHandler) getRecipientSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summary, err := h.transitService.GetRecipientSummary(c.Request.Context(), vereinID)
	if err != nil {
		logger.Error("Failed to build recipient summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build recipient summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
