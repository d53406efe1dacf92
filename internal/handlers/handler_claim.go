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

// claimHandler handles HTTP requests related to member claims.
type claimHandler struct {
	claimService portssvc.ClaimSvcFacade
}

// newClaimHandler creates a new claimHandler.
func newClaimHandler(cs portssvc.ClaimSvcFacade) *claimHandler {
	return &claimHandler{
		claimService: cs,
	}
}

// registerClaimRoutes registers routes related to claims.
func registerClaimRoutes(rg *gin.RouterGroup, claimService portssvc.ClaimSvcFacade) {
	h := newClaimHandler(claimService)

	vereinScoped := rg.Group("/vereine/:verein_id")
	{
		vereinScoped.POST("/claims", h.createClaim)
		vereinScoped.GET("/claims/open", h.listOpenByVerein)
		vereinScoped.GET("/claims/overdue", h.listOverdue)
		vereinScoped.GET("/members/:member_id/claims", h.listByMember)
	}

	rg.GET("/claims/:claim_id", h.getClaim)
}

// createClaim godoc
// @Summary Create a claim against a member
// @Tags claims
// @Accept  json
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   claim body dto.CreateClaimRequest true "Claim details"
// @Success 201 {object} dto.ClaimResponse
// @Failure 400 {object} map[string]string "Invalid input or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /vereine/{verein_id}/claims [post]
func (h *claimHandler) createClaim(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	var req dto.CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for claim", slog.String("error", err.Error()))
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
	logger.Info("Received request to create claim")

	claim, err := h.claimService.CreateClaim(c.Request.Context(), vereinID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Member not found for claim", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error creating claim", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create claim", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create claim"})
		}
		return
	}

	logger.Info("Claim created", slog.String("claim_id", claim.ClaimID))
	c.JSON(http.StatusCreated, claim)
}

// getClaim godoc
// @Summary Get a claim by ID
// @Description Retrieves a claim with its remaining amount derived from allocations.
// @Tags claims
// @Produce  json
// @Param   claim_id path string true "Claim ID"
// @Success 200 {object} dto.ClaimResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Claim not found"
// @Security BearerAuth
// @Router /claims/{claim_id} [get]
func (h *claimHandler) getClaim(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	claimID := c.Param("claim_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	claim, err := h.claimService.GetClaim(c.Request.Context(), claimID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Claim not found", slog.String("claim_id", claimID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
		} else {
			logger.Error("Failed to get claim", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve claim"})
		}
		return
	}

	c.JSON(http.StatusOK, claim)
}

// listByMember godoc
// @Summary List a member's claims
// @Tags claims
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Param   member_id path string true "Member ID"
// @Success 200 {array} dto.ClaimResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/members/{member_id}/claims [get]
func (h *claimHandler) listByMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")
	memberID := c.Param("member_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	claims, err := h.claimService.ListByMember(c.Request.Context(), vereinID, memberID)
	if err != nil {
		logger.Error("Failed to list member claims", slog.String("error", err.Error()), slog.String("member_id", memberID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list claims"})
		return
	}

	c.JSON(http.StatusOK, claims)
}

// listOpenByVerein godoc
// @Summary List an association's open claims
// @Tags claims
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Success 200 {array} dto.ClaimResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/claims/open [get]
func (h *claimHandler) listOpenByVerein(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	claims, err := h.claimService.ListOpenByVerein(c.Request.Context(), vereinID)
	if err != nil {
		logger.Error("Failed to list open claims", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list open claims"})
		return
	}

	c.JSON(http.StatusOK, claims)
}

// listOverdue godoc
// @Summary List open claims past their due date
// @Tags claims
// @Produce  json
// @Param   verein_id path string true "Verein ID"
// @Success 200 {array} dto.ClaimResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vereine/{verein_id}/claims/overdue [get]
func (h *claimHandler) listOverdue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vereinID := c.Param("verein_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	claims, err := h.claimService.ListOverdue(c.Request.Context(), vereinID)
	if err != nil {
		logger.Error("Failed to list overdue claims", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list overdue claims"})
		return
	}

	c.JSON(http.StatusOK, claims)
}
