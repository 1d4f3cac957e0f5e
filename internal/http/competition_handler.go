package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"codearena/internal/domain"
	"codearena/internal/listquery"
	"codearena/internal/repository"
	"codearena/internal/service"
)

var competitionListConfig = listquery.Config{
	Searchable: []string{"name"},
	Filterable: []string{"status", "school_year"},
	DefaultSort: &listquery.Sort{
		Column: "starts_at",
		Desc:   true,
	},
	MaxPerPage: 100,
}

// CompetitionHandler mantiene dependencias para endpoints de competencias.
type CompetitionHandler struct {
	logger       *zap.Logger
	competitions repository.CompetitionRepository
	leaderboard  *service.LeaderboardService
}

func NewCompetitionHandler(logger *zap.Logger, competitions repository.CompetitionRepository, leaderboard *service.LeaderboardService) *CompetitionHandler {
	return &CompetitionHandler{
		logger:       logger,
		competitions: competitions,
		leaderboard:  leaderboard,
	}
}

// List maneja GET /competitions.
func (h *CompetitionHandler) List(c *gin.Context) {
	q := competitionListConfig.Parse(c.Request.URL.Query())
	competitions, total, err := h.competitions.List(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("list competitions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list competitions"})
		return
	}
	listResponse(c, q, competitions, total)
}

// Get maneja GET /competitions/:id.
func (h *CompetitionHandler) Get(c *gin.Context) {
	competition, err := h.competitions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "competition not found"})
			return
		}
		h.logger.Error("get competition failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get competition"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"competition": competition})
}

// Leaderboard maneja GET /competitions/:id/leaderboard.
func (h *CompetitionHandler) Leaderboard(c *gin.Context) {
	competitionID := c.Param("id")
	if _, err := h.competitions.GetByID(c.Request.Context(), competitionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "competition not found"})
			return
		}
		h.logger.Error("get competition failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get competition"})
		return
	}

	entries, err := h.leaderboard.Leaderboard(c.Request.Context(), competitionID)
	if err != nil {
		h.logger.Error("leaderboard failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

type competitionRequest struct {
	Name         string    `json:"name" binding:"required"`
	SchoolYear   string    `json:"school_year"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	VotingEndsAt time.Time `json:"voting_ends_at"`
}

// Create maneja POST /admin/competitions; nace en draft.
func (h *CompetitionHandler) Create(c *gin.Context) {
	var req competitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create competition request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	competition := domain.Competition{
		ID:           uuid.NewString(),
		Name:         req.Name,
		SchoolYear:   req.SchoolYear,
		Status:       domain.CompetitionDraft,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		VotingEndsAt: req.VotingEndsAt,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.competitions.Create(c.Request.Context(), competition); err != nil {
		h.logger.Error("create competition failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create competition"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"competition": competition})
}

// Update maneja PUT /admin/competitions/:id; no cambia el estado.
func (h *CompetitionHandler) Update(c *gin.Context) {
	var req competitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update competition request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	competition, err := h.competitions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "competition not found"})
			return
		}
		h.logger.Error("get competition failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update competition"})
		return
	}

	competition.Name = req.Name
	competition.SchoolYear = req.SchoolYear
	competition.StartsAt = req.StartsAt
	competition.EndsAt = req.EndsAt
	competition.VotingEndsAt = req.VotingEndsAt
	if err := h.competitions.Update(c.Request.Context(), competition); err != nil {
		h.logger.Error("update competition failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update competition"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"competition": competition})
}

// SetStatus maneja POST /admin/competitions/:id/status. Solo se aceptan las
// transiciones en orden: draft -> open -> voting -> closed.
func (h *CompetitionHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status domain.CompetitionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid status request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	competition, err := h.competitions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "competition not found"})
			return
		}
		h.logger.Error("get competition failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not change status"})
		return
	}

	if !competition.Status.CanTransitionTo(req.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
		return
	}

	if err := h.competitions.UpdateStatus(c.Request.Context(), competition.ID, req.Status); err != nil {
		h.logger.Error("update status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not change status"})
		return
	}
	competition.Status = req.Status
	c.JSON(http.StatusOK, gin.H{"competition": competition})
}
