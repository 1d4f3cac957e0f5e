package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"codearena/internal/listquery"
	"codearena/internal/repository"
	"codearena/internal/service"
)

// projectListConfig define las columnas consultables del listado de proyectos:
// titulo y autor por texto libre, el resto por sets de valores.
var projectListConfig = listquery.Config{
	Searchable: []string{"title", "author"},
	Filterable: []string{"status", "category_id", "competition_id", "school_id"},
	DefaultSort: &listquery.Sort{
		Column: "created_at",
		Desc:   true,
	},
	MaxPerPage: 100,
}

// ProjectHandler mantiene dependencias para los endpoints de proyectos.
type ProjectHandler struct {
	logger      *zap.Logger
	projectServ *service.ProjectService
	voteServ    *service.VoteService
	projects    repository.ProjectRepository
}

func NewProjectHandler(logger *zap.Logger, projectServ *service.ProjectService, voteServ *service.VoteService, projects repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{
		logger:      logger,
		projectServ: projectServ,
		voteServ:    voteServ,
		projects:    projects,
	}
}

type projectRequest struct {
	CompetitionID string `json:"competition_id"`
	CategoryID    string `json:"category_id"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	RepoURL       string `json:"repo_url"`
	DemoURL       string `json:"demo_url"`
}

func (r projectRequest) toInput() service.ProjectInput {
	return service.ProjectInput{
		CompetitionID: r.CompetitionID,
		CategoryID:    r.CategoryID,
		Title:         r.Title,
		Summary:       r.Summary,
		RepoURL:       r.RepoURL,
		DemoURL:       r.DemoURL,
	}
}

// CreateDraft maneja POST /projects.
func (h *ProjectHandler) CreateDraft(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create project request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := h.projectServ.CreateDraft(c.Request.Context(), user, req.toInput())
	if err != nil {
		h.respondProjectError(c, err, "create draft failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// UpdateDraft maneja PUT /projects/:id.
func (h *ProjectHandler) UpdateDraft(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update project request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := h.projectServ.UpdateDraft(c.Request.Context(), user.ID, c.Param("id"), req.toInput())
	if err != nil {
		h.respondProjectError(c, err, "update draft failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// Submit maneja POST /projects/:id/submit.
func (h *ProjectHandler) Submit(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	project, err := h.projectServ.Submit(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.respondProjectError(c, err, "submit project failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// ListMine maneja GET /projects/mine.
func (h *ProjectHandler) ListMine(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	projects, err := h.projectServ.ListByAuthor(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("list own projects failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// List maneja GET /projects: listado paginado para docentes y admins.
func (h *ProjectHandler) List(c *gin.Context) {
	q := projectListConfig.Parse(c.Request.URL.Query())
	projects, total, err := h.projects.List(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("list projects failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list projects"})
		return
	}
	listResponse(c, q, projects, total)
}

// Review maneja POST /projects/:id/review (docentes y admins).
func (h *ProjectHandler) Review(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Approve bool   `json:"approve"`
		Note    string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid review request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := h.projectServ.Review(c.Request.Context(), user.ID, c.Param("id"), req.Approve, req.Note)
	if err != nil {
		h.respondProjectError(c, err, "review project failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// CastVote maneja POST /projects/:id/vote.
func (h *ProjectHandler) CastVote(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Score int `json:"score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid vote request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	vote, err := h.voteServ.Cast(c.Request.Context(), user, c.Param("id"), req.Score)
	if err != nil {
		h.respondVoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vote": vote})
}

// RemoveVote maneja DELETE /projects/:id/vote.
func (h *ProjectHandler) RemoveVote(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.voteServ.Remove(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		h.respondVoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "vote_removed"})
}

func (h *ProjectHandler) respondProjectError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrCompetitionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotProjectAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCompetitionNotOpen),
		errors.Is(err, service.ErrProjectNotEditable),
		errors.Is(err, service.ErrProjectNotReviewable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidProject):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *ProjectHandler) respondVoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrCompetitionNotFound),
		errors.Is(err, service.ErrVoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrVoteScoreOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOwnProjectVote):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrProjectNotVotable),
		errors.Is(err, service.ErrVotingClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("vote failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
