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

var userListConfig = listquery.Config{
	Searchable: []string{"name", "email"},
	Filterable: []string{"role", "school_id"},
	DefaultSort: &listquery.Sort{
		Column: "created_at",
		Desc:   true,
	},
	MaxPerPage: 100,
}

var schoolListConfig = listquery.Config{
	Searchable:  []string{"name", "city"},
	DefaultSort: &listquery.Sort{Column: "name"},
	MaxPerPage:  100,
}

var categoryListConfig = listquery.Config{
	Searchable:  []string{"name"},
	DefaultSort: &listquery.Sort{Column: "name"},
	MaxPerPage:  100,
}

// AdminHandler agrupa los endpoints de administracion: usuarios, colegios y
// categorias.
type AdminHandler struct {
	logger     *zap.Logger
	userServ   *service.UserService
	users      repository.UserRepository
	schools    repository.SchoolRepository
	categories repository.CategoryRepository
}

func NewAdminHandler(
	logger *zap.Logger,
	userServ *service.UserService,
	users repository.UserRepository,
	schools repository.SchoolRepository,
	categories repository.CategoryRepository,
) *AdminHandler {
	return &AdminHandler{
		logger:     logger,
		userServ:   userServ,
		users:      users,
		schools:    schools,
		categories: categories,
	}
}

// ListUsers maneja GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	q := userListConfig.Parse(c.Request.URL.Query())
	users, total, err := h.users.List(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	listResponse(c, q, users, total)
}

// SetUserRole maneja PUT /admin/users/:id/role.
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	var req struct {
		Role     domain.Role `json:"role" binding:"required"`
		SchoolID string      `json:"school_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid role request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.SetRole(c.Request.Context(), c.Param("id"), req.Role, req.SchoolID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		default:
			h.logger.Error("set role failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not set role"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListSchools maneja GET /admin/schools.
func (h *AdminHandler) ListSchools(c *gin.Context) {
	q := schoolListConfig.Parse(c.Request.URL.Query())
	schools, total, err := h.schools.List(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("list schools failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list schools"})
		return
	}
	listResponse(c, q, schools, total)
}

// CreateSchool maneja POST /admin/schools.
func (h *AdminHandler) CreateSchool(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		City string `json:"city"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create school request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	school := domain.School{
		ID:        uuid.NewString(),
		Name:      req.Name,
		City:      req.City,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.schools.Create(c.Request.Context(), school); err != nil {
		h.logger.Error("create school failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create school"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"school": school})
}

// UpdateSchool maneja PUT /admin/schools/:id.
func (h *AdminHandler) UpdateSchool(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		City string `json:"city"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update school request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	school, err := h.schools.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
			return
		}
		h.logger.Error("get school failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update school"})
		return
	}

	school.Name = req.Name
	school.City = req.City
	if err := h.schools.Update(c.Request.Context(), school); err != nil {
		h.logger.Error("update school failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update school"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"school": school})
}

// DeleteSchool maneja DELETE /admin/schools/:id.
func (h *AdminHandler) DeleteSchool(c *gin.Context) {
	if err := h.schools.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
			return
		}
		h.logger.Error("delete school failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete school"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListCategories maneja GET /admin/categories.
func (h *AdminHandler) ListCategories(c *gin.Context) {
	q := categoryListConfig.Parse(c.Request.URL.Query())
	categories, total, err := h.categories.List(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list categories"})
		return
	}
	listResponse(c, q, categories, total)
}

// CreateCategory maneja POST /admin/categories.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create category request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	category := domain.Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.categories.Create(c.Request.Context(), category); err != nil {
		h.logger.Error("create category failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create category"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory maneja PUT /admin/categories/:id.
func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update category request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	category, err := h.categories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		h.logger.Error("get category failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update category"})
		return
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := h.categories.Update(c.Request.Context(), category); err != nil {
		h.logger.Error("update category failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory maneja DELETE /admin/categories/:id.
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		h.logger.Error("delete category failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
