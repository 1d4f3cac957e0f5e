package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"codearena/internal/domain"
	"codearena/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	sessions *service.SessionService,
	secureCookies bool,
	authH *AuthHandler,
	projectH *ProjectHandler,
	competitionH *CompetitionHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	requireSession := SessionAuthMiddleware(sessions, secureCookies)

	// Login y sesion.
	auth := r.Group("/auth")
	auth.POST("/sso", authH.SSOLogin)
	auth.POST("/otp/request", authH.RequestOTP)
	auth.POST("/otp/verify", authH.VerifyOTP)
	auth.POST("/login", authH.PasswordLogin)
	auth.POST("/logout", requireSession, authH.Logout)
	auth.GET("/me", requireSession, authH.Me)

	// Competencias: listado y ranking abiertos a todo usuario logueado.
	competitions := r.Group("/competitions", requireSession)
	competitions.GET("", competitionH.List)
	competitions.GET("/:id", competitionH.Get)
	competitions.GET("/:id/leaderboard", competitionH.Leaderboard)

	// Proyectos: borradores y envios del autor, votos, y revision docente.
	projects := r.Group("/projects", requireSession)
	projects.POST("", projectH.CreateDraft)
	projects.GET("/mine", projectH.ListMine)
	projects.PUT("/:id", projectH.UpdateDraft)
	projects.POST("/:id/submit", projectH.Submit)
	projects.POST("/:id/vote", projectH.CastVote)
	projects.DELETE("/:id/vote", projectH.RemoveVote)

	staff := projects.Group("", RequireRole(domain.RoleTeacher, domain.RoleAdmin))
	staff.GET("", projectH.List)
	staff.POST("/:id/review", projectH.Review)

	// Administracion.
	admin := r.Group("/admin", requireSession, RequireRole(domain.RoleAdmin))
	admin.GET("/users", adminH.ListUsers)
	admin.PUT("/users/:id/role", adminH.SetUserRole)
	admin.GET("/schools", adminH.ListSchools)
	admin.POST("/schools", adminH.CreateSchool)
	admin.PUT("/schools/:id", adminH.UpdateSchool)
	admin.DELETE("/schools/:id", adminH.DeleteSchool)
	admin.GET("/categories", adminH.ListCategories)
	admin.POST("/categories", adminH.CreateCategory)
	admin.PUT("/categories/:id", adminH.UpdateCategory)
	admin.DELETE("/categories/:id", adminH.DeleteCategory)
	admin.POST("/competitions", competitionH.Create)
	admin.PUT("/competitions/:id", competitionH.Update)
	admin.POST("/competitions/:id/status", competitionH.SetStatus)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
