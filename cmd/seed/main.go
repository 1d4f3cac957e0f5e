package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"codearena/internal/config"
	"codearena/internal/db"
	"codearena/internal/domain"
	"codearena/internal/email"
	"codearena/internal/listquery"
	"codearena/internal/repository"
	"codearena/internal/service"
)

// Siembra datos minimos para un entorno de desarrollo: un admin, un colegio,
// una categoria y una competencia abierta. Correr mas de una vez es seguro.
func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	schoolRepo := repository.NewPgSchoolRepository(pool)
	categoryRepo := repository.NewPgCategoryRepository(pool)
	competitionRepo := repository.NewPgCompetitionRepository(pool)
	userSvc := service.NewUserService(logger, userRepo, email.NewDisabledSender("seed"), nil)

	const adminEmail = "admin@codearena.local"
	if _, err := userRepo.GetByEmail(ctx, adminEmail); errors.Is(err, pgx.ErrNoRows) {
		admin, err := userSvc.CreateUser(ctx, service.CreateUserInput{
			Email:       adminEmail,
			DisplayName: "Admin",
			Role:        domain.RoleAdmin,
			Password:    "admin123",
		})
		if err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		log.Printf("admin created: %s (password admin123)", admin.Email)
	} else if err != nil {
		log.Fatalf("lookup admin: %v", err)
	} else {
		log.Println("admin already present")
	}

	school := seedSchool(ctx, schoolRepo, "Colegio Demo")
	seedCategory(ctx, categoryRepo, "Programacion")
	seedCompetition(ctx, competitionRepo, "Feria de Codigo 2026")

	log.Printf("seed done (school %s)", school.ID)
}

func seedSchool(ctx context.Context, repo repository.SchoolRepository, name string) domain.School {
	if existing, ok := findSchool(ctx, repo, name); ok {
		log.Printf("school already present: %s", name)
		return existing
	}
	school := domain.School{
		ID:        uuid.NewString(),
		Name:      name,
		City:      "Buenos Aires",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, school); err != nil {
		log.Fatalf("seed school: %v", err)
	}
	log.Printf("school created: %s", name)
	return school
}

func findSchool(ctx context.Context, repo repository.SchoolRepository, name string) (domain.School, bool) {
	schools, _, err := repo.List(ctx, nameLookup(name))
	if err != nil {
		log.Fatalf("list schools: %v", err)
	}
	for _, s := range schools {
		if s.Name == name {
			return s, true
		}
	}
	return domain.School{}, false
}

func seedCategory(ctx context.Context, repo repository.CategoryRepository, name string) {
	categories, _, err := repo.List(ctx, nameLookup(name))
	if err != nil {
		log.Fatalf("list categories: %v", err)
	}
	for _, c := range categories {
		if c.Name == name {
			log.Printf("category already present: %s", name)
			return
		}
	}
	category := domain.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: "Proyectos de software",
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(ctx, category); err != nil {
		log.Fatalf("seed category: %v", err)
	}
	log.Printf("category created: %s", name)
}

func seedCompetition(ctx context.Context, repo repository.CompetitionRepository, name string) {
	competitions, _, err := repo.List(ctx, nameLookup(name))
	if err != nil {
		log.Fatalf("list competitions: %v", err)
	}
	for _, c := range competitions {
		if c.Name == name {
			log.Printf("competition already present: %s", name)
			return
		}
	}
	now := time.Now().UTC()
	competition := domain.Competition{
		ID:           uuid.NewString(),
		Name:         name,
		SchoolYear:   "2026",
		Status:       domain.CompetitionOpen,
		StartsAt:     now,
		EndsAt:       now.Add(30 * 24 * time.Hour),
		VotingEndsAt: now.Add(45 * 24 * time.Hour),
		CreatedAt:    now,
	}
	if err := repo.Create(ctx, competition); err != nil {
		log.Fatalf("seed competition: %v", err)
	}
	log.Printf("competition created: %s", name)
}

// nameLookup arma la consulta por nombre exacto via busqueda de texto.
func nameLookup(name string) listquery.Query {
	return listquery.Query{
		Page:    1,
		PerPage: 50,
		Filters: []listquery.Filter{{Column: "name", Text: name}},
	}
}
