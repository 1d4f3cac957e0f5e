package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"codearena/internal/domain"
	"codearena/internal/email"
	"codearena/internal/repository"
)

// ProjectService maneja el ciclo de vida de los proyectos: borrador, envio
// y revision por docentes.
type ProjectService struct {
	logger       *zap.Logger
	projects     repository.ProjectRepository
	competitions repository.CompetitionRepository
	users        repository.UserRepository
	emailSender  email.Sender
}

func NewProjectService(
	logger *zap.Logger,
	projects repository.ProjectRepository,
	competitions repository.CompetitionRepository,
	users repository.UserRepository,
	emailSender email.Sender,
) *ProjectService {
	return &ProjectService{
		logger:       logger,
		projects:     projects,
		competitions: competitions,
		users:        users,
		emailSender:  emailSender,
	}
}

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrCompetitionNotFound  = errors.New("competition not found")
	ErrCompetitionNotOpen   = errors.New("competition not open for submissions")
	ErrProjectNotEditable   = errors.New("project not editable")
	ErrProjectNotReviewable = errors.New("project not reviewable")
	ErrNotProjectAuthor     = errors.New("not the project author")
	ErrInvalidProject       = errors.New("invalid project data")
)

type ProjectInput struct {
	CompetitionID string
	CategoryID    string
	Title         string
	Summary       string
	RepoURL       string
	DemoURL       string
}

// CreateDraft crea un borrador para el autor dentro de una competencia open.
func (s *ProjectService) CreateDraft(ctx context.Context, author domain.User, input ProjectInput) (domain.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.CompetitionID == "" || input.CategoryID == "" {
		return domain.Project{}, ErrInvalidProject
	}

	competition, err := s.competitions.GetByID(ctx, input.CompetitionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, ErrCompetitionNotFound
		}
		return domain.Project{}, err
	}
	if competition.Status != domain.CompetitionOpen {
		return domain.Project{}, ErrCompetitionNotOpen
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:            uuid.NewString(),
		CompetitionID: competition.ID,
		CategoryID:    input.CategoryID,
		AuthorID:      author.ID,
		SchoolID:      author.SchoolID,
		Title:         title,
		Summary:       strings.TrimSpace(input.Summary),
		RepoURL:       strings.TrimSpace(input.RepoURL),
		DemoURL:       strings.TrimSpace(input.DemoURL),
		Status:        domain.ProjectDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// UpdateDraft edita un borrador propio; solo mientras siga en draft.
func (s *ProjectService) UpdateDraft(ctx context.Context, authorID, projectID string, input ProjectInput) (domain.Project, error) {
	project, err := s.getOwned(ctx, authorID, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project.Status != domain.ProjectDraft {
		return domain.Project{}, ErrProjectNotEditable
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		project.Title = title
	}
	if input.CategoryID != "" {
		project.CategoryID = input.CategoryID
	}
	project.Summary = strings.TrimSpace(input.Summary)
	project.RepoURL = strings.TrimSpace(input.RepoURL)
	project.DemoURL = strings.TrimSpace(input.DemoURL)
	project.UpdatedAt = time.Now().UTC()

	if err := s.projects.UpdateDraft(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// Submit pasa draft -> submitted; exige competencia todavia open.
func (s *ProjectService) Submit(ctx context.Context, authorID, projectID string) (domain.Project, error) {
	project, err := s.getOwned(ctx, authorID, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project.Status != domain.ProjectDraft {
		return domain.Project{}, ErrProjectNotEditable
	}

	competition, err := s.competitions.GetByID(ctx, project.CompetitionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, ErrCompetitionNotFound
		}
		return domain.Project{}, err
	}
	if competition.Status != domain.CompetitionOpen {
		return domain.Project{}, ErrCompetitionNotOpen
	}

	now := time.Now().UTC()
	if err := s.projects.MarkSubmitted(ctx, project.ID, now); err != nil {
		return domain.Project{}, err
	}
	project.Status = domain.ProjectSubmitted
	project.SubmittedAt = &now
	project.UpdatedAt = now
	return project, nil
}

// Review resuelve un envio: submitted -> approved | rejected. La notificacion
// por email al autor es best effort; un fallo de envio no anula la revision.
func (s *ProjectService) Review(ctx context.Context, reviewerID, projectID string, approve bool, note string) (domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	if project.Status != domain.ProjectSubmitted {
		return domain.Project{}, ErrProjectNotReviewable
	}

	status := domain.ProjectRejected
	if approve {
		status = domain.ProjectApproved
	}
	note = strings.TrimSpace(note)
	now := time.Now().UTC()
	if err := s.projects.Review(ctx, project.ID, status, reviewerID, note, now); err != nil {
		return domain.Project{}, err
	}

	project.Status = status
	project.ReviewedBy = reviewerID
	project.ReviewedAt = &now
	project.ReviewNote = note
	project.UpdatedAt = now

	s.notifyReview(ctx, project, approve)
	return project, nil
}

// ListByAuthor devuelve los proyectos del autor, mas recientes primero.
func (s *ProjectService) ListByAuthor(ctx context.Context, authorID string) ([]domain.Project, error) {
	return s.projects.ListByAuthor(ctx, authorID)
}

func (s *ProjectService) getOwned(ctx context.Context, authorID, projectID string) (domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	if project.AuthorID != authorID {
		return domain.Project{}, ErrNotProjectAuthor
	}
	return project, nil
}

func (s *ProjectService) notifyReview(ctx context.Context, project domain.Project, approved bool) {
	if s.emailSender == nil {
		return
	}
	author, err := s.users.GetByID(ctx, project.AuthorID)
	if err != nil || author.Email == "" {
		return
	}
	if err := s.emailSender.SendReviewResult(ctx, author.Email, project.Title, approved, project.ReviewNote); err != nil {
		if s.logger != nil {
			s.logger.Warn("send review notification failed",
				zap.Error(err),
				zap.String("project_id", project.ID),
			)
		}
	}
}
