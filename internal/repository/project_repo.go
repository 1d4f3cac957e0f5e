package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codearena/internal/domain"
	"codearena/internal/listquery"
)

type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) error
	GetByID(ctx context.Context, id string) (domain.Project, error)
	UpdateDraft(ctx context.Context, project domain.Project) error
	MarkSubmitted(ctx context.Context, id string, at time.Time) error
	Review(ctx context.Context, id string, status domain.ProjectStatus, reviewerID, note string, at time.Time) error
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Project, error)
	List(ctx context.Context, q listquery.Query) ([]domain.Project, int, error)
}

type PgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

const projectColumns = `p.id, p.competition_id, p.category_id, p.author_id, COALESCE(p.school_id::text, ''),
	p.title, p.summary, p.repo_url, p.demo_url, p.status, p.submitted_at,
	COALESCE(p.reviewed_by::text, ''), p.reviewed_at, p.review_note, p.created_at, p.updated_at`

func (r *PgProjectRepository) Create(ctx context.Context, project domain.Project) error {
	const query = `
		INSERT INTO projects (id, competition_id, category_id, author_id, school_id,
			title, summary, repo_url, demo_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		project.ID,
		project.CompetitionID,
		project.CategoryID,
		project.AuthorID,
		project.SchoolID,
		project.Title,
		project.Summary,
		project.RepoURL,
		project.DemoURL,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return err
}

func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (domain.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgProjectRepository) UpdateDraft(ctx context.Context, project domain.Project) error {
	const query = `
		UPDATE projects
		SET category_id = $2, title = $3, summary = $4, repo_url = $5, demo_url = $6, updated_at = $7
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		project.ID,
		project.CategoryID,
		project.Title,
		project.Summary,
		project.RepoURL,
		project.DemoURL,
		project.UpdatedAt,
	)
	return err
}

func (r *PgProjectRepository) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE projects SET status = $2, submitted_at = $3, updated_at = $3
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, domain.ProjectSubmitted, at)
	return err
}

func (r *PgProjectRepository) Review(ctx context.Context, id string, status domain.ProjectStatus, reviewerID, note string, at time.Time) error {
	const query = `
		UPDATE projects
		SET status = $2, reviewed_by = $3::uuid, reviewed_at = $4, review_note = $5, updated_at = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, status, reviewerID, at, note)
	return err
}

func (r *PgProjectRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects p WHERE p.author_id = $1 ORDER BY p.created_at DESC`
	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

var projectSortColumns = map[string]string{
	"title":        "p.title",
	"status":       "p.status",
	"submitted_at": "p.submitted_at",
	"created_at":   "p.created_at",
}

// projectListConds traduce los filtros del listado a condiciones SQL. Las
// columnas de faceta van con el mismo id que exponen los configs del listado.
func projectListConds(q listquery.Query) *condBuilder {
	b := &condBuilder{}
	for _, f := range q.Filters {
		switch f.Column {
		case "title":
			b.add(`p.title ILIKE $?`, likePattern(f.Text))
		case "author":
			b.add(`EXISTS (SELECT 1 FROM users u WHERE u.id = p.author_id
				AND (u.display_name ILIKE $? OR u.email ILIKE $?))`, likePattern(f.Text), likePattern(f.Text))
		case "status":
			b.add(`p.status = ANY($?)`, f.Values)
		case "category_id":
			b.add(`p.category_id::text = ANY($?)`, f.Values)
		case "competition_id":
			b.add(`p.competition_id::text = ANY($?)`, f.Values)
		case "school_id":
			b.add(`p.school_id::text = ANY($?)`, f.Values)
		}
	}
	return b
}

func (r *PgProjectRepository) List(ctx context.Context, q listquery.Query) ([]domain.Project, int, error) {
	b := projectListConds(q)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM projects p`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := pageArgs(b, q)
	query := `SELECT ` + projectColumns + ` FROM projects p` + b.where() +
		orderClause(projectSortColumns, q.Sort, "p.created_at DESC") + limit
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}
	return projects, total, rows.Err()
}

func (r *PgProjectRepository) scanOne(row rowScanner) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.CompetitionID,
		&p.CategoryID,
		&p.AuthorID,
		&p.SchoolID,
		&p.Title,
		&p.Summary,
		&p.RepoURL,
		&p.DemoURL,
		&p.Status,
		&p.SubmittedAt,
		&p.ReviewedBy,
		&p.ReviewedAt,
		&p.ReviewNote,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, err
	}
	return p, err
}
