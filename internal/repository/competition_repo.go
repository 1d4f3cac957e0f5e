package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codearena/internal/domain"
	"codearena/internal/listquery"
)

type CompetitionRepository interface {
	Create(ctx context.Context, competition domain.Competition) error
	GetByID(ctx context.Context, id string) (domain.Competition, error)
	Update(ctx context.Context, competition domain.Competition) error
	UpdateStatus(ctx context.Context, id string, status domain.CompetitionStatus) error
	List(ctx context.Context, q listquery.Query) ([]domain.Competition, int, error)
}

type PgCompetitionRepository struct {
	pool *pgxpool.Pool
}

func NewPgCompetitionRepository(pool *pgxpool.Pool) *PgCompetitionRepository {
	return &PgCompetitionRepository{pool: pool}
}

const competitionColumns = `id, name, school_year, status, starts_at, ends_at, voting_ends_at, created_at`

func (r *PgCompetitionRepository) Create(ctx context.Context, competition domain.Competition) error {
	const query = `
		INSERT INTO competitions (` + competitionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		competition.ID,
		competition.Name,
		competition.SchoolYear,
		competition.Status,
		competition.StartsAt,
		competition.EndsAt,
		competition.VotingEndsAt,
		competition.CreatedAt,
	)
	return err
}

func (r *PgCompetitionRepository) GetByID(ctx context.Context, id string) (domain.Competition, error) {
	const query = `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1`
	var c domain.Competition
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.SchoolYear, &c.Status, &c.StartsAt, &c.EndsAt, &c.VotingEndsAt, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Competition{}, err
	}
	return c, err
}

func (r *PgCompetitionRepository) Update(ctx context.Context, competition domain.Competition) error {
	const query = `
		UPDATE competitions
		SET name = $2, school_year = $3, starts_at = $4, ends_at = $5, voting_ends_at = $6
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		competition.ID,
		competition.Name,
		competition.SchoolYear,
		competition.StartsAt,
		competition.EndsAt,
		competition.VotingEndsAt,
	)
	return err
}

func (r *PgCompetitionRepository) UpdateStatus(ctx context.Context, id string, status domain.CompetitionStatus) error {
	const query = `UPDATE competitions SET status = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status)
	return err
}

var competitionSortColumns = map[string]string{
	"name":        "name",
	"school_year": "school_year",
	"status":      "status",
	"starts_at":   "starts_at",
	"created_at":  "created_at",
}

func competitionListConds(q listquery.Query) *condBuilder {
	b := &condBuilder{}
	for _, f := range q.Filters {
		switch f.Column {
		case "name":
			b.add(`name ILIKE $?`, likePattern(f.Text))
		case "status":
			b.add(`status = ANY($?)`, f.Values)
		case "school_year":
			b.add(`school_year = ANY($?)`, f.Values)
		}
	}
	return b
}

func (r *PgCompetitionRepository) List(ctx context.Context, q listquery.Query) ([]domain.Competition, int, error) {
	b := competitionListConds(q)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM competitions`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := pageArgs(b, q)
	query := `SELECT ` + competitionColumns + ` FROM competitions` + b.where() +
		orderClause(competitionSortColumns, q.Sort, "starts_at DESC") + limit
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var competitions []domain.Competition
	for rows.Next() {
		var c domain.Competition
		if err := rows.Scan(&c.ID, &c.Name, &c.SchoolYear, &c.Status, &c.StartsAt, &c.EndsAt, &c.VotingEndsAt, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		competitions = append(competitions, c)
	}
	return competitions, total, rows.Err()
}
