package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codearena/internal/domain"
)

type VoteRepository interface {
	Upsert(ctx context.Context, vote domain.Vote) error
	Get(ctx context.Context, projectID, voterID string) (domain.Vote, error)
	Delete(ctx context.Context, projectID, voterID string) error
	AggregateByCompetition(ctx context.Context, competitionID string) ([]domain.LeaderboardEntry, error)
}

type PgVoteRepository struct {
	pool *pgxpool.Pool
}

func NewPgVoteRepository(pool *pgxpool.Pool) *PgVoteRepository {
	return &PgVoteRepository{pool: pool}
}

// Upsert inserta el voto o actualiza el score si el usuario ya voto el proyecto.
func (r *PgVoteRepository) Upsert(ctx context.Context, vote domain.Vote) error {
	const query = `
		INSERT INTO votes (project_id, voter_id, score, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, voter_id) DO UPDATE SET score = EXCLUDED.score
	`
	_, err := r.pool.Exec(ctx, query, vote.ProjectID, vote.VoterID, vote.Score, vote.CreatedAt)
	return err
}

func (r *PgVoteRepository) Get(ctx context.Context, projectID, voterID string) (domain.Vote, error) {
	const query = `
		SELECT project_id, voter_id, score, created_at
		FROM votes WHERE project_id = $1 AND voter_id = $2
	`
	var v domain.Vote
	err := r.pool.QueryRow(ctx, query, projectID, voterID).Scan(&v.ProjectID, &v.VoterID, &v.Score, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Vote{}, err
	}
	return v, err
}

func (r *PgVoteRepository) Delete(ctx context.Context, projectID, voterID string) error {
	const query = `DELETE FROM votes WHERE project_id = $1 AND voter_id = $2`
	_, err := r.pool.Exec(ctx, query, projectID, voterID)
	return err
}

// AggregateByCompetition devuelve una fila por proyecto aprobado con sus
// votos agregados, ya ordenada segun el criterio del ranking: total desc,
// cantidad desc y, a igualdad, el envio mas antiguo primero.
func (r *PgVoteRepository) AggregateByCompetition(ctx context.Context, competitionID string) ([]domain.LeaderboardEntry, error) {
	const query = `
		SELECT p.id, p.title, COALESCE(u.display_name, ''), p.category_id,
			count(v.voter_id), COALESCE(sum(v.score), 0)
		FROM projects p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN votes v ON v.project_id = p.id
		WHERE p.competition_id = $1 AND p.status = $2
		GROUP BY p.id, p.title, u.display_name, p.category_id, p.submitted_at
		ORDER BY COALESCE(sum(v.score), 0) DESC, count(v.voter_id) DESC, p.submitted_at ASC
	`
	rows, err := r.pool.Query(ctx, query, competitionID, domain.ProjectApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ProjectID, &e.Title, &e.AuthorName, &e.CategoryID, &e.VoteCount, &e.TotalScore); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
