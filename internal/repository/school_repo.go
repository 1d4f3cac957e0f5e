package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codearena/internal/domain"
	"codearena/internal/listquery"
)

type SchoolRepository interface {
	Create(ctx context.Context, school domain.School) error
	GetByID(ctx context.Context, id string) (domain.School, error)
	Update(ctx context.Context, school domain.School) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q listquery.Query) ([]domain.School, int, error)
}

type PgSchoolRepository struct {
	pool *pgxpool.Pool
}

func NewPgSchoolRepository(pool *pgxpool.Pool) *PgSchoolRepository {
	return &PgSchoolRepository{pool: pool}
}

func (r *PgSchoolRepository) Create(ctx context.Context, school domain.School) error {
	const query = `
		INSERT INTO schools (id, name, city, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, school.ID, school.Name, school.City, school.CreatedAt)
	return err
}

func (r *PgSchoolRepository) GetByID(ctx context.Context, id string) (domain.School, error) {
	const query = `SELECT id, name, city, created_at FROM schools WHERE id = $1`
	var s domain.School
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.City, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.School{}, err
	}
	return s, err
}

func (r *PgSchoolRepository) Update(ctx context.Context, school domain.School) error {
	const query = `UPDATE schools SET name = $2, city = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, school.ID, school.Name, school.City)
	return err
}

func (r *PgSchoolRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schools WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

var schoolSortColumns = map[string]string{
	"name":       "name",
	"city":       "city",
	"created_at": "created_at",
}

func schoolListConds(q listquery.Query) *condBuilder {
	b := &condBuilder{}
	for _, f := range q.Filters {
		switch f.Column {
		case "name":
			b.add(`name ILIKE $?`, likePattern(f.Text))
		case "city":
			b.add(`city ILIKE $?`, likePattern(f.Text))
		}
	}
	return b
}

func (r *PgSchoolRepository) List(ctx context.Context, q listquery.Query) ([]domain.School, int, error) {
	b := schoolListConds(q)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM schools`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := pageArgs(b, q)
	query := `SELECT id, name, city, created_at FROM schools` + b.where() +
		orderClause(schoolSortColumns, q.Sort, "name ASC") + limit
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var schools []domain.School
	for rows.Next() {
		var s domain.School
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		schools = append(schools, s)
	}
	return schools, total, rows.Err()
}
