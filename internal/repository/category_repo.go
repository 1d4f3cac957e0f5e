package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codearena/internal/domain"
	"codearena/internal/listquery"
)

type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) error
	GetByID(ctx context.Context, id string) (domain.Category, error)
	Update(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q listquery.Query) ([]domain.Category, int, error)
}

type PgCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgCategoryRepository(pool *pgxpool.Pool) *PgCategoryRepository {
	return &PgCategoryRepository{pool: pool}
}

func (r *PgCategoryRepository) Create(ctx context.Context, category domain.Category) error {
	const query = `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, category.ID, category.Name, category.Description, category.CreatedAt)
	return err
}

func (r *PgCategoryRepository) GetByID(ctx context.Context, id string) (domain.Category, error) {
	const query = `SELECT id, name, description, created_at FROM categories WHERE id = $1`
	var c domain.Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, err
	}
	return c, err
}

func (r *PgCategoryRepository) Update(ctx context.Context, category domain.Category) error {
	const query = `UPDATE categories SET name = $2, description = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, category.ID, category.Name, category.Description)
	return err
}

func (r *PgCategoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM categories WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

var categorySortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func (r *PgCategoryRepository) List(ctx context.Context, q listquery.Query) ([]domain.Category, int, error) {
	b := &condBuilder{}
	for _, f := range q.Filters {
		if f.Column == "name" {
			b.add(`name ILIKE $?`, likePattern(f.Text))
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM categories`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := pageArgs(b, q)
	query := `SELECT id, name, description, created_at FROM categories` + b.where() +
		orderClause(categorySortColumns, q.Sort, "name ASC") + limit
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}
