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

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAuth(ctx context.Context, provider, subject string) (domain.User, error)
	LinkOAuth(ctx context.Context, id, provider, subject string) error
	VerifyEmail(ctx context.Context, id string, at time.Time) error
	UpdateOTP(ctx context.Context, id, codeHash string, expiresAt time.Time) error
	UpdateRole(ctx context.Context, id string, role domain.Role, schoolID string) error
	List(ctx context.Context, q listquery.Query) ([]domain.User, int, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, email, display_name, role, COALESCE(school_id::text, ''), auth_provider, auth_subject,
	password_hash, email_verified_at, otp_code_hash, otp_expires_at, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, display_name, role, school_id, auth_provider, auth_subject,
			password_hash, email_verified_at, otp_code_hash, otp_expires_at, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.Role,
		user.SchoolID,
		user.AuthProvider,
		user.AuthSubject,
		user.PasswordHash,
		user.EmailVerifiedAt,
		user.OtpCodeHash,
		user.OtpExpiresAt,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND auth_subject = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, provider, subject))
}

func (r *PgUserRepository) LinkOAuth(ctx context.Context, id, provider, subject string) error {
	const query = `UPDATE users SET auth_provider = $2, auth_subject = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, provider, subject)
	return err
}

func (r *PgUserRepository) VerifyEmail(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE users SET email_verified_at = $2, otp_code_hash = '', otp_expires_at = NULL
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgUserRepository) UpdateOTP(ctx context.Context, id, codeHash string, expiresAt time.Time) error {
	const query = `UPDATE users SET otp_code_hash = $2, otp_expires_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, codeHash, expiresAt)
	return err
}

func (r *PgUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role, schoolID string) error {
	const query = `UPDATE users SET role = $2, school_id = NULLIF($3, '')::uuid WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, role, schoolID)
	return err
}

var userSortColumns = map[string]string{
	"email":      "email",
	"name":       "display_name",
	"role":       "role",
	"created_at": "created_at",
}

func userListConds(q listquery.Query) *condBuilder {
	b := &condBuilder{}
	for _, f := range q.Filters {
		switch f.Column {
		case "name":
			b.add(`(display_name ILIKE $? OR email ILIKE $?)`, likePattern(f.Text), likePattern(f.Text))
		case "email":
			b.add(`email ILIKE $?`, likePattern(f.Text))
		case "role":
			b.add(`role = ANY($?)`, f.Values)
		case "school_id":
			b.add(`school_id::text = ANY($?)`, f.Values)
		}
	}
	return b
}

// List devuelve la pagina pedida y el total de filas que matchean.
func (r *PgUserRepository) List(ctx context.Context, q listquery.Query) ([]domain.User, int, error) {
	b := userListConds(q)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := pageArgs(b, q)
	query := `SELECT ` + userColumns + ` FROM users` + b.where() +
		orderClause(userSortColumns, q.Sort, "created_at DESC") + limit
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PgUserRepository) scanOne(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.Role,
		&u.SchoolID,
		&u.AuthProvider,
		&u.AuthSubject,
		&u.PasswordHash,
		&u.EmailVerifiedAt,
		&u.OtpCodeHash,
		&u.OtpExpiresAt,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}
