package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linker_auth/internal/config"
	"linker_auth/internal/models"
	"linker_auth/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Postgres) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, user.Email, user.Username, user.PassHash, string(user.Role)).Scan(&id)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return 0, conflict
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) UserByUsername(ctx context.Context, username string) (models.User, error) {
	const op = "storage.postgres.UserByUsername"

	return r.user(ctx, op, `WHERE username = $1`, username)
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.UserByEmail"

	return r.user(ctx, op, `WHERE email = $1`, email)
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	const op = "storage.postgres.UserByID"

	return r.user(ctx, op, `WHERE id = $1`, id)
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, uid int64, passHash []byte) error {
	const op = "storage.postgres.UpdatePassword"

	query := `UPDATE users SET password_hash = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, passHash, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func (r *PostgresRepo) SaveResetRequest(ctx context.Context, rec models.ResetRequest) error {
	const op = "storage.postgres.SaveResetRequest"

	var err error

	switch rec.Kind {
	case models.ResetManual:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO manual_password_change (email, hash, created_at)
			VALUES ($1, $2, $3)
		`, rec.Email, rec.Hash, rec.CreatedAt)
	case models.ResetAuto:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO auto_password_change (email, hash, secret_code, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, rec.Email, rec.Hash, rec.SecretCode, rec.UserID, rec.CreatedAt)
	default:
		err = unknownKind(rec.Kind)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) LatestResetByHash(ctx context.Context, kind models.ResetKind, hash string) (models.ResetRequest, error) {
	const op = "storage.postgres.LatestResetByHash"

	return r.latestReset(ctx, op, kind, "hash", hash)
}

func (r *PostgresRepo) LatestResetByEmail(ctx context.Context, kind models.ResetKind, email string) (models.ResetRequest, error) {
	const op = "storage.postgres.LatestResetByEmail"

	return r.latestReset(ctx, op, kind, "email", email)
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) user(ctx context.Context, op, where string, arg any) (models.User, error) {
	query := `
		SELECT id, email, username, password_hash, role
		FROM users
	` + where

	var (
		u    models.User
		role string
	)

	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Username, &u.PassHash, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u.Role = models.Role(role)

	return u, nil
}

// latestReset returns the newest row for column = value; ties on created_at
// go to the later insert.
func (r *PostgresRepo) latestReset(
	ctx context.Context,
	op string,
	kind models.ResetKind,
	column, value string,
) (models.ResetRequest, error) {
	rec := models.ResetRequest{Kind: kind}

	var (
		row pgx.Row
		err error
	)

	switch kind {
	case models.ResetManual:
		row = r.pool.QueryRow(ctx, `
			SELECT email, hash, created_at
			FROM manual_password_change
			WHERE `+column+` = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		`, value)
		err = row.Scan(&rec.Email, &rec.Hash, &rec.CreatedAt)
	case models.ResetAuto:
		row = r.pool.QueryRow(ctx, `
			SELECT email, hash, secret_code, user_id, created_at
			FROM auto_password_change
			WHERE `+column+` = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		`, value)
		err = row.Scan(&rec.Email, &rec.Hash, &rec.SecretCode, &rec.UserID, &rec.CreatedAt)
	default:
		err = unknownKind(kind)
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ResetRequest{}, storage.ErrResetNotFound
		}

		return models.ResetRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// * uniqueConflict maps a unique violation on users to the matching sentinel.
func uniqueConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case "users_email_key":
		return storage.ErrEmailExists
	case "users_username_key":
		return storage.ErrUsernameExists
	}

	return nil
}

func unknownKind(kind models.ResetKind) error {
	return fmt.Errorf("unknown reset kind %q", kind)
}

// * dsn builds the connection string for pgxpool and database/sql.
func dsn(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}
