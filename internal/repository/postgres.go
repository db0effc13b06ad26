package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/domain"
)

// NewPool opens a pgx connection pool from configuration
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MinIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MinIdleConns)
	}
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// querier is the subset of pgxpool.Pool used by PostgresStore
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore reads users, withdrawals and audit logs owned by the core platform
type PostgresStore struct {
	db querier
}

// NewPostgresStore creates a PostgreSQL-backed data store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// GetUser returns the user or domain.ErrUserNotFound
func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT id, email, kyc_status, created_at, last_login_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	var kyc string
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&u.ID,
		&u.Email,
		&kyc,
		&u.CreatedAt,
		&u.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.KYCStatus = domain.KYCStatus(kyc)
	return &u, nil
}

// GetRecentWithdrawals returns up to limit withdrawals of any status, newest first
func (s *PostgresStore) GetRecentWithdrawals(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	query := `
		SELECT id, user_id, amount::float8, status, created_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Withdrawal, 0, limit)
	for rows.Next() {
		var w domain.Withdrawal
		var status string
		if err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &status, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		w.Status = domain.WithdrawalStatus(status)
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", err)
	}
	return result, nil
}

// HasDeviceFingerprint reports whether any audit log for the user carries the fingerprint
func (s *PostgresStore) HasDeviceFingerprint(ctx context.Context, userID, fingerprint string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM audit_logs
			WHERE user_id = $1
			  AND metadata->>'device_fingerprint' = $2
		)
	`

	var exists bool
	if err := s.db.QueryRow(ctx, query, userID, fingerprint).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check device fingerprint: %w", err)
	}
	return exists, nil
}
