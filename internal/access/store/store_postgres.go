package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"credvault/internal/access/models"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/sentinel"
)

// pgUniqueViolation is raised by idx_access_requests_one_pending and the primary key.
const pgUniqueViolation = "23505"

// PostgresStore persists access requests in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs an access request store bound to a transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

const requestColumns = `id, certificate_id, requester_id, status, requested_at, decided_at`

func (s *PostgresStore) Save(ctx context.Context, req *models.Request) error {
	if req == nil {
		return fmt.Errorf("access request is required")
	}
	_, err := s.execer().ExecContext(ctx, `
		INSERT INTO access_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(req.ID),
		uuid.UUID(req.CertificateID),
		uuid.UUID(req.RequesterID),
		string(req.Status),
		req.RequestedAt,
		nullTime(req.DecidedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save access request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, reqID id.AccessRequestID) (*models.Request, error) {
	req, err := scanRequest(s.execer().QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM access_requests WHERE id = $1`, uuid.UUID(reqID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find access request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) FindPending(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (*models.Request, error) {
	req, err := scanRequest(s.execer().QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM access_requests
		WHERE certificate_id = $1 AND requester_id = $2 AND status = 'pending'
	`, uuid.UUID(certID), uuid.UUID(requesterID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find pending access request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) HasApproved(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error) {
	var exists bool
	err := s.execer().QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM access_requests
			WHERE certificate_id = $1 AND requester_id = $2 AND status = 'approved'
		)
	`, uuid.UUID(certID), uuid.UUID(requesterID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approved access request: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListByCertificate(ctx context.Context, certID id.CertificateID) ([]*models.Request, error) {
	return s.list(ctx, `
		SELECT `+requestColumns+` FROM access_requests
		WHERE certificate_id = $1
		ORDER BY requested_at DESC, id
	`, uuid.UUID(certID))
}

func (s *PostgresStore) ListByRequester(ctx context.Context, requesterID id.SubjectID) ([]*models.Request, error) {
	return s.list(ctx, `
		SELECT `+requestColumns+` FROM access_requests
		WHERE requester_id = $1
		ORDER BY requested_at DESC, id
	`, uuid.UUID(requesterID))
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Request, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("list access requests: unknown status %q", status)
	}
	return s.list(ctx, `
		SELECT `+requestColumns+` FROM access_requests
		WHERE status = $1
		ORDER BY requested_at DESC, id
	`, string(status))
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]*models.Request, error) {
	rows, err := s.execer().QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access requests: %w", err)
	}
	return requests, nil
}

// Execute atomically validates and mutates an access request under a row lock.
func (s *PostgresStore) Execute(ctx context.Context, reqID id.AccessRequestID, validate func(*models.Request) error, mutate func(*models.Request)) (*models.Request, error) {
	if s.tx != nil {
		return s.executeWithTx(ctx, s.tx, reqID, validate, mutate)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin access request execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	req, err := s.executeWithTx(ctx, tx, reqID, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit access request execute: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) executeWithTx(ctx context.Context, tx *sql.Tx, reqID id.AccessRequestID, validate func(*models.Request) error, mutate func(*models.Request)) (*models.Request, error) {
	req, err := scanRequest(tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM access_requests WHERE id = $1 FOR UPDATE`, uuid.UUID(reqID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find access request for execute: %w", err)
	}

	if err := validate(req); err != nil {
		return nil, err
	}
	mutate(req)

	if _, err := tx.ExecContext(ctx, `
		UPDATE access_requests SET status = $2, decided_at = $3 WHERE id = $1
	`, uuid.UUID(req.ID), string(req.Status), nullTime(req.DecidedAt)); err != nil {
		return nil, fmt.Errorf("update access request: %w", err)
	}
	return req, nil
}

type requestRow interface {
	Scan(dest ...any) error
}

func scanRequest(row requestRow) (*models.Request, error) {
	var req models.Request
	var reqID, certID, requesterID uuid.UUID
	var status string
	var decidedAt sql.NullTime
	if err := row.Scan(&reqID, &certID, &requesterID, &status, &req.RequestedAt, &decidedAt); err != nil {
		return nil, err
	}
	req.ID = id.AccessRequestID(reqID)
	req.CertificateID = id.CertificateID(certID)
	req.RequesterID = id.SubjectID(requesterID)
	req.Status = models.Status(status)
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("scan access request %s: unknown status %q", req.ID, status)
	}
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}
	return &req, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
