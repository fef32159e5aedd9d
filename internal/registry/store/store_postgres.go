package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"credvault/internal/registry/models"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/sentinel"
)

// PostgresStore persists certificates in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgres constructs a PostgreSQL-backed certificate store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs a certificate store bound to a transaction.
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

const certificateColumns = `id, title, issuer_id, candidate_id, issued_at, expires_at, revoked_at, attributes`

func (s *PostgresStore) Save(ctx context.Context, cert *models.Certificate) error {
	if cert == nil {
		return fmt.Errorf("certificate is required")
	}
	attrs, err := marshalAttributes(cert.Attributes)
	if err != nil {
		return err
	}
	_, err = s.execer().ExecContext(ctx, `
		INSERT INTO certificates (`+certificateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.UUID(cert.ID),
		cert.Title,
		uuid.UUID(cert.IssuerID),
		uuid.UUID(cert.CandidateID),
		cert.IssuedAt,
		nullTime(cert.ExpiresAt),
		nullTime(cert.RevokedAt),
		attrs,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	return s.findOne(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE id = $1`, certID)
}

// FindForShare reads a certificate holding a share lock until the surrounding
// transaction ends, so it cannot be changed under a concurrent request insert.
func (s *PostgresStore) FindForShare(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	if s.tx == nil {
		return s.FindByID(ctx, certID)
	}
	return s.findOne(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE id = $1 FOR SHARE`, certID)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, certID id.CertificateID) (*models.Certificate, error) {
	cert, err := scanCertificate(s.execer().QueryRowContext(ctx, query, uuid.UUID(certID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return cert, nil
}

func (s *PostgresStore) ListByIssuer(ctx context.Context, issuerID id.SubjectID) ([]*models.Certificate, error) {
	return s.list(ctx, `
		SELECT `+certificateColumns+`
		FROM certificates
		WHERE issuer_id = $1
		ORDER BY issued_at DESC, id
	`, uuid.UUID(issuerID))
}

func (s *PostgresStore) ListByCandidate(ctx context.Context, candidateID id.SubjectID) ([]*models.Certificate, error) {
	return s.list(ctx, `
		SELECT `+certificateColumns+`
		FROM certificates
		WHERE candidate_id = $1
		ORDER BY issued_at DESC, id
	`, uuid.UUID(candidateID))
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]*models.Certificate, error) {
	rows, err := s.execer().QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	certs := make([]*models.Certificate, 0)
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return certs, nil
}

// Execute atomically validates and mutates a certificate under a row lock.
func (s *PostgresStore) Execute(ctx context.Context, certID id.CertificateID, validate func(*models.Certificate) error, mutate func(*models.Certificate)) (*models.Certificate, error) {
	if s.tx != nil {
		return s.executeWithTx(ctx, s.tx, certID, validate, mutate)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin certificate execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	cert, err := s.executeWithTx(ctx, tx, certID, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit certificate execute: %w", err)
	}
	return cert, nil
}

func (s *PostgresStore) executeWithTx(ctx context.Context, tx *sql.Tx, certID id.CertificateID, validate func(*models.Certificate) error, mutate func(*models.Certificate)) (*models.Certificate, error) {
	cert, err := scanCertificate(tx.QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE id = $1 FOR UPDATE`, uuid.UUID(certID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find certificate for execute: %w", err)
	}

	if err := validate(cert); err != nil {
		return nil, err
	}
	mutate(cert)

	// Only the revoked marker is mutable after issuance.
	if _, err := tx.ExecContext(ctx, `UPDATE certificates SET revoked_at = $2 WHERE id = $1`,
		uuid.UUID(cert.ID), nullTime(cert.RevokedAt)); err != nil {
		return nil, fmt.Errorf("update certificate: %w", err)
	}
	return cert, nil
}

type certificateRow interface {
	Scan(dest ...any) error
}

func scanCertificate(row certificateRow) (*models.Certificate, error) {
	var cert models.Certificate
	var certID, issuerID, candidateID uuid.UUID
	var expiresAt, revokedAt sql.NullTime
	var attrs []byte
	if err := row.Scan(&certID, &cert.Title, &issuerID, &candidateID, &cert.IssuedAt, &expiresAt, &revokedAt, &attrs); err != nil {
		return nil, err
	}
	cert.ID = id.CertificateID(certID)
	cert.IssuerID = id.SubjectID(issuerID)
	cert.CandidateID = id.SubjectID(candidateID)
	if expiresAt.Valid {
		cert.ExpiresAt = &expiresAt.Time
	}
	if revokedAt.Valid {
		cert.RevokedAt = &revokedAt.Time
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &cert.Attributes); err != nil {
			return nil, fmt.Errorf("decode certificate attributes: %w", err)
		}
		if len(cert.Attributes) == 0 {
			cert.Attributes = nil
		}
	}
	return &cert, nil
}

func marshalAttributes(attrs map[string]any) ([]byte, error) {
	if len(attrs) == 0 {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode certificate attributes: %w: %w", sentinel.ErrInvalidInput, err)
	}
	return b, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
