package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"credvault/internal/directory/models"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/sentinel"
)

// PostgresStore persists subjects in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed subject store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const subjectColumns = `id, role, display_name, contact_id, created_at, secret_hash`

// Save inserts a subject. The unique contact index turns a concurrent enroll
// into sentinel.ErrConflict.
func (s *PostgresStore) Save(ctx context.Context, subject *models.Subject) error {
	if subject == nil {
		return fmt.Errorf("subject is required")
	}
	var storedID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO subjects (`+subjectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (contact_id) DO NOTHING
		RETURNING id
	`,
		uuid.UUID(subject.ID),
		subject.Role.String(),
		subject.DisplayName,
		subject.ContactID,
		subject.CreatedAt,
		subject.SecretHash,
	).Scan(&storedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save subject: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, uuid.UUID(subjectID))
	subject, err := scanSubject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return subject, nil
}

func (s *PostgresStore) FindByContact(ctx context.Context, contactID string) (*models.Subject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE contact_id = $1`, contactID)
	subject, err := scanSubject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find subject by contact: %w", err)
	}
	return subject, nil
}

func (s *PostgresStore) ListByRole(ctx context.Context, role id.Role) ([]*models.Subject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subjectColumns+`
		FROM subjects
		WHERE role = $1
		ORDER BY display_name, contact_id
	`, role.String())
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]*models.Subject, 0)
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}
	return subjects, nil
}

type subjectRow interface {
	Scan(dest ...any) error
}

func scanSubject(row subjectRow) (*models.Subject, error) {
	var subject models.Subject
	var subjectID uuid.UUID
	var role string
	if err := row.Scan(&subjectID, &role, &subject.DisplayName, &subject.ContactID, &subject.CreatedAt, &subject.SecretHash); err != nil {
		return nil, err
	}
	subject.ID = id.SubjectID(subjectID)
	subject.Role = id.Role(role)
	return &subject, nil
}
