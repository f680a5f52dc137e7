package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
)

type SubjectRepository struct {
	db *pgxpool.Pool
}

func NewSubjectRepository(db *pgxpool.Pool) service.SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create сохраняет регистрацию. Повторная регистрация того же субъекта - конфликт.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	query := `
		INSERT INTO subjects (subject_id, natural_key_hash, payload_hash, event_id, tx_ref, content_hash, registered_at_iso, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		subject.SubjectID,
		subject.NaturalKeyHash,
		subject.Audit.PayloadHash,
		subject.Audit.EventID,
		subject.Audit.TxRef,
		subject.Audit.ContentHash,
		subject.Audit.RegisteredAtISO,
		subject.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperr.Conflict("subject", "subject %s is already registered", subject.SubjectID)
		}
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

// GetByID возвращает регистрацию по id субъекта
func (r *SubjectRepository) GetByID(ctx context.Context, subjectID string) (*models.Subject, error) {
	query := `
		SELECT subject_id, natural_key_hash, payload_hash, event_id, tx_ref, content_hash, registered_at_iso, created_at
		FROM subjects
		WHERE subject_id = $1;
	`
	subject := &models.Subject{}
	err := r.db.QueryRow(ctx, query, subjectID).Scan(
		&subject.SubjectID,
		&subject.NaturalKeyHash,
		&subject.Audit.PayloadHash,
		&subject.Audit.EventID,
		&subject.Audit.TxRef,
		&subject.Audit.ContentHash,
		&subject.Audit.RegisteredAtISO,
		&subject.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("subject", "subject %s not found", subjectID)
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	subject.CreatedAt = subject.CreatedAt.UTC()
	return subject, nil
}

// UpdateTxRef меняет только ссылку на транзакцию реестра
func (r *SubjectRepository) UpdateTxRef(ctx context.Context, subjectID, txRef string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE subjects SET tx_ref = $1 WHERE subject_id = $2;`, txRef, subjectID)
	if err != nil {
		return fmt.Errorf("failed to update subject tx ref: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("subject", "subject %s not found for tx ref update", subjectID)
	}
	return nil
}
