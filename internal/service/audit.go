package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/audit"
	"github.com/shenikar/tourist_safety/internal/metrics"
	"github.com/shenikar/tourist_safety/internal/models"
)

// SubjectRepository определяет контракт хранилища регистраций
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, subjectID string) (*models.Subject, error)
	UpdateTxRef(ctx context.Context, subjectID, txRef string) error
}

// RegisterSubjectInput - данные регистрации. NaturalKey хранится только в виде хэша.
type RegisterSubjectInput struct {
	SubjectID  string `validate:"required,max=128"`
	NaturalKey string `validate:"required,max=256"`
	Content    string
}

// Состояние записи в реестре
const (
	LedgerVerified    = "verified"
	LedgerPending     = "pending"
	LedgerNotRecorded = models.LedgerNotRecorded
)

// Verification - результат проверки целостности
type Verification struct {
	SubjectID      string `json:"subject_id,omitempty"`
	AlertID        string `json:"alert_id,omitempty"`
	Verified       bool   `json:"verified"`
	RecomputedHash string `json:"recomputed_hash"`
	StoredHash     string `json:"stored_hash"`
	EventID        string `json:"event_id"`
	TxRef          string `json:"tx_ref,omitempty"`
	LedgerStatus   string `json:"ledger_status"`
}

// AuditService определяет контракт журнала аудита
type AuditService interface {
	RegisterSubject(ctx context.Context, input RegisterSubjectInput) (*models.Subject, error)
	VerifySubject(ctx context.Context, subjectID string) (*Verification, error)
	VerifyAlert(ctx context.Context, id uuid.UUID) (*Verification, error)
}

type auditService struct {
	subjects SubjectRepository
	alerts   AlertRepository
	ledger   LedgerClient
	runner   TaskRunner
	salt     string
	validate *validator.Validate
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewAuditService(subjects SubjectRepository, alerts AlertRepository, ledger LedgerClient, runner TaskRunner, salt string, logger *logrus.Logger, m *metrics.Metrics) AuditService {
	return &auditService{
		subjects: subjects,
		alerts:   alerts,
		ledger:   ledger,
		runner:   runner,
		salt:     salt,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// RegisterSubject сохраняет регистрацию вместе с записью аудита,
// затем в фоне отправляет хэш в реестр.
func (s *auditService) RegisterSubject(ctx context.Context, input RegisterSubjectInput) (*models.Subject, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "audit",
		"method":     "RegisterSubject",
		"subject_id": input.SubjectID,
	})
	log.Info("Registering subject")

	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.Validation("audit", "%s", validationMessage(err))
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	fields := audit.RegistrationFields{
		SubjectID:       input.SubjectID,
		NaturalKeyHash:  audit.NaturalKeyHash(input.NaturalKey, s.salt),
		ContentHash:     audit.ContentHash([]byte(input.Content)),
		RegisteredAtISO: audit.FormatISO(now),
	}
	subject := &models.Subject{
		SubjectID:      fields.SubjectID,
		NaturalKeyHash: fields.NaturalKeyHash,
		Audit: models.AuditRecord{
			PayloadHash:     fields.Hash(),
			EventID:         audit.NewEventID(fields.SubjectID),
			ContentHash:     fields.ContentHash,
			RegisteredAtISO: fields.RegisteredAtISO,
		},
		CreatedAt: now,
	}

	if err := s.subjects.Create(ctx, subject); err != nil {
		log.WithError(err).Error("Failed to store subject registration")
		return nil, fmt.Errorf("service: could not register subject: %w", err)
	}

	subjectID, record := subject.SubjectID, subject.Audit
	s.runner.Go("ledger.submit.subject", func(ctx context.Context) error {
		txRef, err := s.ledger.Submit(ctx, record.EventID, record.PayloadHash)
		if err != nil {
			s.metrics.IncLedgerSubmit("subject", "failed")
			s.logger.WithError(err).WithField("subject_id", subjectID).Warn("Ledger submission failed, subject marked as not recorded")
			txRef = models.LedgerNotRecorded
		} else {
			s.metrics.IncLedgerSubmit("subject", "ok")
		}
		if err := s.subjects.UpdateTxRef(ctx, subjectID, txRef); err != nil {
			return fmt.Errorf("service: could not store ledger reference for subject %s: %w", subjectID, err)
		}
		return nil
	})

	log.WithField("event_id", subject.Audit.EventID).Info("Subject registered successfully")
	return subject, nil
}

// VerifySubject пересчитывает хэш регистрации и сверяет его с записью и реестром
func (s *auditService) VerifySubject(ctx context.Context, subjectID string) (*Verification, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "audit",
		"method":     "VerifySubject",
		"subject_id": subjectID,
	})

	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		log.WithError(err).Warn("Failed to load subject for verification")
		return nil, fmt.Errorf("service: could not verify subject: %w", err)
	}

	recomputed := audit.RegistrationFields{
		SubjectID:       subject.SubjectID,
		NaturalKeyHash:  subject.NaturalKeyHash,
		ContentHash:     subject.Audit.ContentHash,
		RegisteredAtISO: subject.Audit.RegisteredAtISO,
	}.Hash()

	v := &Verification{
		SubjectID:      subject.SubjectID,
		RecomputedHash: recomputed,
		StoredHash:     subject.Audit.PayloadHash,
		EventID:        subject.Audit.EventID,
		TxRef:          subject.Audit.TxRef,
	}
	return s.verify(ctx, log, v)
}

// VerifyAlert пересчитывает хэш тревоги из сохраненных полей
func (s *auditService) VerifyAlert(ctx context.Context, id uuid.UUID) (*Verification, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "audit",
		"method":   "VerifyAlert",
		"alert_id": id,
	})

	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to load alert for verification")
		return nil, fmt.Errorf("service: could not verify alert: %w", err)
	}

	v := &Verification{
		AlertID:        alert.ID.String(),
		SubjectID:      alert.SubjectID,
		RecomputedHash: alertFields(alert).Hash(),
		StoredHash:     alert.Ledger.PayloadHash,
		EventID:        alert.Ledger.EventID,
		TxRef:          alert.Ledger.TxRef,
	}
	return s.verify(ctx, log, v)
}

// verify сначала сверяет хэш с записью, затем с реестром. Расхождение
// возвращается как IntegrityMismatch, недоступный реестр - как Dependency.
// Verification возвращается и вместе с ошибкой.
func (s *auditService) verify(ctx context.Context, log *logrus.Entry, v *Verification) (*Verification, error) {
	if !audit.Equal(v.StoredHash, v.RecomputedHash) {
		log.Warn("Recomputed hash does not match stored record")
		return v, &apperr.IntegrityMismatch{Source: "record", Expected: v.StoredHash, Actual: v.RecomputedHash}
	}

	switch v.TxRef {
	case "":
		v.LedgerStatus = LedgerPending
		return v, nil
	case models.LedgerNotRecorded:
		v.LedgerStatus = LedgerNotRecorded
		return v, nil
	}

	ok, err := s.ledger.Verify(ctx, v.EventID, v.RecomputedHash)
	if err != nil {
		log.WithError(err).Error("Ledger verification unavailable")
		return v, fmt.Errorf("service: could not verify with ledger: %w", apperr.Dependency("audit", err))
	}
	if !ok {
		log.Warn("Ledger does not confirm recomputed hash")
		return v, &apperr.IntegrityMismatch{Source: "ledger", Expected: v.StoredHash, Actual: v.RecomputedHash}
	}

	v.Verified = true
	v.LedgerStatus = LedgerVerified
	log.Info("Record verified against ledger")
	return v, nil
}
