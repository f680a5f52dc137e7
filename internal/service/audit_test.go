package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/audit"
	"github.com/shenikar/tourist_safety/internal/background"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
	"github.com/shenikar/tourist_safety/internal/service/mocks"
)

const testSalt = "pepper"

type auditFixture struct {
	svc      service.AuditService
	subjects *mocks.MockSubjectRepository
	alerts   *mocks.MockAlertRepository
	ledger   *mocks.MockLedgerClient
	runner   *background.Runner
}

func newTestAuditService(t *testing.T) *auditFixture {
	ctrl := gomock.NewController(t)
	f := &auditFixture{
		subjects: mocks.NewMockSubjectRepository(ctrl),
		alerts:   mocks.NewMockAlertRepository(ctrl),
		ledger:   mocks.NewMockLedgerClient(ctrl),
		runner:   newRunner(t),
	}
	f.svc = service.NewAuditService(f.subjects, f.alerts, f.ledger, f.runner, testSalt, silentLogger(), nil)
	service.SetAuditClock(f.svc, stepClock(baseTime))
	return f
}

// storedSubject собирает регистрацию так же, как ее сохраняет сервис
func storedSubject(subjectID, naturalKey, content, txRef string) *models.Subject {
	fields := audit.RegistrationFields{
		SubjectID:       subjectID,
		NaturalKeyHash:  audit.NaturalKeyHash(naturalKey, testSalt),
		ContentHash:     audit.ContentHash([]byte(content)),
		RegisteredAtISO: audit.FormatISO(baseTime),
	}
	return &models.Subject{
		SubjectID:      subjectID,
		NaturalKeyHash: fields.NaturalKeyHash,
		Audit: models.AuditRecord{
			PayloadHash:     fields.Hash(),
			EventID:         audit.NewEventID(subjectID),
			TxRef:           txRef,
			ContentHash:     fields.ContentHash,
			RegisteredAtISO: fields.RegisteredAtISO,
		},
		CreatedAt: baseTime,
	}
}

func TestRegisterSubject_Success(t *testing.T) {
	// Подготовка
	f := newTestAuditService(t)
	ctx := context.Background()
	want := storedSubject("tourist-1", "P1234567", "Agra -> Jaipur", "")

	f.subjects.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *models.Subject) error {
			assert.Equal(t, want.NaturalKeyHash, s.NaturalKeyHash)
			assert.Equal(t, want.Audit.PayloadHash, s.Audit.PayloadHash)
			assert.Empty(t, s.Audit.TxRef)
			return nil
		}).
		Times(1)
	f.ledger.EXPECT().
		Submit(gomock.Any(), gomock.Any(), want.Audit.PayloadHash).
		Return("0xabc", nil).
		Times(1)
	f.subjects.EXPECT().UpdateTxRef(gomock.Any(), "tourist-1", "0xabc").Return(nil).Times(1)

	// Действие
	subject, err := f.svc.RegisterSubject(ctx, service.RegisterSubjectInput{
		SubjectID:  "tourist-1",
		NaturalKey: "P1234567",
		Content:    "Agra -> Jaipur",
	})
	f.runner.Wait()

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T10:00:00.000Z", subject.Audit.RegisteredAtISO)
	assert.Equal(t, audit.ContentHash([]byte("Agra -> Jaipur")), subject.Audit.ContentHash)
	assert.Len(t, subject.Audit.EventID, 64)
	assert.NotContains(t, subject.NaturalKeyHash, "P1234567")
}

func TestRegisterSubject_EmptyContentHashesEmptyString(t *testing.T) {
	f := newTestAuditService(t)
	f.subjects.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return("0x1", nil).Times(1)
	f.subjects.EXPECT().UpdateTxRef(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

	subject, err := f.svc.RegisterSubject(context.Background(), service.RegisterSubjectInput{SubjectID: "t", NaturalKey: "k"})
	f.runner.Wait()

	require.NoError(t, err)
	assert.Equal(t, audit.SHA256Hex(""), subject.Audit.ContentHash)
}

func TestRegisterSubject_LedgerFailureMarksNotRecorded(t *testing.T) {
	f := newTestAuditService(t)
	f.subjects.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.ledger.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("gateway timeout")).
		Times(1)
	f.subjects.EXPECT().UpdateTxRef(gomock.Any(), "tourist-1", models.LedgerNotRecorded).Return(nil).Times(1)

	subject, err := f.svc.RegisterSubject(context.Background(), service.RegisterSubjectInput{SubjectID: "tourist-1", NaturalKey: "k"})
	f.runner.Wait()

	require.NoError(t, err)
	assert.NotNil(t, subject)
}

func TestRegisterSubject_Validation(t *testing.T) {
	f := newTestAuditService(t)

	_, err := f.svc.RegisterSubject(context.Background(), service.RegisterSubjectInput{SubjectID: "tourist-1"})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestRegisterSubject_Duplicate(t *testing.T) {
	f := newTestAuditService(t)
	f.subjects.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(apperr.Conflict("subject", "subject %s already registered", "tourist-1")).
		Times(1)

	_, err := f.svc.RegisterSubject(context.Background(), service.RegisterSubjectInput{SubjectID: "tourist-1", NaturalKey: "k"})
	f.runner.Wait()

	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestVerifySubject_Verified(t *testing.T) {
	f := newTestAuditService(t)
	subject := storedSubject("tourist-1", "P1234567", "", "0xabc")
	f.subjects.EXPECT().GetByID(gomock.Any(), "tourist-1").Return(subject, nil).Times(1)
	f.ledger.EXPECT().
		Verify(gomock.Any(), subject.Audit.EventID, subject.Audit.PayloadHash).
		Return(true, nil).
		Times(1)

	v, err := f.svc.VerifySubject(context.Background(), "tourist-1")

	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.Equal(t, service.LedgerVerified, v.LedgerStatus)
	assert.Equal(t, subject.Audit.PayloadHash, v.RecomputedHash)
	assert.Equal(t, "0xabc", v.TxRef)
}

func TestVerifySubject_TamperedRecord(t *testing.T) {
	f := newTestAuditService(t)
	subject := storedSubject("tourist-1", "P1234567", "", "0xabc")
	subject.NaturalKeyHash = audit.NaturalKeyHash("X9999999", testSalt)
	f.subjects.EXPECT().GetByID(gomock.Any(), "tourist-1").Return(subject, nil).Times(1)

	v, err := f.svc.VerifySubject(context.Background(), "tourist-1")

	require.Error(t, err)
	var mismatch *apperr.IntegrityMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "record", mismatch.Source)
	assert.False(t, errors.Is(err, apperr.ErrDependency))
	require.NotNil(t, v)
	assert.False(t, v.Verified)
	assert.NotEqual(t, v.StoredHash, v.RecomputedHash)
}

func TestVerifySubject_LedgerDisagrees(t *testing.T) {
	f := newTestAuditService(t)
	subject := storedSubject("tourist-1", "P1234567", "", "0xabc")
	f.subjects.EXPECT().GetByID(gomock.Any(), "tourist-1").Return(subject, nil).Times(1)
	f.ledger.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(1)

	_, err := f.svc.VerifySubject(context.Background(), "tourist-1")

	var mismatch *apperr.IntegrityMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "ledger", mismatch.Source)
}

func TestVerifySubject_LedgerUnreachable(t *testing.T) {
	f := newTestAuditService(t)
	subject := storedSubject("tourist-1", "P1234567", "", "0xabc")
	f.subjects.EXPECT().GetByID(gomock.Any(), "tourist-1").Return(subject, nil).Times(1)
	f.ledger.EXPECT().
		Verify(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, errors.New("dial tcp: connection refused")).
		Times(1)

	v, err := f.svc.VerifySubject(context.Background(), "tourist-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrDependency))
	assert.False(t, errors.Is(err, apperr.ErrIntegrityMismatch))
	assert.False(t, v.Verified)
}

func TestVerifySubject_NotRecorded(t *testing.T) {
	f := newTestAuditService(t)
	subject := storedSubject("tourist-1", "P1234567", "", models.LedgerNotRecorded)
	f.subjects.EXPECT().GetByID(gomock.Any(), "tourist-1").Return(subject, nil).Times(1)

	v, err := f.svc.VerifySubject(context.Background(), "tourist-1")

	require.NoError(t, err)
	assert.False(t, v.Verified)
	assert.Equal(t, service.LedgerNotRecorded, v.LedgerStatus)
}

func TestVerifySubject_NotFound(t *testing.T) {
	f := newTestAuditService(t)
	f.subjects.EXPECT().
		GetByID(gomock.Any(), "ghost").
		Return(nil, apperr.NotFound("subject", "subject %s not found", "ghost")).
		Times(1)

	_, err := f.svc.VerifySubject(context.Background(), "ghost")

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func storedAlert(reason string) *models.EmergencyAlert {
	a := &models.EmergencyAlert{
		ID:        uuid.New(),
		SubjectID: "tourist-1",
		Latitude:  26.9124,
		Longitude: 75.7873,
		Reason:    reason,
		Status:    models.StatusResponding,
		CreatedAt: baseTime,
	}
	a.Ledger = models.LedgerAudit{
		EventID: audit.NewEventID(a.SubjectID),
		PayloadHash: audit.AlertFields{
			AlertID:   a.ID.String(),
			SubjectID: a.SubjectID,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
			Reason:    a.Reason,
			CreatedAt: a.CreatedAt,
		}.Hash(),
		TxRef:   "0xdef",
		OnChain: true,
	}
	return a
}

func TestVerifyAlert_Verified(t *testing.T) {
	f := newTestAuditService(t)
	alert := storedAlert("medical")
	f.alerts.EXPECT().GetByID(gomock.Any(), alert.ID).Return(alert, nil).Times(1)
	f.ledger.EXPECT().
		Verify(gomock.Any(), alert.Ledger.EventID, alert.Ledger.PayloadHash).
		Return(true, nil).
		Times(1)

	v, err := f.svc.VerifyAlert(context.Background(), alert.ID)

	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.Equal(t, alert.ID.String(), v.AlertID)
}

func TestVerifyAlert_TamperedReason(t *testing.T) {
	f := newTestAuditService(t)
	alert := storedAlert("medical")
	alert.Reason = "false alarm"
	f.alerts.EXPECT().GetByID(gomock.Any(), alert.ID).Return(alert, nil).Times(1)

	_, err := f.svc.VerifyAlert(context.Background(), alert.ID)

	var mismatch *apperr.IntegrityMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "record", mismatch.Source)
}
