package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/service"
	"github.com/sirupsen/logrus"
)

// @Summary Register a tourist
// @Description Register a subject and submit its hash to the audit ledger. Requires API key.
// @Tags Audit
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param subject body RegisterSubjectRequest true "Registration"
// @Success 201 {object} SubjectResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 409 {object} map[string]string "Subject already registered"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /audit/subjects [post]
func (h *Handler) registerSubject(c *gin.Context) {
	var input RegisterSubjectRequest
	log := h.logger.WithField("method", "registerSubject")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	subject, err := h.audit.RegisterSubject(c.Request.Context(), service.RegisterSubjectInput{
		SubjectID:  input.SubjectID,
		NaturalKey: input.NaturalKey,
		Content:    input.Content,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToSubjectResponse(subject))
}

// @Summary Verify a registration
// @Description Recompute the registration hash and check it against the stored record and the ledger. Requires API key.
// @Tags Audit
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Subject ID"
// @Success 200 {object} VerificationResponse
// @Failure 404 {object} map[string]string "Subject not found"
// @Failure 422 {object} VerificationResponse "Integrity mismatch"
// @Failure 503 {object} VerificationResponse "Ledger unavailable"
// @Router /audit/subjects/{id}/verify [get]
func (h *Handler) verifySubject(c *gin.Context) {
	subjectID := c.Param("id")
	log := h.logger.WithFields(logrus.Fields{"method": "verifySubject", "subject_id": subjectID})

	v, err := h.audit.VerifySubject(c.Request.Context(), subjectID)
	h.respondVerification(c, log, v, err)
}

// @Summary Verify an alert
// @Description Recompute the alert hash from stored fields and check it against the record and the ledger. Requires API key.
// @Tags Audit
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} VerificationResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 422 {object} VerificationResponse "Integrity mismatch"
// @Failure 503 {object} VerificationResponse "Ledger unavailable"
// @Router /audit/alerts/{id}/verify [get]
func (h *Handler) verifyAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithFields(logrus.Fields{"method": "verifyAlert", "alert_id": id})

	v, err := h.audit.VerifyAlert(c.Request.Context(), id)
	h.respondVerification(c, log, v, err)
}

// respondVerification отдает результат проверки и при расхождении или
// недоступном реестре, чтобы были видны оба хэша
func (h *Handler) respondVerification(c *gin.Context, log *logrus.Entry, v *service.Verification, err error) {
	if err == nil {
		c.JSON(http.StatusOK, VerificationToResponse(v))
		return
	}
	if v == nil {
		h.respondError(c, log, err)
		return
	}

	resp := VerificationToResponse(v)
	resp.Error = err.Error()
	switch {
	case errors.Is(err, apperr.ErrIntegrityMismatch):
		log.WithError(err).Warn("Integrity check failed")
		c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, apperr.ErrDependency):
		log.WithError(err).Error("Ledger unavailable during verification")
		c.JSON(http.StatusServiceUnavailable, resp)
	default:
		h.respondError(c, log, err)
	}
}
