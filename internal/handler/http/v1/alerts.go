package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/tourist_safety/internal/service"
	"github.com/sirupsen/logrus"
)

func (h *Handler) alertID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return uuid.Nil, false
	}
	return id, true
}

// authorityFromClaims - сотрудник, выполняющий запрос
func authorityFromClaims(claims *Claims) service.AuthorityInput {
	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return service.AuthorityInput{
		AuthorityID: claims.Subject,
		FullName:    name,
		Role:        claims.Role,
	}
}

// @Summary Raise an emergency alert
// @Description Create an emergency alert for the calling tourist. Requires tourist token.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alert body CreateAlertRequest true "Alert"
// @Success 201 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [post]
func (h *Handler) createAlert(c *gin.Context) {
	var input CreateAlertRequest
	log := h.logger.WithField("method", "createAlert")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	claims := claimsFrom(c)
	alert, err := h.alerts.Create(c.Request.Context(), service.CreateAlertInput{
		SubjectID:    claims.Subject,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		LocationName: input.LocationName,
		SafetyScore:  input.SafetyScore,
		Reason:       input.Reason,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToAlertResponse(alert))
}

// @Summary List alerts
// @Description List alerts by status filter: open (default), active, or an exact status. Requires authority token.
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param status query string false "open, active, new, acknowledged, responding, resolved or closed"
// @Success 200 {array} AlertResponse
// @Failure 400 {object} map[string]string "Unknown status filter"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listAlerts")

	alerts, err := h.alerts.ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary Get alert by ID
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getAlert").WithField("id", id)

	alert, err := h.alerts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Acknowledge an alert
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Router /alerts/{id}/acknowledge [post]
func (h *Handler) acknowledgeAlert(c *gin.Context) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "acknowledgeAlert").WithField("id", id)

	alert, err := h.alerts.Acknowledge(c.Request.Context(), id, authorityFromClaims(claimsFrom(c)))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Assign an authority to an alert
// @Description Assign an authority. Empty body fields default to the caller's token.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param assignment body AssignAlertRequest false "Assignment"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Router /alerts/{id}/assign [post]
func (h *Handler) assignAlert(c *gin.Context) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "assignAlert").WithField("id", id)

	var input AssignAlertRequest
	if c.Request.ContentLength != 0 {
		if !h.bindAndValidate(c, log, &input) {
			return
		}
	}

	by := authorityFromClaims(claimsFrom(c))
	if input.AuthorityID != "" {
		by = service.AuthorityInput{AuthorityID: input.AuthorityID, FullName: input.FullName, Role: input.Role}
	}

	alert, err := h.alerts.Assign(c.Request.Context(), id, by, input.ResponseTime)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Resolve an alert
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Router /alerts/{id}/resolve [post]
func (h *Handler) resolveAlert(c *gin.Context) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "resolveAlert").WithField("id", id)

	alert, err := h.alerts.Resolve(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Close a resolved alert
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Router /alerts/{id}/close [post]
func (h *Handler) closeAlert(c *gin.Context) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "closeAlert").WithField("id", id)

	alert, err := h.alerts.Close(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Count alerts by status
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/counts [get]
func (h *Handler) alertCounts(c *gin.Context) {
	log := h.logger.WithField("method", "alertCounts")

	counts, err := h.alerts.Counts(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	resp := make(map[string]int, len(counts))
	for status, n := range counts {
		resp[string(status)] = n
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Active alert heatmap
// @Description Active alerts aggregated per grid cell with intensity normalized to the busiest cell.
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.HeatmapPoint
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/heatmap [get]
func (h *Handler) alertHeatmap(c *gin.Context) {
	log := h.logger.WithField("method", "alertHeatmap")

	points, err := h.alerts.Heatmap(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// @Summary Stream alert events
// @Description Server-sent events for the connected authority until the client disconnects.
// @Tags Alerts
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "event stream"
// @Failure 503 {object} map[string]string "Observer registry unavailable"
// @Router /alerts/stream [get]
func (h *Handler) streamAlerts(c *gin.Context) {
	claims := claimsFrom(c)
	log := h.logger.WithFields(logrus.Fields{"method": "streamAlerts", "authority_id": claims.Subject})
	ctx := c.Request.Context()

	events, unregister, err := h.observers.Register(ctx, claims.Subject)
	if err != nil {
		log.WithError(err).Error("Failed to register observer")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}
	defer unregister()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(event.Topic, event)
			c.Writer.Flush()
		}
	}
}
