package v1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/config"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/notify"
	"github.com/shenikar/tourist_safety/internal/service"
	"github.com/sirupsen/logrus"
)

// ObserverRegistry подключает сотрудников к потоку событий
type ObserverRegistry interface {
	Register(ctx context.Context, authorityID string) (<-chan notify.Event, func(), error)
}

// Services - сервисы, которые обслуживает API
type Services struct {
	Risk      service.RiskService
	Refresher service.RiskRefresher
	Incidents service.IncidentService
	Alerts    service.AlertService
	Audit     service.AuditService
	Observers ObserverRegistry
}

type Handler struct {
	risk      service.RiskService
	refresher service.RiskRefresher
	incidents service.IncidentService
	alerts    service.AlertService
	audit     service.AuditService
	observers ObserverRegistry
	logger    *logrus.Logger
	validate  *validator.Validate
	cfg       *config.Config
}

func NewHandler(services Services, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		risk:      services.Risk,
		refresher: services.Refresher,
		incidents: services.Incidents,
		alerts:    services.Alerts,
		audit:     services.Audit,
		observers: services.Observers,
		logger:    logger,
		validate:  validator.New(),
		cfg:       cfg,
	}
}

// respondError переводит вид ошибки сервиса в HTTP-статус
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch apperr.Kind(err) {
	case apperr.ErrValidation:
		log.WithError(err).Warn("Request rejected by service validation")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.ErrNotFound:
		log.WithError(err).Warn("Resource not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.ErrConflict, apperr.ErrStateTransition:
		log.WithError(err).Warn("Request conflicts with current state")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperr.ErrIntegrityMismatch:
		log.WithError(err).Warn("Integrity check failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case apperr.ErrDependency:
		log.WithError(err).Error("Dependency unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dependency unavailable"})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindAndValidate разбирает JSON и проверяет теги validate
func (h *Handler) bindAndValidate(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func parseFloatQuery(c *gin.Context, name string) (float64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// @Summary List risk cells
// @Description Get every stored risk cell. Requires API key.
// @Tags Risk
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} RiskCellResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /risk/cells [get]
func (h *Handler) listCells(c *gin.Context) {
	log := h.logger.WithField("method", "listCells")

	cells, err := h.risk.ListCells(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToRiskCellResponses(cells))
}

// @Summary Get risk cell by ID
// @Description Get a single risk cell by its grid id. Requires API key.
// @Tags Risk
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Cell ID"
// @Success 200 {object} RiskCellResponse
// @Failure 400 {object} map[string]string "Invalid cell ID"
// @Failure 404 {object} map[string]string "Cell not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /risk/cells/{id} [get]
func (h *Handler) getCell(c *gin.Context) {
	cellID := c.Param("id")
	log := h.logger.WithField("method", "getCell").WithField("cell_id", cellID)

	cell, err := h.risk.GetCell(c.Request.Context(), cellID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToRiskCellResponse(cell))
}

// @Summary Find risk cells near a point
// @Description Get risk cells whose centers lie within radius meters of the point, nearest first. Requires API key.
// @Tags Risk
// @Produce json
// @Security ApiKeyAuth
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in meters" default(1000)
// @Success 200 {array} NearbyCellResponse
// @Failure 400 {object} map[string]string "Invalid coordinates or radius"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /risk/cells/nearby [get]
func (h *Handler) nearbyCells(c *gin.Context) {
	log := h.logger.WithField("method", "nearbyCells")

	lat, okLat := parseFloatQuery(c, "lat")
	lng, okLng := parseFloatQuery(c, "lng")
	if !okLat || !okLng {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}
	radius := 1000.0
	if _, present := c.GetQuery("radius"); present {
		var ok bool
		if radius, ok = parseFloatQuery(c, "radius"); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius"})
			return
		}
	}

	nearby, err := h.risk.CellsNear(c.Request.Context(), lat, lng, radius)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, NearbyToResponses(nearby))
}

// @Summary Count risky cells
// @Description Get the number of risk cells at or above min_level (Low, Medium, High, Very High). Requires API key.
// @Tags Risk
// @Produce json
// @Security ApiKeyAuth
// @Param min_level query string false "Minimum risk level" default(High)
// @Success 200 {object} CellCountResponse
// @Failure 400 {object} map[string]string "Unknown risk level"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /risk/cells/count [get]
func (h *Handler) countCells(c *gin.Context) {
	level := models.ParseRiskLevel(c.DefaultQuery("min_level", string(models.RiskHigh)))
	log := h.logger.WithField("method", "countCells").WithField("min_level", level)

	count, err := h.risk.CountCells(c.Request.Context(), level)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, CellCountResponse{MinLevel: string(level), Count: count})
}

// @Summary Recompute risk cells
// @Description Run a risk refresh synchronously. Returns 409 if a run is already in progress. Requires API key.
// @Tags Risk
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} RefreshResponse
// @Failure 409 {object} map[string]string "Refresh already in progress"
// @Failure 503 {object} map[string]string "Dependency unavailable"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /risk/recompute [post]
func (h *Handler) recompute(c *gin.Context) {
	log := h.logger.WithField("method", "recompute")

	summary, err := h.refresher.RunNow(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	log.WithFields(logrus.Fields{
		"refreshed": summary.Refreshed,
		"failed":    summary.Failed,
	}).Info("Manual risk refresh completed")
	c.JSON(http.StatusOK, SummaryToResponse(summary))
}

// @Summary Report an incident
// @Description Report a safety incident. Triggers a risk refresh. Requires bearer token.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param incident body ReportIncidentRequest true "Incident report"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [post]
func (h *Handler) reportIncident(c *gin.Context) {
	var input ReportIncidentRequest
	log := h.logger.WithField("method", "reportIncident")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	report, err := h.incidents.ReportIncident(c.Request.Context(), DTOToReportIncidentInput(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(report))
}

// @Summary Get a list of incidents
// @Description Get a paginated list of reported incidents, newest first. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	incidents, err := h.incidents.ListIncidents(c.Request.Context(), page, pageSize)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Check location risk
// @Description Check the caller's location against nearby risk cells. Requires bearer token.
// @Tags Location
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param location body LocationCheckRequest true "Location check request"
// @Success 200 {object} LocationCheckResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /location/check [post]
func (h *Handler) checkLocation(c *gin.Context) {
	var input LocationCheckRequest
	log := h.logger.WithField("method", "checkLocation")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	claims := claimsFrom(c)
	result, err := h.risk.CheckLocation(c.Request.Context(), claims.Subject, *input.Latitude, *input.Longitude)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, LocationRiskToResponse(result))
}

// @Summary Get user statistics
// @Description Get the number of distinct tourists that checked their location within the stats window. Requires API key.
// @Tags Location
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /location/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	userCount, err := h.risk.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{UserCount: userCount})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
