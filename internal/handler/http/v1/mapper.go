package v1

import (
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
)

// ModelToRiskCellResponse преобразует ячейку в DTO. Поля базиса не публикуются.
func ModelToRiskCellResponse(cell *models.RiskCell) *RiskCellResponse {
	return &RiskCellResponse{
		CellID:      cell.CellID,
		Latitude:    cell.Latitude,
		Longitude:   cell.Longitude,
		RiskScore:   cell.Score,
		RiskLevel:   string(cell.Level),
		ZoneName:    cell.ZoneName,
		LastUpdated: cell.UpdatedAt,
	}
}

func ModelsToRiskCellResponses(cells []*models.RiskCell) []*RiskCellResponse {
	responses := make([]*RiskCellResponse, len(cells))
	for i, cell := range cells {
		responses[i] = ModelToRiskCellResponse(cell)
	}
	return responses
}

func NearbyToResponses(nearby []service.NearbyCell) []NearbyCellResponse {
	responses := make([]NearbyCellResponse, len(nearby))
	for i, n := range nearby {
		responses[i] = NearbyCellResponse{
			RiskCellResponse: *ModelToRiskCellResponse(n.Cell),
			DistanceMeters:   n.DistanceMeters,
		}
	}
	return responses
}

func SummaryToResponse(s *service.RefreshSummary) *RefreshResponse {
	return &RefreshResponse{
		StartedAt:  s.StartedAt,
		Candidates: s.Candidates,
		Refreshed:  s.Refreshed,
		Failed:     s.Failed,
		DurationMS: s.Duration.Milliseconds(),
	}
}

func DTOToReportIncidentInput(dto ReportIncidentRequest) service.ReportIncidentInput {
	return service.ReportIncidentInput{
		Title:     dto.Title,
		Category:  dto.Category,
		Latitude:  dto.Latitude,
		Longitude: dto.Longitude,
		Severity:  dto.Severity,
		Source:    dto.Source,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.IncidentReport) *IncidentResponse {
	return &IncidentResponse{
		ID:         model.ID,
		Title:      model.Title,
		Category:   string(model.Category),
		Latitude:   model.Latitude,
		Longitude:  model.Longitude,
		Severity:   model.Severity,
		Source:     model.Source,
		ReportedAt: model.ReportedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.IncidentReport) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func LocationRiskToResponse(r *service.LocationRisk) *LocationCheckResponse {
	resp := &LocationCheckResponse{
		SubjectID:    r.Check.SubjectID,
		CellID:       r.Check.CellID,
		RiskLevel:    string(r.Check.RiskLevel),
		HighestLevel: string(r.Highest),
		IsDangerous:  r.Check.IsDangerous,
		Nearby:       NearbyToResponses(r.Nearby),
		CheckedAt:    r.Check.CheckedAt,
	}
	if r.Cell != nil {
		resp.Cell = ModelToRiskCellResponse(r.Cell)
	}
	return resp
}

func ModelToAlertResponse(a *models.EmergencyAlert) *AlertResponse {
	assigned := make([]AuthorityResponse, len(a.Assignments))
	for i, ref := range a.Assignments {
		assigned[i] = AuthorityResponse{
			AuthorityID: ref.AuthorityID,
			FullName:    ref.FullName,
			Role:        ref.Role,
			AssignedAt:  ref.AssignedAt,
		}
	}
	return &AlertResponse{
		ID:           a.ID,
		SubjectID:    a.SubjectID,
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
		LocationName: a.LocationName,
		SafetyScore:  a.SafetyScore,
		Reason:       a.Reason,
		Status:       string(a.Status),
		AssignedTo:   assigned,
		CreatedAt:    a.CreatedAt,
		ResponseAt:   a.ResponseAt,
		ResolvedAt:   a.ResolvedAt,
		ResponseTime: a.ResponseTime,
		EventID:      a.Ledger.EventID,
		PayloadHash:  a.Ledger.PayloadHash,
		TxRef:        a.Ledger.TxRef,
		OnChain:      a.Ledger.OnChain,
	}
}

func ModelsToAlertResponses(alerts []*models.EmergencyAlert) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = ModelToAlertResponse(a)
	}
	return responses
}

func ModelToSubjectResponse(s *models.Subject) *SubjectResponse {
	return &SubjectResponse{
		SubjectID:      s.SubjectID,
		NaturalKeyHash: s.NaturalKeyHash,
		PayloadHash:    s.Audit.PayloadHash,
		EventID:        s.Audit.EventID,
		TxRef:          s.Audit.TxRef,
		ContentHash:    s.Audit.ContentHash,
		RegisteredAt:   s.Audit.RegisteredAtISO,
		CreatedAt:      s.CreatedAt,
	}
}

func VerificationToResponse(v *service.Verification) *VerificationResponse {
	return &VerificationResponse{
		SubjectID:      v.SubjectID,
		AlertID:        v.AlertID,
		Verified:       v.Verified,
		RecomputedHash: v.RecomputedHash,
		StoredHash:     v.StoredHash,
		EventID:        v.EventID,
		TxRef:          v.TxRef,
		LedgerStatus:   v.LedgerStatus,
	}
}
