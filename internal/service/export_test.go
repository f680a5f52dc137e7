package service

import "time"

func SetAlertClock(s AlertService, now func() time.Time) {
	s.(*alertService).now = now
}

func SetAuditClock(s AuditService, now func() time.Time) {
	s.(*auditService).now = now
}

func SetIncidentClock(s IncidentService, now func() time.Time) {
	s.(*incidentService).now = now
}

func (j *RefreshJob) SetClock(now func() time.Time) {
	j.now = now
}

// SetRunning имитирует идущий прогон
func (j *RefreshJob) SetRunning(v bool) {
	j.running.Store(v)
}

func (j *RefreshJob) Pending() bool {
	return j.pending.Load()
}
