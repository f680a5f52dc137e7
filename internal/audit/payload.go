package audit

import (
	"strconv"
	"strings"
	"time"
)

// RegistrationFields - поля хэша регистрации
type RegistrationFields struct {
	SubjectID       string
	NaturalKeyHash  string
	ContentHash     string
	RegisteredAtISO string
}

func (f RegistrationFields) Payload() string {
	return strings.Join([]string{f.SubjectID, f.NaturalKeyHash, f.ContentHash, f.RegisteredAtISO}, Separator)
}

func (f RegistrationFields) Hash() string {
	return SHA256Hex(f.Payload())
}

// AlertFields - поля хэша тревоги
type AlertFields struct {
	AlertID   string
	SubjectID string
	Latitude  float64
	Longitude float64
	Reason    string
	CreatedAt time.Time
}

// Payload собирает поля по порядку, координаты в порядке lng,lat
func (f AlertFields) Payload() string {
	coords := strconv.FormatFloat(f.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(f.Latitude, 'f', -1, 64)
	return strings.Join([]string{f.AlertID, f.SubjectID, coords, f.Reason, FormatISO(f.CreatedAt)}, Separator)
}

func (f AlertFields) Hash() string {
	return Keccak256Hex(f.Payload())
}

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
