package models

import "time"

// AuditRecord - запись аудита регистрации. После создания меняется только TxRef.
type AuditRecord struct {
	PayloadHash     string `json:"payload_hash"`
	EventID         string `json:"event_id"`
	TxRef           string `json:"tx_ref,omitempty"`
	ContentHash     string `json:"content_hash"`
	RegisteredAtISO string `json:"registered_at"`
}

// Subject - минимальная регистрация туриста
type Subject struct {
	SubjectID      string      `json:"subject_id"`
	NaturalKeyHash string      `json:"natural_key_hash"`
	Audit          AuditRecord `json:"audit"`
	CreatedAt      time.Time   `json:"created_at"`
}
