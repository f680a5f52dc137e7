package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// Separator - разделитель полей полезной нагрузки
const Separator = "|"

// ISOLayout - время UTC с миллисекундами
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Keccak256Hex возвращает keccak256 с префиксом 0x, как считает контракт реестра
func Keccak256Hex(s string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// NaturalKeyHash хэширует номер документа с серверной солью
func NaturalKeyHash(naturalKey, salt string) string {
	return SHA256Hex(naturalKey + salt)
}

// ContentHash хэширует маршрут. Отсутствующий маршрут - хэш пустой строки.
func ContentHash(blob []byte) string {
	return SHA256Hex(string(blob))
}

// NewEventID генерирует непредсказуемый ключ события в реестре
func NewEventID(subjectID string) string {
	return SHA256Hex(uuid.NewString() + Separator + subjectID)
}

// NormalizeHash приводит хэш к нижнему регистру без префикса 0x
func NormalizeHash(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimPrefix(h, "0x")
}

func Equal(a, b string) bool {
	return a != "" && NormalizeHash(a) == NormalizeHash(b)
}
