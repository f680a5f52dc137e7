package audit

import (
	"strings"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256Hex_EmptyString(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(""))
	assert.Equal(t, SHA256Hex(""), ContentHash(nil))
}

func TestKeccak256Hex_KnownVector(t *testing.T) {
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Keccak256Hex(""))
}

func TestNaturalKeyHash_Salted(t *testing.T) {
	a := NaturalKeyHash("P1234567", "salt-a")
	b := NaturalKeyHash("P1234567", "salt-b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, SHA256Hex("P1234567salt-a"), a)
}

func TestNewEventID_Unique(t *testing.T) {
	a := NewEventID("tourist-1")
	b := NewEventID("tourist-1")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("0xABCD", "abcd"))
	assert.False(t, Equal("", ""))
	assert.False(t, Equal("abcd", "abce"))
}

func TestRegistrationFields_Payload(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.FixedZone("IST", 5*3600+1800))
	f := RegistrationFields{
		SubjectID:       "tourist-1",
		NaturalKeyHash:  "nk",
		ContentHash:     ContentHash(nil),
		RegisteredAtISO: FormatISO(at),
	}

	assert.Equal(t, "2026-03-14T04:00:00.123Z", f.RegisteredAtISO)
	assert.Equal(t, "tourist-1|nk|"+SHA256Hex("")+"|2026-03-14T04:00:00.123Z", f.Payload())
	assert.Equal(t, SHA256Hex(f.Payload()), f.Hash())
}

func TestRegistrationFields_AnyFieldChangeChangesHash(t *testing.T) {
	base := RegistrationFields{SubjectID: "s", NaturalKeyHash: "n", ContentHash: "c", RegisteredAtISO: "t"}
	h := base.Hash()

	for _, mutate := range []func(*RegistrationFields){
		func(f *RegistrationFields) { f.SubjectID = "s2" },
		func(f *RegistrationFields) { f.NaturalKeyHash = "n2" },
		func(f *RegistrationFields) { f.ContentHash = "c2" },
		func(f *RegistrationFields) { f.RegisteredAtISO = "t2" },
	} {
		f := base
		mutate(&f)
		assert.NotEqual(t, h, f.Hash())
	}
}

func TestAlertFields_Payload(t *testing.T) {
	f := AlertFields{
		AlertID:   "a1",
		SubjectID: "tourist-1",
		Latitude:  12.9716,
		Longitude: 77.5946,
		Reason:    "SOS",
		CreatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "a1|tourist-1|77.5946,12.9716|SOS|2026-03-14T12:00:00.000Z", f.Payload())
	h := f.Hash()
	require.True(t, strings.HasPrefix(h, "0x"))
	assert.Len(t, h, 66)
}

func TestAlertFields_HashDeterministic(t *testing.T) {
	prop := func(id, subject, reason string, lat, lng float64, sec int32) bool {
		f := AlertFields{
			AlertID:   id,
			SubjectID: subject,
			Latitude:  lat,
			Longitude: lng,
			Reason:    reason,
			CreatedAt: time.Unix(int64(sec), 0),
		}
		g := f
		return f.Hash() == g.Hash()
	}
	require.NoError(t, quick.Check(prop, nil))
}
