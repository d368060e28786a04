package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	ms := ToUnixMs(now)
	assert.Equal(t, now, FromUnixMs(ms))
}

func TestZeroSemantics(t *testing.T) {
	assert.Equal(t, int64(0), ToUnixMs(time.Time{}))
	assert.True(t, FromUnixMs(0).IsZero())
	assert.Equal(t, "", Format(0))
}

func TestParse(t *testing.T) {
	ref := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"rfc3339", "2025-01-02T03:04:05Z", ref.UnixMilli()},
		{"seconds epoch int", int(ref.Unix()), ref.UnixMilli()},
		{"millis epoch int64", ref.UnixMilli(), ref.UnixMilli()},
		{"float seconds", float64(ref.Unix()), ref.UnixMilli()},
		{"numeric string", "1735787045", int64(1735787045000)},
		{"time.Time", ref, ref.UnixMilli()},
		{"garbage string", "not-a-time", 0},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"negative", int64(-5), 0},
		{"unsupported type", struct{}{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}
