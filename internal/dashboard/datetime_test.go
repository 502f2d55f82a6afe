package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToInputValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		loc  *time.Location
		want string
	}{
		{name: "utc zulu to quito", raw: "2024-03-01T14:30:00Z", loc: quito, want: "2024-03-01T09:30"},
		{name: "utc zulu in utc", raw: "2024-03-01T14:30:00Z", loc: time.UTC, want: "2024-03-01T14:30"},
		{name: "fractional seconds", raw: "2024-03-01T14:30:59.123Z", loc: time.UTC, want: "2024-03-01T14:30"},
		{name: "offset", raw: "2024-03-01T14:30:00+02:00", loc: time.UTC, want: "2024-03-01T12:30"},
		{name: "compact offset", raw: "2024-03-01T14:30:00+0200", loc: time.UTC, want: "2024-03-01T12:30"},
		{name: "naive seconds", raw: "2024-03-01T14:30:00", loc: quito, want: "2024-03-01T14:30"},
		{name: "naive minutes", raw: "2024-03-01T14:30", loc: quito, want: "2024-03-01T14:30"},
		{name: "space separated", raw: "2024-03-01 14:30:00", loc: quito, want: "2024-03-01T14:30"},
		{name: "empty", raw: "", loc: quito, want: ""},
		{name: "garbage", raw: "mañana", loc: quito, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInputValue(tt.raw, tt.loc))
		})
	}
}

func TestDisplayTime(t *testing.T) {
	assert.Equal(t, "2024-03-01 09:30", DisplayTime("2024-03-01T14:30:00Z", quito))
	assert.Equal(t, "pendiente", DisplayTime("pendiente", quito))
}
