package dashboard

import (
	"strings"
	"time"

	"infinite-experiment/skyboard/internal/logging"
)

// DateTimeInputLayout is the value format of an HTML datetime-local input
const DateTimeInputLayout = "2006-01-02T15:04"

// zoned layouts carry an offset and are converted into the display location
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	time.RFC1123,
	time.RFC1123Z,
}

// naive layouts carry no zone and are taken as already local
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	DateTimeInputLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseServerTime reads a departure timestamp as sent by the API
func ParseServerTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToInputValue converts a server timestamp to local minute precision for the form.
// Unreadable input yields an empty value.
func ToInputValue(raw string, loc *time.Location) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	t, ok := ParseServerTime(raw, loc)
	if !ok {
		logging.Warn("Unreadable departure timestamp", "value", raw)
		return ""
	}
	return t.Format(DateTimeInputLayout)
}

// DisplayTime formats a server timestamp for table cells, passing unreadable text through
func DisplayTime(raw string, loc *time.Location) string {
	t, ok := ParseServerTime(raw, loc)
	if !ok {
		return raw
	}
	return t.Format("2006-01-02 15:04")
}
