package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EstimateLabel is the size bucket chosen for a task. "" means absent and is
// only used for OriginalEstimate.
type EstimateLabel string

const (
	EstimateNone   EstimateLabel = "-"
	EstimateCustom EstimateLabel = "Custom"
	EstimateMulti  EstimateLabel = "Multi"
)

// PlaceholderToken is the day-entry value meaning "this row's time value".
const PlaceholderToken = "x"

// fixedEstimates maps every fixed label to its minute value.
var fixedEstimates = []struct {
	label   EstimateLabel
	minutes int
}{
	{"5 Minutes", 5},
	{"10 Minutes", 10},
	{"15 Minutes", 15},
	{"20 Minutes", 20},
	{"30 Minutes", 30},
	{"45 Minutes", 45},
	{"1 Hour", 60},
	{"1.5 Hours", 90},
	{"2 Hours", 120},
	{"3 Hours", 180},
	{"4 Hours", 240},
	{"6 Hours", 360},
	{"8 Hours", 480},
}

// AllEstimates lists every selectable estimate label in display order.
func AllEstimates() []EstimateLabel {
	out := []EstimateLabel{EstimateNone}
	for _, e := range fixedEstimates {
		out = append(out, e.label)
	}
	return append(out, EstimateCustom, EstimateMulti)
}

// IsAggregate reports whether the label's time value is summed from day entries.
func (e EstimateLabel) IsAggregate() bool {
	return e == EstimateMulti || e == EstimateCustom
}

// Minutes returns the minute value of a fixed label. "-", Custom, Multi and
// unknown labels are worth zero.
func (e EstimateLabel) Minutes() int {
	for _, f := range fixedEstimates {
		if f.label == e {
			return f.minutes
		}
	}
	return 0
}

// ParseEstimate matches s case-insensitively against the known labels.
func ParseEstimate(s string) (EstimateLabel, bool) {
	s = strings.TrimSpace(s)
	for _, e := range AllEstimates() {
		if strings.EqualFold(string(e), s) {
			return e, true
		}
	}
	return "", false
}

// FormatHHMM renders minutes as hours and zero-padded minutes separated by a
// dot, e.g. 30 -> "0.30", 210 -> "3.30". Negative input renders as "0.00".
func FormatHHMM(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d.%02d", minutes/60, minutes%60)
}

// ParseEntryMinutes parses a day entry or time value into minutes.
//
// Accepted forms:
//   - "H:MM" (hours and minutes)
//   - "H.MM" with exactly two fractional digits below 60 (the FormatHHMM form)
//   - bare decimal hours ("2", "1.5", "2.75")
//
// The placeholder token, malformed input and anything longer than a day
// report ok=false.
func ParseEntryMinutes(s string) (minutes int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == PlaceholderToken {
		return 0, false
	}
	if h, m, found := strings.Cut(s, ":"); found {
		hours, err := strconv.Atoi(h)
		if err != nil || hours < 0 || hours > maxEntryMinutes/60 {
			return 0, false
		}
		mins, err := strconv.Atoi(m)
		if err != nil || mins < 0 || mins >= 60 || len(m) != 2 {
			return 0, false
		}
		return boundEntry(hours*60 + mins)
	}
	if h, m, found := strings.Cut(s, "."); found && len(m) == 2 && h != "" {
		hours, herr := strconv.Atoi(h)
		mins, merr := strconv.Atoi(m)
		if herr == nil && merr == nil && hours >= 0 && hours <= maxEntryMinutes/60 && mins >= 0 && mins < 60 {
			return boundEntry(hours*60 + mins)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) || f*60 > maxEntryMinutes {
		return 0, false
	}
	return boundEntry(int(math.Round(f * 60)))
}

// maxEntryMinutes caps a single day entry at one full day.
const maxEntryMinutes = 24 * 60

func boundEntry(minutes int) (int, bool) {
	if minutes > maxEntryMinutes {
		return 0, false
	}
	return minutes, true
}

// IsValidEntry reports whether a day entry counts as a scheduled value:
// a parseable duration or the placeholder token.
func IsValidEntry(s string) bool {
	if strings.TrimSpace(s) == PlaceholderToken {
		return true
	}
	_, ok := ParseEntryMinutes(s)
	return ok
}
