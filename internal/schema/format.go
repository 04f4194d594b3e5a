package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const packedZeroDuration = "00000000"

// FormatDurationPacked renders whole seconds as the 8-digit HHMMSS00 form
// some tenant feeds require (frames fixed at 00).
func FormatDurationPacked(seconds int) string {
	if seconds <= 0 {
		return packedZeroDuration
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d%02d%02d00", h, m, s)
}

// FormatDurationColons renders whole seconds as HH:MM:SS.
func FormatDurationColons(seconds int) string {
	if seconds <= 0 {
		return "00:00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// RoundedMinutes converts whole seconds to minutes, rounding half up.
func RoundedMinutes(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Round(float64(seconds) / 60))
}

// ParsePackedDuration reverses FormatDurationPacked, returning 0 for
// malformed input.
func ParsePackedDuration(packed string) int {
	if len(packed) != 8 {
		return 0
	}
	h, err1 := strconv.Atoi(packed[0:2])
	m, err2 := strconv.Atoi(packed[2:4])
	s, err3 := strconv.Atoi(packed[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	return h*3600 + m*60 + s
}

type DateTimeStyle int

const (
	// DateTimeDefault is date-only, 2006-01-02.
	DateTimeDefault DateTimeStyle = iota
	// DateTimeFull is 2006-01-02 15:04:05.
	DateTimeFull
	// DateTimeCompact is the 14-digit 20060102150405.
	DateTimeCompact
	// DateCompact is the 8-digit 20060102.
	DateCompact
)

// Layouts accepted on input, in probe order. Spreadsheet sources are not
// consistent about which one they use.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2006.01.02",
	"20060102150405",
	"20060102",
	"2006",
}

// FormatDateTime re-renders a datetime-ish string in the requested style.
// Unparseable input is passed through unchanged so a dirty cell degrades to
// its raw text instead of an empty one.
func FormatDateTime(v string, style DateTimeStyle) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	var parsed time.Time
	ok := false
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			parsed = t
			ok = true
			break
		}
	}
	if !ok {
		return v
	}
	switch style {
	case DateTimeFull:
		return parsed.Format("2006-01-02 15:04:05")
	case DateTimeCompact:
		return parsed.Format("20060102150405")
	case DateCompact:
		return parsed.Format("20060102")
	default:
		return parsed.Format("2006-01-02")
	}
}

// DefaultEpisodeNameTemplate names episodes "<title>第NN集".
const DefaultEpisodeNameTemplate = "{title}第{ep}集"

// ExpandEpisodeName fills an episode naming template. {title} is the title
// name and {ep} the episode number zero-padded to two digits.
func ExpandEpisodeName(template, title string, episodeNum int) string {
	out := strings.ReplaceAll(template, "{title}", title)
	return strings.ReplaceAll(out, "{ep}", fmt.Sprintf("%02d", episodeNum))
}
