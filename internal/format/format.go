// Package format renders backend values for tables and status lines.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mattn/go-runewidth"
)

const (
	timeLayout = "01/02/2006, 03:04:05 PM"
	dateLayout = "2006-01-02 15:04"

	lovelacePerADA = 1_000_000
)

// InvalidDate is shown by FormatDate for unparseable timestamps.
const InvalidDate = "Invalid Date"

// FormatID shortens id to its first begin and last characters joined by "...".
func FormatID(id string, begin, last int) string {
	if id == "" {
		return ""
	}
	r := []rune(id)
	if len(r) <= begin+last {
		return id
	}
	return string(r[:begin]) + "..." + string(r[len(r)-last:])
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTime renders an ISO timestamp in local time. Invalid input is
// returned unchanged.
func FormatTime(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.Local().Format(timeLayout)
}

// FormatDate renders a compact local timestamp for table columns.
func FormatDate(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return InvalidDate
	}
	return t.Local().Format(dateLayout)
}

// TimeSince describes an elapsed number of seconds.
func TimeSince(seconds float64) string {
	switch {
	case seconds < 2:
		return "now"
	case seconds < 60:
		return fmt.Sprintf("%ds ago", int(math.Floor(seconds)))
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", int(math.Floor(seconds/60)))
	default:
		return fmt.Sprintf("%dh ago", int(math.Floor(seconds/3600)))
	}
}

// Truncate shortens s to n display columns, ending in "...".
func Truncate(s string, n int) string {
	if runewidth.StringWidth(s) <= n {
		return s
	}
	return runewidth.Truncate(s, n, "...")
}

// PadRight pads s with spaces to w display columns.
func PadRight(s string, w int) string {
	return runewidth.FillRight(s, w)
}

// ADA renders a lovelace amount as ADA with six decimals and thousands separators.
func ADA(lovelace uint64) string {
	whole := lovelace / lovelacePerADA
	frac := lovelace % lovelacePerADA
	return fmt.Sprintf("%s.%06d", humanize.Comma(int64(whole)), frac)
}

// Duration renders d with at most three fractional digits.
func Duration(d time.Duration) string {
	return common.PrettyDuration(d).String()
}

// Age renders the time elapsed since t, e.g. "2d3h".
func Age(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return common.PrettyAge(t).String()
}

// AgeOf is Age for an ISO timestamp string.
func AgeOf(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return "-"
	}
	return Age(t)
}
