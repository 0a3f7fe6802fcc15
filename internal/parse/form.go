package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clockRe = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)
	tagSep  = regexp.MustCompile(`[|,;]`)
)

// DateLayout is the layout of form dates.
const DateLayout = "2006-01-02"

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ParseClock parses an "HH:MM" time of day in the range 00:00-23:59.
// A single-digit hour is accepted ("9:30").
func ParseClock(raw string) (Clock, error) {
	m := clockRe.FindStringSubmatch(raw)
	if m == nil {
		return Clock{}, fmt.Errorf("invalid time %q: want HH:MM", raw)
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if h > 23 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid time %q: out of range", raw)
	}
	return Clock{Hour: h, Minute: minute}, nil
}

// FormatHour returns the top of the given hour as "HH:00", wrapping modulo 24.
func FormatHour(hour int) string {
	hour %= 24
	if hour < 0 {
		hour += 24
	}
	return Clock{Hour: hour}.String()
}

// ParseDate parses a YYYY-MM-DD calendar date in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
	}
	return d, nil
}

// ParseTags splits a tag list on "|", "," or ";", trims whitespace and drops
// empty and repeated entries. Order of first appearance is kept.
func ParseTags(raw string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, part := range tagSep.Split(raw, -1) {
		tag := strings.Join(strings.Fields(part), " ")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags is the inverse of ParseTags.
func JoinTags(tags []string) string {
	return strings.Join(tags, "|")
}
