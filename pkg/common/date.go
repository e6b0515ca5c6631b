package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// gitDateLayouts are the accepted explicit-date formats, tried in order:
// RFC 2822 (with and without the weekday) and the ISO-like form git calls
// "internal" ("2006-01-02 15:04:05 -0700").
var gitDateLayouts = []string{
	time.RFC1123Z,
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05-07:00",
}

// ParseGitDate parses the date formats accepted through GIT_AUTHOR_DATE
// and GIT_COMMITTER_DATE: RFC 2822, "YYYY-MM-DD HH:MM:SS ±ZZZZ", or the
// raw "<unix-seconds> ±ZZZZ" form.
func ParseGitDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, ok := parseRawStamp(raw); ok {
		return t, nil
	}

	for _, layout := range gitDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseRawStamp handles "<unix-seconds> ±HHMM", optionally prefixed with
// "@" as git emits it.
func parseRawStamp(raw string) (time.Time, bool) {
	raw = strings.TrimPrefix(raw, "@")
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return time.Time{}, false
	}

	seconds, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	tz := fields[1]
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return time.Time{}, false
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return time.Time{}, false
	}
	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return time.Time{}, false
	}

	offset := (hours*60 + minutes) * 60
	if tz[0] == '-' {
		offset = -offset
	}

	return time.Unix(seconds, 0).In(time.FixedZone(tz, offset)), true
}
