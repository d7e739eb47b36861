package notice

import (
	"strconv"
	"strings"
	"time"
)

const (
	storageLayout = "2006.01.02"
	isoLayout     = "2006-01-02"
)

// ParseDate parses the site's "YYYY.MM.DD" date form.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return time.Time{}, &ParseError{Kind: KindDate, Input: s, Msg: "want YYYY.MM.DD"}
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, &ParseError{Kind: KindDate, Input: s, Msg: "non-numeric component", Err: err}
		}
		nums[i] = n
	}
	year, month, day := nums[0], nums[1], nums[2]

	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, &ParseError{Kind: KindDate, Input: s, Msg: "date out of range"}
	}
	// time.Date normalizes Feb 30 into March, so check it came back unchanged.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, &ParseError{Kind: KindDate, Input: s, Msg: "no such day"}
	}
	return t, nil
}

// FormatDate renders t in the snapshot form "YYYY.MM.DD".
func FormatDate(t time.Time) string {
	return t.Format(storageLayout)
}

// FormatISODate renders t as "YYYY-MM-DD" for display.
func FormatISODate(t time.Time) string {
	return t.Format(isoLayout)
}
