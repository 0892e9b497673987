package validate

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	reID   = regexp.MustCompile(`^[1-9][0-9]{0,17}$`)
	reInt  = regexp.MustCompile(`^-?[0-9]+$`)
	reDate = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

const (
	MaxNameLen  = 200
	MaxNotesLen = 2000
)

// ID parses a positive numeric resource id.
func ID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// Name trims and checks a display name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > MaxNameLen {
		return "", false
	}
	return s, true
}

// Notes trims free text; empty notes are valid and come back as "".
func Notes(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= MaxNotesLen
}

func Price(f float64) bool { return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f) }

func Quantity(n int64) bool { return n >= 0 }

// ParsePrice reads a CSV price cell.
func ParsePrice(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !Price(f) {
		return 0, false
	}
	return f, true
}

// ParseQuantity reads a CSV quantity cell: a non-negative integer.
func ParseQuantity(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reInt.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || !Quantity(n) {
		return 0, false
	}
	return n, true
}

// ImageURL accepts absolute http(s) URLs only.
func ImageURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 2048 {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return s, true
}

// Date checks a YYYY-MM-DD calendar date.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !reDate.MatchString(s) {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

// ImageType maps an allowed upload content type to its file extension.
func ImageType(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/webp":
		return ".webp", true
	}
	return "", false
}

// Page parses pagination params: page >= 1 (default 1), limit 1..100 (default 20).
func Page(pageStr, limitStr string) (page, limit int, ok bool) {
	page, limit = 1, 20
	if s := strings.TrimSpace(pageStr); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		page = n
	}
	if s := strings.TrimSpace(limitStr); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			return 0, 0, false
		}
		limit = n
	}
	return page, limit, true
}
