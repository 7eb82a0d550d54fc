// Package format turns numbers, dates and strings into their display form
// (Indian rupee prices, en-IN digit grouping, stock labels).
package format

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Price formats an amount in rupees with en-IN grouping and at most two decimals.
func Price(amount float64) string {
	s := decimal(amount, 2)
	if strings.HasPrefix(s, "-") {
		return "-₹" + s[1:]
	}
	return "₹" + s
}

// Number formats n with en-IN grouping (lakhs, crores) and at most three decimals.
func Number(n float64) string {
	return decimal(n, 3)
}

// Date renders a timestamp as "15 Oct 2026, 02:30 PM".
func Date(t time.Time) string {
	return t.Format("2 Jan 2006, 03:04 PM")
}

// DateOnly renders a timestamp as "15 Oct 2026".
func DateOnly(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// TitleCase capitalises the first letter of every space-separated word.
func TitleCase(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Truncate shortens text to max runes and appends "..." when it was cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// Phone formats a 10-digit Indian number as "+91 XXXXX XXXXX"; anything else is returned as is.
func Phone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if len(cleaned) == 10 {
		return "+91 " + cleaned[:5] + " " + cleaned[5:]
	}
	return phone
}

// Percentage returns value/total as a rounded whole percentage, 0 when total is 0.
func Percentage(value, total float64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(value / total * 100))
}

type StockLevel string

const (
	StockOut    StockLevel = "out"
	StockLow    StockLevel = "low"
	StockMedium StockLevel = "medium"
	StockHigh   StockLevel = "high"
)

type StockStatusInfo struct {
	Status StockLevel `json:"status"`
	Text   string     `json:"text"`
}

// StockStatus labels a stock count for display. The "low" cut-off matches the
// dashboard's fixed low-stock signal (stock < 6).
func StockStatus(stock int) StockStatusInfo {
	switch {
	case stock == 0:
		return StockStatusInfo{StockOut, "Out of Stock"}
	case stock < 6:
		return StockStatusInfo{StockLow, "Low Stock"}
	case stock < 20:
		return StockStatusInfo{StockMedium, "Medium Stock"}
	default:
		return StockStatusInfo{StockHigh, "Good Stock"}
	}
}

// Initials returns up to two upper-case initials for an avatar.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Split(name, " ") {
		if r, size := utf8.DecodeRuneInString(word); size > 0 {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	runes := []rune(b.String())
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}

var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FileSize renders a byte count as "0 Bytes", "1.5 KB", "2 MB".
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(fileSizeUnits) {
		i = len(fileSizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + fileSizeUnits[i]
}

// decimal prints v with up to maxFrac fraction digits and en-IN grouping:
// the last three integer digits, then pairs.
func decimal(v float64, maxFrac int) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', maxFrac, 64)

	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	out := groupIndian(intPart)
	if frac != "" {
		out += "." + frac
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
