package format

import (
	"strconv"
	"strings"
	"time"
)

// Price formats a whole amount of reais.
// Example: Price(1500000) => "R$ 1.500.000"
func Price(reais int) string {
	if reais < 0 {
		return "-R$ " + thousandSep(int64(-reais), ".")
	}
	return "R$ " + thousandSep(int64(reais), ".")
}

// Area formats square meters with a comma decimal separator, dropping a zero
// fraction: Area(68.5) => "68,5 m²".
func Area(m2 float64) string {
	s := strconv.FormatFloat(m2, 'f', -1, 64)
	return strings.Replace(s, ".", ",", 1) + " m²"
}

func thousandSep(n int64, sep string) string {
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 { b.WriteString(sep) }
		b.WriteRune(c)
	}
	return b.String()
}

// Date formats t in a locale-friendly short form.
func Date(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "en":
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("02/01/2006")
	}
}
