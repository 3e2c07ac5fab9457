package excel

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const secondsPerDay = 24 * 60 * 60

// Built-in number formats that display dates or times
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true, 45: true, 46: true, 47: true,
}

// numFmtLiterals matches the parts of a format code that never display a
// date: quoted text, escaped characters, padding, fill and bracketed
// sections such as colors or locales
var numFmtLiterals = regexp.MustCompile(`"[^"]*"|\\.|_.|\*.|\[[^\]]*\]`)

// isDateFormat reports whether a custom number format code shows a date or
// time. Only the first (positive) section is considered.
func isDateFormat(code string) bool {
	section, _, _ := strings.Cut(code, ";")
	section = numFmtLiterals.ReplaceAllString(section, "")
	return strings.ContainsAny(section, "dmyhsDMYHS")
}

// isDateStyle reports whether the cell style idx formats numbers as dates.
// Results are cached per style.
func (b *Workbook) isDateStyle(idx int) bool {
	if known, ok := b.dateStyles[idx]; ok {
		return known
	}

	isDate := false
	if style, err := b.file.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormat(*style.CustomNumFmt)
		} else {
			isDate = builtInDateFormats[style.NumFmt]
		}
	}
	b.dateStyles[idx] = isDate
	return isDate
}

// dateText renders a date serial: fractions of a day below 1 as a bare
// HH:MM:SS time, everything else as YYYY-MM-DD HH:MM:SS
func (b *Workbook) dateText(raw string) (string, bool) {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial < 0 {
		return "", false
	}
	if serial < 1 {
		seconds := int(math.Round(serial * secondsPerDay))
		if seconds < secondsPerDay {
			return time.Time{}.Add(time.Duration(seconds) * time.Second).Format("15:04:05"), true
		}
	}
	t, err := excelize.ExcelDateToTime(serial, b.date1904)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02 15:04:05"), true
}
