package transformers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/oarkflow/date"
	"github.com/xuri/excelize/v2"

	"github.com/oarkflow/productetl/pkg/utils"
)

// DateLayout is the serialized form of every normalized date.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-2006",
}

// Excel stores dates as day counts; anything outside this range is not one.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// A number read as text is only taken for a serial when it is a whole day
// count from 1927-05-18 on. Shorter numbers are years or noise.
const minTextSerial = 10000

// NormalizeDate renders v as YYYY-MM-DD. Values that cannot be read as a
// calendar date become nil; ok is false when a present value was dropped.
func NormalizeDate(v any) (*string, bool) {
	if utils.IsMissing(v) {
		return nil, true
	}
	var (
		t     time.Time
		found bool
	)
	switch val := v.(type) {
	case time.Time:
		t, found = val, !val.IsZero()
	case *time.Time:
		if val != nil {
			t, found = *val, !val.IsZero()
		}
	case string:
		t, found = parseDate(val)
	case []byte:
		t, found = parseDate(string(val))
	case float64:
		t, found = fromExcelSerial(val)
	case int64:
		t, found = fromExcelSerial(float64(val))
	case int:
		t, found = fromExcelSerial(float64(val))
	}
	if !found {
		return nil, false
	}
	s := t.Format(DateLayout)
	return &s, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromNumericText(s, f)
	}
	t, err := date.Parse(s)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// fromNumericText reads a bare four-digit year as January 1 of that year
// and a whole number of at least minTextSerial as an Excel serial. Anything
// else is not a date.
func fromNumericText(s string, f float64) (time.Time, bool) {
	if len(s) == 4 && f == math.Trunc(f) && f >= 1000 {
		return time.Date(int(f), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	if f < minTextSerial || f != math.Trunc(f) {
		return time.Time{}, false
	}
	return fromExcelSerial(f)
}

func fromExcelSerial(f float64) (time.Time, bool) {
	if math.IsNaN(f) || f < minExcelSerial || f > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
