package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/oarkflow/convert"
)

type Record = map[string]any

func Clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// IsMissing reports whether v is one of the missing-value sentinels a
// spreadsheet or a driver can hand back for an empty cell.
func IsMissing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "", "nan", "null", "none", "n/a", "na", "<nil>":
			return true
		}
	case []byte:
		return val == nil || IsMissing(string(val))
	}
	return false
}

// ToString renders v for columns that are text in every sink. Strings are
// returned as read; surrounding whitespace is part of the value.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	}
	if s, _ := convert.ToString(v); s != "" {
		return s
	}
	return fmt.Sprintf("%v", v)
}
