package transformers

import "strings"

// NormalizeHeader trims, lower-cases and replaces spaces with underscores so
// spreadsheet headers line up with the relational column names.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}
