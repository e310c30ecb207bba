package transformers

import (
	"context"

	"github.com/oarkflow/productetl/pkg/models"
	"github.com/oarkflow/productetl/pkg/utils"
)

// Stats counts values that were present in the input but could not be
// coerced and were replaced with nil.
type Stats struct {
	NulledNumerics int `json:"nulled_numerics"`
	NulledDates    int `json:"nulled_dates"`
}

func (s *Stats) Add(o Stats) {
	s.NulledNumerics += o.NulledNumerics
	s.NulledDates += o.NulledDates
}

// RecordTransformer normalizes one extracted row: prices and ratings rounded
// to one decimal, no_of_ratings as an integer and date as YYYY-MM-DD.
// Malformed numbers and dates are nulled and counted rather than failing.
type RecordTransformer struct {
	stats Stats
}

func NewRecordTransformer() *RecordTransformer {
	return &RecordTransformer{}
}

func (rt *RecordTransformer) Name() string {
	return "RecordTransformer"
}

func (rt *RecordTransformer) Stats() Stats {
	return rt.stats
}

func (rt *RecordTransformer) Transform(_ context.Context, rec utils.Record) (utils.Record, error) {
	out := utils.Clone(rec)
	for _, col := range []string{models.ColDiscountPrice, models.ColActualPrice} {
		if _, exists := rec[col]; !exists {
			continue
		}
		f, ok := CleanPrice(rec[col])
		out[col] = rt.rounded(f, ok)
	}
	if _, exists := rec[models.ColRatings]; exists {
		f, ok := CleanFloat(rec[models.ColRatings])
		out[models.ColRatings] = rt.rounded(f, ok)
	}
	if _, exists := rec[models.ColNoOfRatings]; exists {
		n, ok := CleanInt(rec[models.ColNoOfRatings])
		if !ok {
			rt.stats.NulledNumerics++
		}
		if n == nil {
			out[models.ColNoOfRatings] = nil
		} else {
			out[models.ColNoOfRatings] = *n
		}
	}
	if _, exists := rec[models.ColDate]; exists {
		d, ok := NormalizeDate(rec[models.ColDate])
		if !ok {
			rt.stats.NulledDates++
		}
		if d == nil {
			out[models.ColDate] = nil
		} else {
			out[models.ColDate] = *d
		}
	}
	return out, nil
}

func (rt *RecordTransformer) rounded(f *float64, ok bool) any {
	if !ok {
		rt.stats.NulledNumerics++
	}
	if f == nil {
		return nil
	}
	return Round1(*f)
}

// TransformAll runs the record transformer over the complete table.
func TransformAll(ctx context.Context, records []utils.Record) ([]utils.Record, Stats, error) {
	rt := NewRecordTransformer()
	out := make([]utils.Record, 0, len(records))
	for _, rec := range records {
		transformed, err := rt.Transform(ctx, rec)
		if err != nil {
			return nil, rt.Stats(), err
		}
		out = append(out, transformed)
	}
	return out, rt.Stats(), nil
}
