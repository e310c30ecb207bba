package transformers

import (
	"github.com/oarkflow/productetl/pkg/models"
	"github.com/oarkflow/productetl/pkg/utils"
)

// CleanRecord turns a header-normalized spreadsheet record into a Row.
// Prices go through CleanPrice, ratings and no_of_ratings have their
// missing sentinels replaced with nil, and the date is normalized. Columns
// outside the known set are kept in Row.Extra.
func CleanRecord(rec utils.Record) (models.Row, Stats) {
	var stats Stats
	numeric := func(ok bool) {
		if !ok {
			stats.NulledNumerics++
		}
	}
	row := models.Row{
		Name:         utils.ToString(rec[models.ColName]),
		MainCategory: utils.ToString(rec[models.ColMainCategory]),
		SubCategory:  utils.ToString(rec[models.ColSubCategory]),
		Image:        utils.ToString(rec[models.ColImage]),
		Link:         utils.ToString(rec[models.ColLink]),
	}
	for k, v := range rec {
		if models.IsKnownColumn(k) {
			continue
		}
		if row.Extra == nil {
			row.Extra = make(map[string]any)
		}
		if utils.IsMissing(v) {
			v = nil
		}
		row.Extra[k] = v
	}
	var ok bool
	row.DiscountPrice, ok = CleanPrice(rec[models.ColDiscountPrice])
	numeric(ok)
	row.ActualPrice, ok = CleanPrice(rec[models.ColActualPrice])
	numeric(ok)
	row.Ratings, ok = CleanFloat(rec[models.ColRatings])
	numeric(ok)
	row.NoOfRatings, ok = CleanInt(rec[models.ColNoOfRatings])
	numeric(ok)
	row.Date, ok = NormalizeDate(rec[models.ColDate])
	if !ok {
		stats.NulledDates++
	}
	return row, stats
}

func CleanRecords(records []utils.Record) ([]models.Row, Stats) {
	var stats Stats
	rows := make([]models.Row, 0, len(records))
	for _, rec := range records {
		row, s := CleanRecord(rec)
		stats.Add(s)
		rows = append(rows, row)
	}
	return rows, stats
}
