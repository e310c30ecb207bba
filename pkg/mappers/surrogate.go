package mappers

import (
	"github.com/oarkflow/productetl/pkg/models"
)

// Lookup resolves a product name to its generated identifier.
type Lookup map[string]int64

// Resolve returns nil when name has no product.
func (l Lookup) Resolve(name string) *int64 {
	id, ok := l[name]
	if !ok {
		return nil
	}
	return &id
}

type Stats struct {
	// NameCollisions counts distinct tuples that share a name with an
	// earlier tuple; the later tuple owns the name in the lookup.
	NameCollisions int `json:"name_collisions"`
	// Unmapped counts rows whose product_id could not be resolved.
	Unmapped int `json:"unmapped"`
}

// Assignment is the normalized split of a cleaned table.
type Assignment struct {
	Products []models.Product
	Prices   []models.Price
	Sales    []models.Sale
	Lookup   Lookup
	Stats    Stats
}

// Assign derives surrogate keys in two passes. The first pass deduplicates
// the natural-key tuples in first-occurrence order and numbers them from 1.
// The second pass emits one price and one sale per input row and resolves
// product_id through the name lookup. Only a row whose natural key is
// entirely blank gets no product; a blank name with other fields set is a
// product like any other and owns the empty name in the lookup.
func Assign(rows []models.Row) Assignment {
	a := Assignment{Lookup: make(Lookup)}
	seen := make(map[models.NaturalKey]struct{}, len(rows))
	for _, row := range rows {
		key := row.Key()
		if key == (models.NaturalKey{}) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		id := int64(len(a.Products) + 1)
		a.Products = append(a.Products, models.Product{
			ProductID:    id,
			Name:         key.Name,
			MainCategory: key.MainCategory,
			SubCategory:  key.SubCategory,
			Image:        key.Image,
			Link:         key.Link,
		})
		if _, taken := a.Lookup[key.Name]; taken {
			a.Stats.NameCollisions++
		}
		a.Lookup[key.Name] = id
	}

	a.Prices = make([]models.Price, 0, len(rows))
	a.Sales = make([]models.Sale, 0, len(rows))
	for i, row := range rows {
		productID := a.Lookup.Resolve(row.Name)
		if productID == nil {
			a.Stats.Unmapped++
		}
		a.Prices = append(a.Prices, models.Price{
			PriceID:       int64(i + 1),
			ProductID:     productID,
			DiscountPrice: row.DiscountPrice,
			ActualPrice:   row.ActualPrice,
		})
		a.Sales = append(a.Sales, models.Sale{
			SalesID:     int64(i + 1),
			ProductID:   productID,
			Ratings:     row.Ratings,
			NoOfRatings: row.NoOfRatings,
			Date:        row.Date,
		})
	}
	return a
}

// Documents renders one document per row with product_id resolved through
// the same lookup and the name dropped.
func (a Assignment) Documents(rows []models.Row) []models.Document {
	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.Document(a.Lookup.Resolve(row.Name)))
	}
	return docs
}
