package models

import "slices"

// Column names shared by the spreadsheet, the relational schema and the
// document store.
const (
	ColProductID     = "product_id"
	ColPriceID       = "price_id"
	ColSalesID       = "sales_id"
	ColName          = "name"
	ColMainCategory  = "main_category"
	ColSubCategory   = "sub_category"
	ColImage         = "image"
	ColLink          = "link"
	ColDiscountPrice = "discount_price"
	ColActualPrice   = "actual_price"
	ColRatings       = "ratings"
	ColNoOfRatings   = "no_of_ratings"
	ColDate          = "date"
)

const (
	TableProduct = "product"
	TablePrice   = "product_price"
	TableSales   = "sales"
)

// ExtractColumns is the column set returned by the recurring pipeline's join.
var ExtractColumns = []string{
	ColName, ColMainCategory, ColSubCategory, ColImage, ColLink,
	ColDiscountPrice, ColActualPrice, ColRatings, ColNoOfRatings, ColDate,
}

var (
	ProductColumns = []string{ColProductID, ColName, ColMainCategory, ColSubCategory, ColImage, ColLink}
	PriceColumns   = []string{ColPriceID, ColProductID, ColDiscountPrice, ColActualPrice}
	SaleColumns    = []string{ColSalesID, ColProductID, ColRatings, ColNoOfRatings, ColDate}
)

// NaturalKey is the tuple products are deduplicated on.
type NaturalKey struct {
	Name         string
	MainCategory string
	SubCategory  string
	Image        string
	Link         string
}

type Product struct {
	ProductID    int64  `json:"product_id" db:"product_id"`
	Name         string `json:"name" db:"name"`
	MainCategory string `json:"main_category" db:"main_category"`
	SubCategory  string `json:"sub_category" db:"sub_category"`
	Image        string `json:"image" db:"image"`
	Link         string `json:"link" db:"link"`
}

func (p Product) Key() NaturalKey {
	return NaturalKey{
		Name:         p.Name,
		MainCategory: p.MainCategory,
		SubCategory:  p.SubCategory,
		Image:        p.Image,
		Link:         p.Link,
	}
}

func (p Product) Values() []any {
	return []any{p.ProductID, p.Name, p.MainCategory, p.SubCategory, p.Image, p.Link}
}

type Price struct {
	PriceID       int64    `json:"price_id" db:"price_id"`
	ProductID     *int64   `json:"product_id" db:"product_id"`
	DiscountPrice *float64 `json:"discount_price" db:"discount_price"`
	ActualPrice   *float64 `json:"actual_price" db:"actual_price"`
}

func (p Price) Values() []any {
	return []any{p.PriceID, nullable(p.ProductID), nullable(p.DiscountPrice), nullable(p.ActualPrice)}
}

type Sale struct {
	SalesID     int64    `json:"sales_id" db:"sales_id"`
	ProductID   *int64   `json:"product_id" db:"product_id"`
	Ratings     *float64 `json:"ratings" db:"ratings"`
	NoOfRatings *int64   `json:"no_of_ratings" db:"no_of_ratings"`
	Date        *string  `json:"date" db:"date"`
}

func (s Sale) Values() []any {
	return []any{s.SalesID, nullable(s.ProductID), nullable(s.Ratings), nullable(s.NoOfRatings), nullable(s.Date)}
}

// Row is one cleaned spreadsheet row. Nil pointers are missing values.
type Row struct {
	Name          string
	MainCategory  string
	SubCategory   string
	Image         string
	Link          string
	DiscountPrice *float64
	ActualPrice   *float64
	Ratings       *float64
	NoOfRatings   *int64
	Date          *string
	// Extra holds spreadsheet columns outside the known set. They ride
	// along into the document store only.
	Extra map[string]any
}

func (r Row) Key() NaturalKey {
	return NaturalKey{
		Name:         r.Name,
		MainCategory: r.MainCategory,
		SubCategory:  r.SubCategory,
		Image:        r.Image,
		Link:         r.Link,
	}
}

// Document is the document-store shape of a row.
type Document = map[string]any

// Document renders the row without its natural key name, with productID
// resolved. Missing values are kept as explicit nulls. Extra columns are
// copied through; a known column always wins over an extra of the same name.
func (r Row) Document(productID *int64) Document {
	doc := make(Document, len(r.Extra)+10)
	for k, v := range r.Extra {
		doc[k] = v
	}
	doc[ColProductID] = nullable(productID)
	doc[ColMainCategory] = r.MainCategory
	doc[ColSubCategory] = r.SubCategory
	doc[ColImage] = r.Image
	doc[ColLink] = r.Link
	doc[ColDiscountPrice] = nullable(r.DiscountPrice)
	doc[ColActualPrice] = nullable(r.ActualPrice)
	doc[ColRatings] = nullable(r.Ratings)
	doc[ColNoOfRatings] = nullable(r.NoOfRatings)
	doc[ColDate] = nullable(r.Date)
	delete(doc, ColName)
	return doc
}

// IsKnownColumn reports whether col is one of the cleaned spreadsheet
// columns or a generated identifier.
func IsKnownColumn(col string) bool {
	switch col {
	case ColProductID, ColPriceID, ColSalesID:
		return true
	}
	return slices.Contains(ExtractColumns, col)
}

// nullable unwraps p so drivers and BSON see a plain value or an untyped nil.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
