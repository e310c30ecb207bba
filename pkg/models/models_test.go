package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowDocumentDropsName(t *testing.T) {
	price := 12.5
	id := int64(3)
	row := Row{Name: "Kettle", MainCategory: "appliances", ActualPrice: &price}

	doc := row.Document(&id)
	assert.NotContains(t, doc, ColName)
	assert.Equal(t, int64(3), doc[ColProductID])
	assert.Equal(t, 12.5, doc[ColActualPrice])
	assert.Contains(t, doc, ColDiscountPrice)
	assert.Nil(t, doc[ColDiscountPrice])

	assert.Nil(t, row.Document(nil)[ColProductID])
}

func TestRowDocumentCarriesExtraColumns(t *testing.T) {
	id := int64(1)
	row := Row{
		Name:         "Kettle",
		MainCategory: "appliances",
		Extra:        map[string]any{"seller": "acme", ColMainCategory: "stale", "warranty": nil},
	}
	doc := row.Document(&id)
	assert.Equal(t, "acme", doc["seller"])
	assert.Contains(t, doc, "warranty")
	assert.Nil(t, doc["warranty"])
	assert.Equal(t, "appliances", doc[ColMainCategory])
	assert.NotContains(t, doc, ColName)
	assert.Len(t, doc, len(ExtractColumns)+2)
}

func TestIsKnownColumn(t *testing.T) {
	assert.True(t, IsKnownColumn(ColDate))
	assert.True(t, IsKnownColumn(ColSalesID))
	assert.False(t, IsKnownColumn("seller"))
}

func TestValuesUnwrapPointers(t *testing.T) {
	id := int64(1)
	sale := Sale{SalesID: 7, ProductID: &id}
	assert.Equal(t, []any{int64(7), int64(1), nil, nil, nil}, sale.Values())
	assert.Len(t, sale.Values(), len(SaleColumns))
	assert.Len(t, Price{}.Values(), len(PriceColumns))
	assert.Len(t, Product{}.Values(), len(ProductColumns))
}

func TestOrderedKeys(t *testing.T) {
	keys := OrderedKeys(map[string]any{
		"zeta": 1, ColDate: 1, "alpha": 1, ColProductID: 1, ColMainCategory: 1,
	})
	assert.Equal(t, []string{ColProductID, ColMainCategory, ColDate, "alpha", "zeta"}, keys)
}
