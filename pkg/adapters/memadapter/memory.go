package memadapter

import (
	"context"
	"sync"

	"github.com/oarkflow/productetl/pkg/contracts"
	"github.com/oarkflow/productetl/pkg/models"
	"github.com/oarkflow/productetl/pkg/utils"
)

// RelationalStore keeps the three tables in memory. Rows whose primary key
// is already present are skipped, never overwritten.
type RelationalStore struct {
	mu       sync.Mutex
	products map[int64]models.Product
	prices   map[int64]models.Price
	sales    map[int64]models.Sale
	// FailOn makes the named operation return an error, for tests.
	FailOn map[string]error
}

var (
	_ contracts.RelationalSink = (*RelationalStore)(nil)
	_ contracts.DocumentSink   = (*DocumentStore)(nil)
	_ contracts.Source         = (*RelationalStore)(nil)
)

func NewRelationalStore() *RelationalStore {
	return &RelationalStore{
		products: make(map[int64]models.Product),
		prices:   make(map[int64]models.Price),
		sales:    make(map[int64]models.Sale),
	}
}

func (s *RelationalStore) fail(op string) error {
	if err, ok := s.FailOn[op]; ok {
		return err
	}
	return nil
}

func (s *RelationalStore) Setup(_ context.Context) error {
	return s.fail("setup")
}

func (s *RelationalStore) Truncate(_ context.Context) error {
	if err := s.fail("truncate"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.products)
	clear(s.prices)
	clear(s.sales)
	return nil
}

func (s *RelationalStore) InsertProducts(_ context.Context, products []models.Product) (int64, error) {
	if err := s.fail("products"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var written int64
	for _, p := range products {
		if _, exists := s.products[p.ProductID]; exists {
			continue
		}
		s.products[p.ProductID] = p
		written++
	}
	return written, nil
}

func (s *RelationalStore) InsertPrices(_ context.Context, prices []models.Price) (int64, error) {
	if err := s.fail("prices"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var written int64
	for _, p := range prices {
		if _, exists := s.prices[p.PriceID]; exists {
			continue
		}
		s.prices[p.PriceID] = p
		written++
	}
	return written, nil
}

func (s *RelationalStore) InsertSales(_ context.Context, sales []models.Sale) (int64, error) {
	if err := s.fail("sales"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var written int64
	for _, sale := range sales {
		if _, exists := s.sales[sale.SalesID]; exists {
			continue
		}
		s.sales[sale.SalesID] = sale
		written++
	}
	return written, nil
}

// Extract returns the product ⋈ price ⋈ sales join ordered by product,
// price and sale id.
func (s *RelationalStore) Extract(_ context.Context, _ ...contracts.Option) ([]utils.Record, error) {
	if err := s.fail("extract"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []utils.Record
	for _, p := range sortedValues(s.products, func(p models.Product) int64 { return p.ProductID }) {
		for _, price := range sortedValues(s.prices, func(v models.Price) int64 { return v.PriceID }) {
			if price.ProductID == nil || *price.ProductID != p.ProductID {
				continue
			}
			for _, sale := range sortedValues(s.sales, func(v models.Sale) int64 { return v.SalesID }) {
				if sale.ProductID == nil || *sale.ProductID != p.ProductID {
					continue
				}
				records = append(records, utils.Record{
					models.ColName:          p.Name,
					models.ColMainCategory:  p.MainCategory,
					models.ColSubCategory:   p.SubCategory,
					models.ColImage:         p.Image,
					models.ColLink:          p.Link,
					models.ColDiscountPrice: deref(price.DiscountPrice),
					models.ColActualPrice:   deref(price.ActualPrice),
					models.ColRatings:       deref(sale.Ratings),
					models.ColNoOfRatings:   deref(sale.NoOfRatings),
					models.ColDate:          deref(sale.Date),
				})
			}
		}
	}
	return records, nil
}

func (s *RelationalStore) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.products, func(p models.Product) int64 { return p.ProductID })
}

func (s *RelationalStore) Prices() []models.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.prices, func(p models.Price) int64 { return p.PriceID })
}

func (s *RelationalStore) Sales() []models.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.sales, func(v models.Sale) int64 { return v.SalesID })
}

func (s *RelationalStore) Close() error {
	return nil
}

// DocumentStore appends every stored record, like an insert-only collection.
type DocumentStore struct {
	mu     sync.Mutex
	docs   []utils.Record
	FailOn error
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

func (d *DocumentStore) Setup(_ context.Context) error {
	return nil
}

func (d *DocumentStore) StoreBatch(_ context.Context, batch []utils.Record) error {
	if d.FailOn != nil {
		return d.FailOn
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, rec := range batch {
		d.docs = append(d.docs, utils.Clone(rec))
	}
	return nil
}

func (d *DocumentStore) Documents() []utils.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]utils.Record(nil), d.docs...)
}

func (d *DocumentStore) Close() error {
	return nil
}
