package nosqladapter

import (
	"context"
	"fmt"
	"time"

	"github.com/oarkflow/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oarkflow/productetl/pkg/config"
	"github.com/oarkflow/productetl/pkg/contracts"
	"github.com/oarkflow/productetl/pkg/models"
	"github.com/oarkflow/productetl/pkg/utils"
)

type Adapter struct {
	config     config.Mongo
	client     *mongo.Client
	collection *mongo.Collection
	logger     *log.Logger
}

var _ contracts.DocumentSink = (*Adapter)(nil)

func New(cfg config.Mongo, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Adapter{config: cfg, logger: logger}
}

func (a *Adapter) Setup(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.config.ConnectionURI()))
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}
	a.client = client
	a.collection = client.Database(a.config.Database).Collection(a.config.Collection)
	return nil
}

// StoreBatch inserts every record as a new document. There is no upsert:
// storing the same records twice yields two copies.
func (a *Adapter) StoreBatch(ctx context.Context, records []utils.Record) error {
	if len(records) == 0 {
		return nil
	}
	if a.collection == nil {
		return fmt.Errorf("mongo collection %s.%s is not set up", a.config.Database, a.config.Collection)
	}
	docs := make([]any, len(records))
	for i, rec := range records {
		docs[i] = toDocument(rec)
	}
	res, err := a.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert into %s.%s: %w", a.config.Database, a.config.Collection, err)
	}
	a.logger.Info().
		Str("database", a.config.Database).
		Str("collection", a.config.Collection).
		Int("documents", len(res.InsertedIDs)).
		Msg("documents inserted")
	return nil
}

// toDocument keeps column order stable so documents read the same way the
// relational rows do.
func toDocument(rec utils.Record) bson.D {
	doc := make(bson.D, 0, len(rec))
	for _, k := range models.OrderedKeys(rec) {
		doc = append(doc, bson.E{Key: k, Value: rec[k]})
	}
	return doc
}

func (a *Adapter) Close() error {
	if a.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}
