//go:build integration

package etl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oarkflow/productetl/pkg/adapters/nosqladapter"
	"github.com/oarkflow/productetl/pkg/adapters/sqladapter"
	"github.com/oarkflow/productetl/pkg/config"
	"github.com/oarkflow/productetl/pkg/models"
	"github.com/oarkflow/productetl/pkg/testhelpers"
)

func countRows(t *testing.T, cfg config.Database, table string) int {
	t.Helper()
	db, err := sqladapter.Open(cfg)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func countDocuments(t *testing.T, cfg config.Mongo) int64 {
	t.Helper()
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.ConnectionURI()))
	require.NoError(t, err)
	defer client.Disconnect(ctx)
	n, err := client.Database(cfg.Database).Collection(cfg.Collection).CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	return n
}

func seedLoader(t *testing.T, cfg config.Database) *sqladapter.Adapter {
	t.Helper()
	db, err := sqladapter.Open(cfg)
	require.NoError(t, err)
	loader, err := sqladapter.NewLoader(db, cfg.Driver, sqladapter.WithAutoCreate(true))
	require.NoError(t, err)
	return loader
}

func TestSeedThenRecurringAgainstStores(t *testing.T) {
	ctx := context.Background()
	pg := testhelpers.Postgres(t)
	mg := testhelpers.Mongo(t)
	mg.Collection = "seed_then_recurring"

	run, err := NewSeed(threeRows(), seedLoader(t, pg), nosqladapter.New(mg, nil)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StageLoaded, run.Stage)
	assert.Equal(t, 2, countRows(t, pg, models.TableProduct))
	assert.Equal(t, 3, countRows(t, pg, models.TablePrice))
	assert.Equal(t, 3, countRows(t, pg, models.TableSales))
	assert.Equal(t, int64(3), countDocuments(t, mg))

	// Truncate-then-replay leaves the same relational counts.
	_, err = NewSeed(threeRows(), seedLoader(t, pg), nosqladapter.New(mg, nil)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, countRows(t, pg, models.TableProduct))
	assert.Equal(t, 3, countRows(t, pg, models.TablePrice))

	// Without truncation keys are skipped but documents pile up.
	run, err = NewSeed(threeRows(), seedLoader(t, pg), nosqladapter.New(mg, nil), WithTruncate(false)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), run.Summary.SkippedRows)
	assert.Equal(t, 3, countRows(t, pg, models.TableSales))
	assert.Equal(t, int64(9), countDocuments(t, mg))

	recurring := mg
	recurring.Collection = "recurring"
	db, err := sqladapter.Open(pg)
	require.NoError(t, err)
	src, err := sqladapter.NewSource(db, pg.Driver)
	require.NoError(t, err)
	run, err = NewRecurring(src, nosqladapter.New(recurring, nil)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, run.Summary.Extracted)
	assert.Equal(t, int64(5), countDocuments(t, recurring))
}
