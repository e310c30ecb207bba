package sqladapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/productetl/pkg/models"
)

func TestBuildInsert(t *testing.T) {
	tests := []struct {
		driver string
		ignore bool
		want   string
	}{
		{
			driver: "postgres",
			ignore: true,
			want:   `INSERT INTO "product_price" ("price_id", "product_id") VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING`,
		},
		{
			driver: "postgres",
			ignore: false,
			want:   `INSERT INTO "product_price" ("price_id", "product_id") VALUES ($1, $2), ($3, $4)`,
		},
		{
			driver: "sqlite",
			ignore: true,
			want:   `INSERT INTO "product_price" ("price_id", "product_id") VALUES (?, ?), (?, ?) ON CONFLICT DO NOTHING`,
		},
		{
			driver: "mysql",
			ignore: true,
			want:   "INSERT INTO `product_price` (`price_id`, `product_id`) VALUES (?, ?), (?, ?) ON DUPLICATE KEY UPDATE `price_id` = `price_id`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := dialectFor(tt.driver)
			require.NoError(t, err)
			got := d.buildInsert(models.TablePrice, []string{models.ColPriceID, models.ColProductID}, 2, tt.ignore)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateStatements(t *testing.T) {
	pg, err := dialectFor("postgresql")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{`TRUNCATE TABLE "sales", "product_price", "product" RESTART IDENTITY CASCADE`},
		pg.truncateStatements())

	lite, err := dialectFor("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, []string{
		`DELETE FROM "sales"`,
		`DELETE FROM "product_price"`,
		`DELETE FROM "product"`,
	}, lite.truncateStatements())
}

func TestChunkSize(t *testing.T) {
	lite, err := dialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, 500, lite.chunkSize(5, 500))
	assert.Equal(t, 32766/5, lite.chunkSize(5, 0))
	assert.Equal(t, 32766/5, lite.chunkSize(5, 1_000_000))
}

func TestSchemaStatements(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite", "mysql"} {
		d, err := dialectFor(driver)
		require.NoError(t, err)
		stmts, err := d.schemaStatements()
		require.NoError(t, err, driver)
		require.Len(t, stmts, 3, driver)
		assert.Contains(t, stmts[0], "product")
		assert.Contains(t, stmts[2], "sales")
	}
}

func TestDialectForUnsupported(t *testing.T) {
	_, err := dialectFor("oracle")
	assert.Error(t, err)
}
