package ioadapter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/productetl/pkg/utils"
)

func docs() []utils.Record {
	return []utils.Record{
		{"product_id": int64(1), "main_category": "appliances", "actual_price": 1299.5, "date": nil},
		{"product_id": nil, "main_category": "toys", "actual_price": nil, "date": "2023-03-14"},
	}
}

func TestStoreBatchJSONLines(t *testing.T) {
	var buf bytes.Buffer
	a := NewLoader(&buf, "")
	require.NoError(t, a.Setup(context.Background()))
	require.NoError(t, a.StoreBatch(context.Background(), docs()))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"actual_price":1299.5`)
	assert.Contains(t, string(lines[1]), `"product_id":null`)
}

func TestStoreBatchCSVWritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	a := NewLoader(&buf, "csv")
	ctx := context.Background()
	require.NoError(t, a.StoreBatch(ctx, docs()[:1]))
	require.NoError(t, a.StoreBatch(ctx, docs()[1:]))

	assert.Equal(t, "product_id,main_category,actual_price,date\n"+
		"1,appliances,1299.5,\n"+
		",toys,,2023-03-14\n", buf.String())
}

func TestSetupRejectsUnknownFormat(t *testing.T) {
	assert.Error(t, NewLoader(&bytes.Buffer{}, "xml").Setup(context.Background()))
}

func TestOpenPicksFormatFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.csv")
	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.StoreBatch(context.Background(), docs()))
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("product_id,")))
}
