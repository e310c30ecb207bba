package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/oarkflow/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/productetl/etl"
)

const sheetCSV = `Name, Main Category ,Sub Category,Image,Link,Discount Price,Actual Price,Ratings,No Of Ratings
Kettle,appliances,Kitchen,https://img/k,https://shop/k,"₹1,299",₹1999,4.2,"1,024"
Kettle,appliances,Kitchen,https://img/k,https://shop/k,"₹1,199",₹1999,4.4,12
Toaster,appliances,Kitchen,https://img/t,https://shop/t,,₹899,Get,
`

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"productetl"}, args...))
	return out.String(), err
}

func TestSeedDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(sheetCSV), 0o644))

	out, err := runApp(t, "--dry-run", "--json", "seed", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, etl.MsgRelationalLoaded)
	assert.Contains(t, out, etl.MsgDocumentsLoaded)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	var run etl.Run
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &run))
	assert.Equal(t, etl.StageLoaded, run.Stage)
	assert.Equal(t, int64(2), run.Summary.Products)
	assert.Equal(t, int64(3), run.Summary.Sales)
	assert.Equal(t, 3, run.Summary.Documents)
}

func TestSeedMissingFile(t *testing.T) {
	_, err := runApp(t, "--dry-run", "seed", "--file", filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	var serr *etl.StageError
	assert.ErrorAs(t, err, &serr)
}

func TestConfigIsRedacted(t *testing.T) {
	t.Setenv("POSTGRES_PASS", "hunter2")
	out, err := runApp(t, "config")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "database: products")
}

func TestHistoryListsRuns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(sheetCSV), 0o644))
	t.Setenv("SCHEDULE_HISTORY_DIR", filepath.Join(dir, "history"))
	t.Setenv("POSTGRES_DRIVER", "sqlite")
	t.Setenv("POSTGRES_DB", filepath.Join(dir, "products.db"))

	_, err := runApp(t, "--documents-out", filepath.Join(dir, "documents.jsonl"),
		"seed", "--auto-create", "--file", path)
	require.NoError(t, err)
	_, err = runApp(t, "--dry-run", "run")
	require.NoError(t, err)

	out, err := runApp(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, etl.SeedPipeline)
	assert.Contains(t, out, string(etl.StageLoaded))

	out, err = runApp(t, "--json", "history")
	require.NoError(t, err)
	var runs []etl.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1, "dry runs stay out of the history directory")
	assert.Equal(t, etl.SeedPipeline, runs[0].Pipeline)
	assert.Equal(t, int64(2), runs[0].Summary.Products)
}

func TestSeedExportsDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(sheetCSV), 0o644))
	out := filepath.Join(dir, "documents.jsonl")

	_, err := runApp(t, "--dry-run", "--documents-out", out, "seed", "--file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 3)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(lines[2], &doc))
	assert.NotContains(t, doc, "name")
	assert.EqualValues(t, 2, doc["product_id"])
}
