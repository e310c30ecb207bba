package ioadapter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oarkflow/json"

	"github.com/oarkflow/productetl/pkg/contracts"
	"github.com/oarkflow/productetl/pkg/models"
	"github.com/oarkflow/productetl/pkg/utils"
)

// Adapter writes documents to a stream instead of a document store, as
// JSON lines or CSV.
type Adapter struct {
	writer io.Writer
	format string
	csv    *csv.Writer
	header []string
}

var _ contracts.DocumentSink = (*Adapter)(nil)

func NewLoader(writer io.Writer, format string) *Adapter {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == "jsonl" || format == "ndjson" {
		format = "json"
	}
	return &Adapter{writer: writer, format: format}
}

// Open creates the file at path, or uses stdout for "-". The format follows
// the file extension.
func Open(path string) (*Adapter, error) {
	if path == "-" {
		return NewLoader(os.Stdout, "json"), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	format := "json"
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		format = "csv"
	}
	return NewLoader(f, format), nil
}

func (ioa *Adapter) Setup(_ context.Context) error {
	switch ioa.format {
	case "json", "csv":
		return nil
	}
	return fmt.Errorf("unsupported export format: %q", ioa.format)
}

func (ioa *Adapter) StoreBatch(_ context.Context, records []utils.Record) error {
	if ioa.format == "csv" {
		return ioa.writeCSV(records)
	}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err = ioa.writer.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// writeCSV takes its header from the first record ever written.
func (ioa *Adapter) writeCSV(records []utils.Record) error {
	if len(records) == 0 {
		return nil
	}
	if ioa.csv == nil {
		ioa.csv = csv.NewWriter(ioa.writer)
		ioa.header = models.OrderedKeys(records[0])
		if err := ioa.csv.Write(ioa.header); err != nil {
			return err
		}
	}
	for _, rec := range records {
		row := make([]string, len(ioa.header))
		for i, col := range ioa.header {
			if v := rec[col]; v != nil {
				row[i] = utils.ToString(v)
			}
		}
		if err := ioa.csv.Write(row); err != nil {
			return err
		}
	}
	ioa.csv.Flush()
	return ioa.csv.Error()
}

func (ioa *Adapter) Close() error {
	if ioa.writer == os.Stdout {
		return nil
	}
	if closer, ok := ioa.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
