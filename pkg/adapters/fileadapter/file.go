package fileadapter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/json"
	"github.com/xuri/excelize/v2"

	"github.com/oarkflow/productetl/pkg/contracts"
	"github.com/oarkflow/productetl/pkg/transformers"
	"github.com/oarkflow/productetl/pkg/utils"
)

// Adapter reads a whole spreadsheet into memory. Supported extensions are
// xlsx/xlsm (first sheet unless one is named), csv and json (an array of
// objects). Header names are normalized on the way in.
type Adapter struct {
	Filename  string
	Sheet     string
	extension string
}

var _ contracts.SheetReader = (*Adapter)(nil)

func New(fileName, sheet string) *Adapter {
	return &Adapter{
		Filename:  fileName,
		Sheet:     sheet,
		extension: strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), ".")),
	}
}

func (fl *Adapter) Read(_ context.Context) ([]utils.Record, error) {
	if _, err := os.Stat(fl.Filename); err != nil {
		return nil, fmt.Errorf("spreadsheet %s: %w", fl.Filename, err)
	}
	switch fl.extension {
	case "xlsx", "xlsm":
		return fl.readExcel()
	case "csv":
		return fl.readCSV()
	case "json":
		return fl.readJSON()
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", fl.extension)
	}
}

func (fl *Adapter) readExcel() ([]utils.Record, error) {
	f, err := excelize.OpenFile(fl.Filename)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", fl.Filename, err)
	}
	defer func() {
		_ = f.Close()
	}()
	sheet := fl.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("spreadsheet %s has no sheets", fl.Filename)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return toRecords(rows), nil
}

func (fl *Adapter) readCSV() ([]utils.Record, error) {
	file, err := os.Open(fl.Filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", fl.Filename, err)
		}
		rows = append(rows, row)
	}
	return toRecords(rows), nil
}

func (fl *Adapter) readJSON() ([]utils.Record, error) {
	data, err := os.ReadFile(fl.Filename)
	if err != nil {
		return nil, err
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json %s: %w", fl.Filename, err)
	}
	records := make([]utils.Record, 0, len(raw))
	for _, obj := range raw {
		rec := make(utils.Record, len(obj))
		for k, v := range obj {
			rec[transformers.NormalizeHeader(k)] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// toRecords treats the first row as the header. Short rows are padded with
// empty cells and rows with no content at all are dropped.
func toRecords(rows [][]string) []utils.Record {
	if len(rows) == 0 {
		return nil
	}
	headers := transformers.NormalizeHeaders(rows[0])
	records := make([]utils.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := make(utils.Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
