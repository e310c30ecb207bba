package sqladapter

import (
	"embed"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/oarkflow/productetl/pkg/models"
)

//go:embed schema/*.sql
var schemaFS embed.FS

type dialect struct {
	driver    string
	maxParams int
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		return dialect{driver: "postgres", maxParams: 65535}, nil
	case "sqlite", "sqlite3":
		return dialect{driver: "sqlite", maxParams: 32766}, nil
	case "mysql", "mariadb":
		return dialect{driver: "mysql", maxParams: 65535}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported driver: %s", driver)
	}
}

func (d dialect) quote(ident string) string {
	if d.driver == "mysql" {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return pq.QuoteIdentifier(ident)
}

func (d dialect) placeholder(n int) string {
	if d.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// truncateStatements empties the three tables, children first. Postgres
// also resets identities.
func (d dialect) truncateStatements() []string {
	tables := []string{models.TableSales, models.TablePrice, models.TableProduct}
	if d.driver == "postgres" {
		quoted := make([]string, len(tables))
		for i, t := range tables {
			quoted[i] = d.quote(t)
		}
		return []string{fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))}
	}
	stmts := make([]string, len(tables))
	for i, t := range tables {
		stmts[i] = fmt.Sprintf("DELETE FROM %s", d.quote(t))
	}
	return stmts
}

// buildInsert renders a multi-row insert for rows rows. cols[0] is the
// primary key. With ignore set, rows whose primary key already exists are
// skipped instead of failing.
func (d dialect) buildInsert(table string, cols []string, rows int, ignore bool) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.quote(table))
	sb.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.quote(c))
	}
	sb.WriteString(") VALUES ")
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := range cols {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.placeholder(n))
			n++
		}
		sb.WriteString(")")
	}
	switch {
	case !ignore:
	case d.driver == "mysql":
		// Only duplicate keys are skipped; any other error still fails.
		pk := d.quote(cols[0])
		sb.WriteString(" ON DUPLICATE KEY UPDATE " + pk + " = " + pk)
	default:
		sb.WriteString(" ON CONFLICT DO NOTHING")
	}
	return sb.String()
}

// chunkSize caps rows per statement by the batch size and the driver's
// bind parameter limit.
func (d dialect) chunkSize(cols, batchSize int) int {
	limit := d.maxParams / cols
	if batchSize > 0 && batchSize < limit {
		return batchSize
	}
	return limit
}

func (d dialect) schemaStatements() ([]string, error) {
	data, err := schemaFS.ReadFile("schema/" + d.driver + ".sql")
	if err != nil {
		return nil, err
	}
	var stmts []string
	for _, stmt := range strings.Split(string(data), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

const extractQuery = `SELECT p.name, p.main_category, p.sub_category, p.image, p.link,
       pp.discount_price, pp.actual_price, s.ratings, s.no_of_ratings, s.date
FROM product p
JOIN product_price pp ON p.product_id = pp.product_id
JOIN sales s ON p.product_id = s.product_id`
