package belfius

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// ErrNoTransactions reports a file that parsed cleanly but contained no
// transaction lines at all (header-only files, non-Belfius files).
var ErrNoTransactions = errors.New("no valid transactions found in file")

// accountPrefix marks a data row as a real transaction line; Belfius
// exports mix in metadata and summary lines that carry no IBAN.
const accountPrefix = "BE"

// RowError is a failure isolated to a single statement line. Row is the
// 1-based index of the data row within the file.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"error"`
}

// ParsedRow pairs a transaction with the data row it came from, so that
// later per-row persistence failures can be reported against file lines.
type ParsedRow struct {
	Row         int
	Transaction model.Transaction
}

// Result is the outcome of parsing one statement file. Rows preserves
// file order. RowErrors holds the lines that were excluded; they never
// fail the parse as a whole. SkippedRows counts structural skips.
type Result struct {
	Rows        []ParsedRow
	RowErrors   []RowError
	SkippedRows int
}

// Transactions returns the parsed transactions in file order.
func (r *Result) Transactions() []model.Transaction {
	txs := make([]model.Transaction, len(r.Rows))
	for i, row := range r.Rows {
		txs[i] = row.Transaction
	}
	return txs
}

// Parser parses Belfius CSV statement exports: semicolon-delimited UTF-8
// with a fixed Dutch header row.
type Parser struct {
	positional bool
}

// NewParser returns the header-based parser. Column names in the header,
// not positions, decide the mapping.
func NewParser() *Parser {
	return &Parser{}
}

// NewLegacyParser returns the positional compatibility parser for old
// exports whose headers cannot be trusted. It must be selected explicitly,
// never by detection.
func NewLegacyParser() *Parser {
	return &Parser{positional: true}
}

// Format returns the parser name.
func (p *Parser) Format() string {
	if p.positional {
		return "belfius-legacy"
	}
	return "belfius"
}

// Parse converts raw statement bytes into a Result.
//
// Tokenizer failures and files without a single valid transaction fail the
// parse; everything row-level is isolated into Result.RowErrors.
func (p *Parser) Parse(content []byte) (*Result, error) {
	text := strings.TrimPrefix(string(content), "\uFEFF")
	text = strings.TrimSpace(text)

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoTransactions
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
	}

	columns := header
	if p.positional {
		columns = belfiusColumns
	}

	result := &Result{}
	for i, record := range records[1:] {
		rowNum := i + 1

		if isBlank(record) {
			result.SkippedRows++
			continue
		}

		row := recordToMap(columns, record)
		if !strings.HasPrefix(strings.TrimSpace(row[colAccount]), accountPrefix) {
			result.SkippedRows++
			continue
		}

		tx, err := mapRow(row)
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if tx == nil {
			result.SkippedRows++
			continue
		}

		result.Rows = append(result.Rows, ParsedRow{Row: rowNum, Transaction: *tx})
	}

	if len(result.Rows) == 0 {
		return nil, ErrNoTransactions
	}
	return result, nil
}

// recordToMap keys a raw record by column name. Fields beyond the known
// columns are dropped; missing trailing fields read as "".
func recordToMap(columns, record []string) map[string]string {
	row := make(map[string]string, len(columns))
	for i, name := range columns {
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
