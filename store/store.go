// Copyright 2022 - 2026 The DomainStat Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store reads and writes the SQLite databases the analysis works
// with: the business records database, the internet.nl scan database and
// the statistics output database.
package store

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/statnl/domainstat/frame"
)

// DB wraps a SQLite database handle.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database handle.
func (db *DB) Close() error {
	return db.conn.Close()
}

// quoteIdent quotes an identifier for use in a SQL statement.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// TableNames returns the names of all tables in the database.
func (db *DB) TableNames() ([]string, error) {
	rows, err := db.conn.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountRows returns the number of rows in the named table.
func (db *DB) CountRows(table string) (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT count(*) FROM " + quoteIdent(table)).Scan(&n)
	return n, err
}

// readTable reads one table into per-column value slices.
func (db *DB) readTable(table string) ([]string, [][]any, error) {
	rows, err := db.conn.Query("SELECT * FROM " + quoteIdent(table))
	if err != nil {
		return nil, nil, fmt.Errorf("read table %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	values := make([][]any, len(names))
	scan := make([]any, len(names))
	for rows.Next() {
		row := make([]any, len(names))
		for i := range row {
			scan[i] = &row[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, nil, err
		}
		for i, v := range row {
			values[i] = append(values[i], v)
		}
	}
	return names, values, rows.Err()
}

// toColumn turns raw scanned values into a frame column: a numeric column
// when every value is a number or NULL, a label column otherwise.
func toColumn(name string, values []any) *frame.Column {
	numeric := true
	for _, v := range values {
		switch v.(type) {
		case nil, int64, float64:
		default:
			numeric = false
		}
		if !numeric {
			break
		}
	}

	if numeric {
		floats := make([]float64, len(values))
		for i, v := range values {
			switch x := v.(type) {
			case int64:
				floats[i] = float64(x)
			case float64:
				floats[i] = x
			default:
				floats[i] = math.NaN()
			}
		}
		return &frame.Column{Name: name, Kind: frame.Float, Floats: floats}
	}

	labels := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		switch x := v.(type) {
		case []byte:
			labels[i] = string(x)
		default:
			labels[i] = fmt.Sprint(x)
		}
	}
	return &frame.Column{Name: name, Kind: frame.String, Labels: labels}
}

// ReadTables reads the named tables and concatenates them column-wise
// into one frame, aligning rows on the index column. The first table
// fixes the row order; rows of later tables that carry an unknown index
// value are dropped. The index column itself survives as a label column.
func (db *DB) ReadTables(tables []string, indexCol string) (*frame.Frame, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables given")
	}

	out := frame.New()
	var rowByIndex map[string]int

	for tableNo, table := range tables {
		names, values, err := db.readTable(table)
		if err != nil {
			return nil, err
		}

		idxPos := -1
		for i, n := range names {
			if n == indexCol {
				idxPos = i
				break
			}
		}
		if idxPos < 0 {
			return nil, fmt.Errorf("table %s has no column %s", table, indexCol)
		}

		indexLabels := toColumn(indexCol, values[idxPos])
		keys := indexLabels.Labels
		if indexLabels.Kind.Numeric() {
			keys = make([]string, len(indexLabels.Floats))
			for i, v := range indexLabels.Floats {
				keys[i] = fmt.Sprintf("%.0f", v)
			}
		}

		if tableNo == 0 {
			rowByIndex = make(map[string]int, len(keys))
			for i, k := range keys {
				if _, ok := rowByIndex[k]; !ok {
					rowByIndex[k] = i
				}
			}
			if err := out.AddLabels(indexCol, keys); err != nil {
				return nil, err
			}
			for i, n := range names {
				if i == idxPos {
					continue
				}
				if err := out.AddColumn(toColumn(n, values[i])); err != nil {
					return nil, err
				}
			}
			continue
		}

		// align a later table on the index of the first one
		for i, n := range names {
			if i == idxPos || out.Column(n) != nil {
				continue
			}
			col := toColumn(n, values[i])
			if err := out.AddColumn(alignColumn(col, keys, rowByIndex, out.NumRows())); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// alignColumn reorders col, whose rows are keyed by keys, onto the frame
// row order given by rowByIndex. Missing rows stay missing.
func alignColumn(col *frame.Column, keys []string, rowByIndex map[string]int, numRows int) *frame.Column {
	if col.Kind.Numeric() {
		floats := make([]float64, numRows)
		for i := range floats {
			floats[i] = math.NaN()
		}
		for i, k := range keys {
			if row, ok := rowByIndex[k]; ok {
				floats[row] = col.Floats[i]
			}
		}
		return &frame.Column{Name: col.Name, Kind: col.Kind, Floats: floats}
	}

	labels := make([]string, numRows)
	for i, k := range keys {
		if row, ok := rowByIndex[k]; ok {
			labels[row] = col.Labels[i]
		}
	}
	return &frame.Column{Name: col.Name, Kind: col.Kind, Labels: labels}
}

// WriteFrame writes f as the named table, replacing any existing table
// with that name.
func (db *DB) WriteFrame(table string, f *frame.Frame) error {
	if f.NumCols() == 0 {
		return fmt.Errorf("write table %s: frame has no columns", table)
	}

	colDefs := make([]string, f.NumCols())
	colNames := make([]string, f.NumCols())
	params := make([]string, f.NumCols())
	for i, c := range f.Cols {
		typ := "TEXT"
		if c.Kind.Numeric() {
			typ = "REAL"
		}
		colDefs[i] = quoteIdent(c.Name) + " " + typ
		colNames[i] = quoteIdent(c.Name)
		params[i] = "?"
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(table)); err != nil {
		return err
	}
	if _, err := tx.Exec("CREATE TABLE " + quoteIdent(table) + " (" + strings.Join(colDefs, ", ") + ")"); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO " + quoteIdent(table) + " (" + strings.Join(colNames, ", ") +
		") VALUES (" + strings.Join(params, ", ") + ")")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for row := 0; row < f.NumRows(); row++ {
		args := make([]any, f.NumCols())
		for i, c := range f.Cols {
			if c.Missing(row) {
				args[i] = nil
			} else {
				args[i] = c.Value(row)
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("write table %s row %d: %w", table, row, err)
		}
	}
	return tx.Commit()
}
