// Package export writes change matrices to parquet files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"MarketPulse/internal/model"
)

// MatrixRow is one (symbol, period) cell of a change matrix.
type MatrixRow struct {
	Symbol        string  `parquet:"symbol"`
	Period        string  `parquet:"period"`
	StartDate     string  `parquet:"start_date"`
	EndDate       string  `parquet:"end_date"`
	PercentChange float64 `parquet:"percent_change"`
	Resolved      bool    `parquet:"resolved"`
}

// Rows flattens a matrix in symbol-major order.
func Rows(m *model.ChangeMatrix) []MatrixRow {
	rows := make([]MatrixRow, 0, len(m.Symbols)*len(m.Periods))
	for _, sym := range m.Symbols {
		for i, p := range m.Periods {
			resolved := false
			if i < len(m.Results) {
				_, resolved = m.Results[i].Changes[sym]
			}
			rows = append(rows, MatrixRow{
				Symbol:        sym,
				Period:        p.Name(),
				StartDate:     p.StartDate(),
				EndDate:       p.EndDate(),
				PercentChange: m.Value(sym, i),
				Resolved:      resolved,
			})
		}
	}
	return rows
}

// WriteMatrix writes m to path, creating parent directories.
func WriteMatrix(path string, m *model.ChangeMatrix) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	rows := Rows(m)
	if err := parquet.WriteFile(path, rows); err != nil {
		return 0, fmt.Errorf("write parquet %s: %w", path, err)
	}
	return len(rows), nil
}

// ReadMatrix reads rows written by WriteMatrix.
func ReadMatrix(path string) ([]MatrixRow, error) {
	rows, err := parquet.ReadFile[MatrixRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}

// FileName builds a timestamped export file name inside dir.
func FileName(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("changes_%s.parquet", now.Format("20060102_150405")))
}
