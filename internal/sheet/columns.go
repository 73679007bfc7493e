package sheet

import "strings"

// Column is a semantic column of the order sheet.
type Column int

const (
	ColumnTitle Column = iota
	ColumnStatusProgress
	ColumnOrderDate
	ColumnFinishDate
	ColumnBackupExpired
	ColumnFileStatus
	ColumnProjectCode
	ColumnOrderCode
	ColumnRevision
)

type columnDef struct {
	column   Column
	headers  []string // lower-case, tried in order
	fallback int
}

var columnDefs = []columnDef{
	{ColumnTitle, []string{"judul"}, 0},
	{ColumnStatusProgress, []string{"status progres"}, 1},
	{ColumnOrderDate, []string{"tanggal order"}, 2},
	{ColumnFinishDate, []string{"tanggal selesai"}, 3},
	{ColumnBackupExpired, []string{"expired backup", "backup expired"}, 4},
	{ColumnFileStatus, []string{"status file", "status"}, 5},
	{ColumnProjectCode, []string{"code projek"}, 6},
	{ColumnOrderCode, []string{"code order"}, 7},
	{ColumnRevision, []string{"revisi"}, 8},
}

// ColumnMap holds the header index of every column, -1 when the header row
// does not name it.
type ColumnMap map[Column]int

// MapColumns matches header cells exactly after trimming and lower-casing.
func MapColumns(header Row) ColumnMap {
	positions := make(map[string]int, len(header))
	for i := len(header) - 1; i >= 0; i-- {
		positions[strings.ToLower(Trim(header[i]))] = i
	}

	columns := make(ColumnMap, len(columnDefs))
	for _, def := range columnDefs {
		columns[def.column] = -1
		for _, name := range def.headers {
			if idx, ok := positions[name]; ok {
				columns[def.column] = idx
				break
			}
		}
	}
	return columns
}

// Index returns the mapped index of col, or its default position.
func (m ColumnMap) Index(col Column) int {
	if idx, ok := m[col]; ok && idx >= 0 {
		return idx
	}
	for _, def := range columnDefs {
		if def.column == col {
			return def.fallback
		}
	}
	return -1
}

// Cell returns the trimmed value of col in row, or "" when the row is short.
func (m ColumnMap) Cell(row Row, col Column) string {
	idx := m.Index(col)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return Trim(row[idx])
}
