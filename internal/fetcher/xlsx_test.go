package fetcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string, order ...string) string {
	t.Helper()
	f := xlsx.NewFile()
	if len(order) == 0 {
		for name := range sheets {
			order = append(order, name)
		}
	}
	for _, name := range order {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range sheets[name] {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "firms.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestStreamXLSX_Basic(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"permno", "sic"},
			{"10001", "4920"},
			{"10002", "6022"},
		},
	})

	rowCh, errCh := StreamXLSX(context.Background(), path, XLSXOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"permno", "sic"}, rows[0])
	assert.Equal(t, []string{"10002", "6022"}, rows[2])
}

func TestStreamXLSX_SheetByName(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Notes": {{"ignore me"}},
		"Firms": {{"sic"}, {"2834"}},
	}, "Notes", "Firms")

	rowCh, errCh := StreamXLSX(context.Background(), path, XLSXOptions{SheetName: "Firms"})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"sic"}, {"2834"}}, rows)
}

func TestStreamXLSX_SheetByIndex(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Notes": {{"ignore me"}},
		"Firms": {{"sic"}, {"2834"}},
	}, "Notes", "Firms")

	rowCh, errCh := StreamXLSX(context.Background(), path, XLSXOptions{SheetIndex: 1})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"sic"}, {"2834"}}, rows)
}

func TestStreamXLSX_MissingSheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"a"}}})

	rowCh, errCh := StreamXLSX(context.Background(), path, XLSXOptions{SheetName: "Nope"})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Nope" not found`)

	rowCh, errCh = StreamXLSX(context.Background(), path, XLSXOptions{SheetIndex: 3})
	_, err = collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestStreamXLSX_MissingFile(t *testing.T) {
	rowCh, errCh := StreamXLSX(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"), XLSXOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open file")
}
