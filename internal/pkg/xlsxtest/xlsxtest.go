// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package xlsxtest builds .xlsx fixtures in memory for tests.
package xlsxtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is a worksheet to write into a fixture workbook.
type Sheet struct {
	// Name is the worksheet name.
	Name string
	// Rows are written starting at A1, one slice per row.
	Rows [][]any
}

// NewSheet is a convenience constructor for string-only rows.
func NewSheet(name string, rows ...[]string) Sheet {
	anyRows := make([][]any, 0, len(rows))
	for _, row := range rows {
		anyRow := make([]any, 0, len(row))
		for _, cell := range row {
			anyRow = append(anyRow, cell)
		}
		anyRows = append(anyRows, anyRow)
	}
	return Sheet{Name: name, Rows: anyRows}
}

// Bytes returns the encoded workbook containing the given sheets in order.
func Bytes(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()
	require.NotEmpty(t, sheets, "a workbook needs at least one sheet")
	file := excelize.NewFile()
	defer func() {
		require.NoError(t, file.Close())
	}()
	// NewFile always starts with "Sheet1", so rename it to the first sheet.
	require.NoError(t, file.SetSheetName("Sheet1", sheets[0].Name))
	for _, sheet := range sheets[1:] {
		_, err := file.NewSheet(sheet.Name)
		require.NoError(t, err)
	}
	for _, sheet := range sheets {
		for i, row := range sheet.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, file.SetSheetRow(sheet.Name, cell, &row))
		}
	}
	buffer, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buffer.Bytes()
}

// WriteFile writes the workbook to fileName inside dirPath and returns the full path.
func WriteFile(t testing.TB, dirPath string, fileName string, sheets ...Sheet) string {
	t.Helper()
	filePath := filepath.Join(dirPath, fileName)
	require.NoError(t, os.WriteFile(filePath, Bytes(t, sheets...), 0o644))
	return filePath
}
