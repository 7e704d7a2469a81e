// Copyright 2026 Peter Edge
//
// All rights reserved.

package xlsxsheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bufdev/perfctl/internal/pkg/xlsxtest"
	"github.com/stretchr/testify/require"
)

func TestCheckExtension(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		fileName string
		valid    bool
	}{
		{fileName: "report.xlsx", valid: true},
		{fileName: "REPORT.XLSX", valid: true},
		{fileName: "dir/report.xlsx", valid: true},
		{fileName: "report.xls", valid: false},
		{fileName: "report.csv", valid: false},
		{fileName: "report", valid: false},
		{fileName: "report.xlsx.bak", valid: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.fileName, func(t *testing.T) {
			t.Parallel()
			err := CheckExtension(testCase.fileName)
			if testCase.valid {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, ErrUnsupportedExtension))
			}
		})
	}
}

func TestReadBytes(t *testing.T) {
	t.Parallel()
	data := xlsxtest.Bytes(
		t,
		xlsxtest.NewSheet("Deals", []string{"Time", "Deal"}, []string{"2024.01.02 10:00:00", "1"}),
		xlsxtest.NewSheet("Other", []string{"a"}),
	)
	workbook, err := ReadBytes("deals.xlsx", data, ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, "deals.xlsx", workbook.FileName)
	require.Equal(t, []string{"Deals", "Other"}, workbook.SheetNames())
	require.Equal(t, "Deals", workbook.FirstSheet().Name)
	sheet := workbook.Sheet("Deals")
	require.NotNil(t, sheet)
	require.Equal(t, [][]string{{"Time", "Deal"}, {"2024.01.02 10:00:00", "1"}}, sheet.Rows)
	require.Equal(t, "1", sheet.Cell(1, 1))
	require.Equal(t, "", sheet.Cell(1, 5))
	require.Equal(t, "", sheet.Cell(9, 0))
	require.Nil(t, workbook.Sheet("Missing"))
}

func TestReadMaxRows(t *testing.T) {
	t.Parallel()
	data := xlsxtest.Bytes(
		t,
		xlsxtest.NewSheet("Sheet1", []string{"1"}, []string{"2"}, []string{"3"}, []string{"4"}),
	)
	workbook, err := ReadBytes("rows.xlsx", data, ReadOptions{MaxRows: 2})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"1"}, {"2"}}, workbook.FirstSheet().Rows)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()
	_, err := ReadBytes("deals.csv", []byte("Time,Deal"), ReadOptions{})
	require.True(t, errors.Is(err, ErrUnsupportedExtension))

	_, err = ReadBytes("deals.xlsx", []byte("definitely not a zip archive"), ReadOptions{})
	var containerError *ContainerError
	require.True(t, errors.As(err, &containerError))
	require.Equal(t, "deals.xlsx", containerError.FileName)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.xlsx"), ReadOptions{})
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	filePath := xlsxtest.WriteFile(t, t.TempDir(), "report.xlsx", xlsxtest.NewSheet("Sheet1", []string{"x", "y"}))
	workbook, err := ReadFile(filePath, ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, "report.xlsx", workbook.FileName)
	require.Equal(t, [][]string{{"x", "y"}}, workbook.FirstSheet().Rows)
}

func TestRowHelpers(t *testing.T) {
	t.Parallel()
	row := []string{" a ", "", "  "}
	require.Equal(t, "a", RowCell(row, 0))
	require.Equal(t, "", RowCell(row, -1))
	require.Equal(t, "", RowCell(row, 3))
	require.False(t, IsEmptyRow(row))
	require.True(t, IsEmptyRow([]string{"", " "}))
	require.True(t, IsEmptyRow(nil))
}
