// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package xlsxsheet reads .xlsx workbooks into raw string matrices.
//
// A Sheet is the ephemeral cell matrix consumed by the format detector and
// the parsers. Cells are the formatted values excelize reports, so dates and
// numbers arrive as the strings the exporting platform wrote. Trailing empty
// cells are trimmed per row, which is why downstream positional parsers look
// at row length.
package xlsxsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Extension is the only file extension accepted by Read and ReadFile.
const Extension = ".xlsx"

// ErrUnsupportedExtension is returned when a file does not have the .xlsx extension.
//
// The check happens before any bytes are read.
var ErrUnsupportedExtension = errors.New("unsupported file extension, only .xlsx files are accepted")

// ContainerError is returned when the bytes are not a valid spreadsheet container
// (for example a corrupt zip or a renamed non-xlsx file).
type ContainerError struct {
	// FileName is the name of the file that could not be opened.
	FileName string
	// Err is the underlying excelize error.
	Err error
}

// Error implements error.
func (e *ContainerError) Error() string {
	return fmt.Sprintf("%s is not a valid xlsx container: %v", e.FileName, e.Err)
}

// Unwrap returns the underlying error.
func (e *ContainerError) Unwrap() error {
	return e.Err
}

// Sheet is a single worksheet as an ordered matrix of cells.
type Sheet struct {
	// Name is the worksheet name.
	Name string
	// Rows are the worksheet rows in file order.
	Rows [][]string
}

// Cell returns the trimmed cell at the given position, or "" if out of range.
func (s *Sheet) Cell(row int, column int) string {
	if s == nil || row < 0 || row >= len(s.Rows) {
		return ""
	}
	return RowCell(s.Rows[row], column)
}

// Workbook is the ordered set of sheets in a file.
type Workbook struct {
	// FileName is the base name of the source file.
	FileName string
	// Sheets are the worksheets in workbook order.
	Sheets []*Sheet
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, sheet := range w.Sheets {
		names = append(names, sheet.Name)
	}
	return names
}

// Sheet returns the sheet with the given name, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, sheet := range w.Sheets {
		if sheet.Name == name {
			return sheet
		}
	}
	return nil
}

// FirstSheet returns the first sheet, or nil for an empty workbook.
func (w *Workbook) FirstSheet() *Sheet {
	if len(w.Sheets) == 0 {
		return nil
	}
	return w.Sheets[0]
}

// ReadOptions controls how a workbook is read.
type ReadOptions struct {
	// MaxRows caps the number of rows read per sheet. Zero means no cap.
	MaxRows int
}

// CheckExtension returns ErrUnsupportedExtension if the file name does not end in .xlsx.
func CheckExtension(fileName string) error {
	if !strings.EqualFold(filepath.Ext(fileName), Extension) {
		return fmt.Errorf("%s: %w", filepath.Base(fileName), ErrUnsupportedExtension)
	}
	return nil
}

// ReadFile reads the workbook at the given path.
func ReadFile(filePath string, options ReadOptions) (_ *Workbook, retErr error) {
	if err := CheckExtension(filePath); err != nil {
		return nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	return Read(filepath.Base(filePath), file, options)
}

// Read reads a workbook from the reader. The fileName is used for the
// extension check and for error messages.
func Read(fileName string, reader io.Reader, options ReadOptions) (_ *Workbook, retErr error) {
	if err := CheckExtension(fileName); err != nil {
		return nil, err
	}
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, &ContainerError{FileName: fileName, Err: err}
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	workbook := &Workbook{
		FileName: filepath.Base(fileName),
	}
	for _, sheetName := range file.GetSheetList() {
		rows, err := readRows(file, sheetName, options.MaxRows)
		if err != nil {
			return nil, &ContainerError{FileName: fileName, Err: fmt.Errorf("reading sheet %q: %w", sheetName, err)}
		}
		workbook.Sheets = append(workbook.Sheets, &Sheet{
			Name: sheetName,
			Rows: rows,
		})
	}
	return workbook, nil
}

// ReadBytes is a convenience wrapper around Read for in-memory files.
func ReadBytes(fileName string, data []byte, options ReadOptions) (*Workbook, error) {
	return Read(fileName, bytes.NewReader(data), options)
}

// RowCell returns the trimmed cell at the given column, or "" if out of range.
func RowCell(row []string, column int) string {
	if column < 0 || column >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[column])
}

// IsEmptyRow returns true if every cell in the row is blank.
func IsEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readRows(file *excelize.File, sheetName string, maxRows int) ([][]string, error) {
	// Without a cap, GetRows is the simplest path.
	if maxRows <= 0 {
		return file.GetRows(sheetName)
	}
	// Stream rows so previews of large sheets do not materialize every row.
	rowIterator, err := file.Rows(sheetName)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for len(rows) < maxRows && rowIterator.Next() {
		columns, err := rowIterator.Columns()
		if err != nil {
			return nil, errors.Join(err, rowIterator.Close())
		}
		rows = append(rows, columns)
	}
	if err := rowIterator.Error(); err != nil {
		return nil, errors.Join(err, rowIterator.Close())
	}
	return rows, rowIterator.Close()
}
