// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sheetformat classifies a workbook by the platform that exported it.
package sheetformat

import (
	"path/filepath"
	"strings"

	"github.com/bufdev/perfctl/internal/pkg/xlsxsheet"
)

// TradingViewSheetName is the sheet name TradingView uses for its strategy trade list.
const TradingViewSheetName = "List of trades"

// Format is the detected export format.
type Format int

const (
	// FormatUnstructured is a workbook with no recognizable header, handled by
	// the positional fallback parser.
	FormatUnstructured Format = iota
	// FormatMT5Deals is a MetaTrader 5 deals report.
	FormatMT5Deals
	// FormatMT4Deals is a MetaTrader 4 deals report.
	FormatMT4Deals
	// FormatTradingViewList is a TradingView "List of trades" export.
	FormatTradingViewList
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatMT5Deals:
		return "mt5_deals"
	case FormatMT4Deals:
		return "mt4_deals"
	case FormatTradingViewList:
		return "tradingview_list"
	default:
		return "unstructured_fallback"
	}
}

// IsMT returns true for either MetaTrader deals format.
func (f Format) IsMT() bool {
	return f == FormatMT4Deals || f == FormatMT5Deals
}

// Detection is the result of Detect.
type Detection struct {
	// Format is the detected format.
	Format Format
	// Sheet is the sheet the parser should read. It is nil for an empty workbook.
	Sheet *xlsxsheet.Sheet
	// HeaderRow is the index of the MetaTrader header row, or -1.
	HeaderRow int
}

// Detect classifies the workbook.
//
// A sheet named "List of trades" wins. Otherwise the first sheet is scanned
// for a "Time"/"Deal" header row, and MetaTrader 4 is told apart from
// MetaTrader 5 by the file name alone. Anything else is unstructured.
// Detect never fails.
func Detect(workbook *xlsxsheet.Workbook) Detection {
	if workbook == nil {
		return Detection{Format: FormatUnstructured, HeaderRow: -1}
	}
	if sheet := workbook.Sheet(TradingViewSheetName); sheet != nil {
		return Detection{Format: FormatTradingViewList, Sheet: sheet, HeaderRow: 0}
	}
	sheet := workbook.FirstSheet()
	if sheet == nil {
		return Detection{Format: FormatUnstructured, HeaderRow: -1}
	}
	headerRow := FindMTHeaderRow(sheet.Rows)
	if headerRow < 0 {
		return Detection{Format: FormatUnstructured, Sheet: sheet, HeaderRow: -1}
	}
	format := FormatMT5Deals
	if IsMT4FileName(workbook.FileName) {
		format = FormatMT4Deals
	}
	return Detection{Format: format, Sheet: sheet, HeaderRow: headerRow}
}

// FindMTHeaderRow returns the index of the first row whose first two cells
// name the Time and Deal columns, or -1.
func FindMTHeaderRow(rows [][]string) int {
	for i, row := range rows {
		if strings.Contains(xlsxsheet.RowCell(row, 0), "Time") &&
			strings.Contains(xlsxsheet.RowCell(row, 1), "Deal") {
			return i
		}
	}
	return -1
}

// IsMT4FileName returns true if the base file name mentions MT4.
func IsMT4FileName(fileName string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(fileName)), "mt4")
}
