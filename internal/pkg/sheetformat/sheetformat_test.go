// Copyright 2026 Peter Edge
//
// All rights reserved.

package sheetformat

import (
	"testing"

	"github.com/bufdev/perfctl/internal/pkg/xlsxsheet"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()
	mtRows := [][]string{
		{"Trade History Report"},
		{"Name:", "Demo"},
		{},
		{"Time", "Deal", "Symbol", "Type"},
		{"2024.01.02 10:00:00", "1", "", "balance"},
	}
	tests := []struct {
		name              string
		workbook          *xlsxsheet.Workbook
		expectedFormat    Format
		expectedHeaderRow int
		expectedSheet     string
	}{
		{
			name: "tradingview",
			workbook: &xlsxsheet.Workbook{
				FileName: "strategy_mt4.xlsx",
				Sheets: []*xlsxsheet.Sheet{
					{Name: "Performance"},
					{Name: TradingViewSheetName, Rows: [][]string{{"Trade #", "Type"}}},
				},
			},
			expectedFormat:    FormatTradingViewList,
			expectedHeaderRow: 0,
			expectedSheet:     TradingViewSheetName,
		},
		{
			name: "mt5",
			workbook: &xlsxsheet.Workbook{
				FileName: "ReportHistory-123.xlsx",
				Sheets:   []*xlsxsheet.Sheet{{Name: "Sheet1", Rows: mtRows}},
			},
			expectedFormat:    FormatMT5Deals,
			expectedHeaderRow: 3,
			expectedSheet:     "Sheet1",
		},
		{
			name: "mt4 by file name",
			workbook: &xlsxsheet.Workbook{
				FileName: "Statement-MT4.xlsx",
				Sheets:   []*xlsxsheet.Sheet{{Name: "Sheet1", Rows: mtRows}},
			},
			expectedFormat:    FormatMT4Deals,
			expectedHeaderRow: 3,
			expectedSheet:     "Sheet1",
		},
		{
			name: "header containing the words",
			workbook: &xlsxsheet.Workbook{
				FileName: "deals.xlsx",
				Sheets: []*xlsxsheet.Sheet{{Name: "Deals", Rows: [][]string{
					{"Open Time", "Deal #", "Symbol"},
				}}},
			},
			expectedFormat:    FormatMT5Deals,
			expectedHeaderRow: 0,
			expectedSheet:     "Deals",
		},
		{
			name: "no header",
			workbook: &xlsxsheet.Workbook{
				FileName: "export.xlsx",
				Sheets: []*xlsxsheet.Sheet{{Name: "Sheet1", Rows: [][]string{
					{"2024.01.02 10:00:00", "1", "EURUSD"},
				}}},
			},
			expectedFormat:    FormatUnstructured,
			expectedHeaderRow: -1,
			expectedSheet:     "Sheet1",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			detection := Detect(test.workbook)
			require.Equal(t, test.expectedFormat, detection.Format)
			require.Equal(t, test.expectedHeaderRow, detection.HeaderRow)
			require.NotNil(t, detection.Sheet)
			require.Equal(t, test.expectedSheet, detection.Sheet.Name)
		})
	}
}

func TestDetectEmpty(t *testing.T) {
	t.Parallel()
	detection := Detect(&xlsxsheet.Workbook{FileName: "empty.xlsx"})
	require.Equal(t, FormatUnstructured, detection.Format)
	require.Nil(t, detection.Sheet)
	detection = Detect(nil)
	require.Equal(t, FormatUnstructured, detection.Format)
}

func TestFormatString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "mt5_deals", FormatMT5Deals.String())
	require.Equal(t, "unstructured_fallback", FormatUnstructured.String())
	require.True(t, FormatMT4Deals.IsMT())
	require.False(t, FormatTradingViewList.IsMT())
}
