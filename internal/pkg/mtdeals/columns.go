// Copyright 2026 Peter Edge
//
// All rights reserved.

package mtdeals

import (
	"strings"

	"github.com/bufdev/perfctl/internal/pkg/xlsxsheet"
)

// Field is a column of the MetaTrader deals table.
type Field int

const (
	FieldTime Field = iota
	FieldDeal
	FieldSymbol
	FieldType
	FieldDirection
	FieldVolume
	FieldPrice
	FieldOrder
	FieldCommission
	FieldSwap
	FieldProfit
	FieldBalance
	FieldComment
	numFields
)

var fieldNames = [numFields]string{
	FieldTime:       "Time",
	FieldDeal:       "Deal",
	FieldSymbol:     "Symbol",
	FieldType:       "Type",
	FieldDirection:  "Direction",
	FieldVolume:     "Volume",
	FieldPrice:      "Price",
	FieldOrder:      "Order",
	FieldCommission: "Commission",
	FieldSwap:       "Swap",
	FieldProfit:     "Profit",
	FieldBalance:    "Balance",
	FieldComment:    "Comment",
}

// String implements fmt.Stringer.
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "Unknown"
	}
	return fieldNames[f]
}

// ColumnMap maps each field to its column index, or -1 if the header lacks it.
type ColumnMap [numFields]int

// NewColumnMap resolves the header row into a ColumnMap.
//
// Exact case-insensitive matches are resolved first, then fields still
// missing are matched by substring. A column is never used for two fields.
func NewColumnMap(header []string) ColumnMap {
	var columnMap ColumnMap
	for i := range columnMap {
		columnMap[i] = -1
	}
	used := make([]bool, len(header))
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(cell))
	}
	// Exact matches first so "Time" is not claimed by a substring of another header.
	for field := range numFields {
		name := strings.ToLower(fieldNames[field])
		for i, cell := range normalized {
			if !used[i] && cell == name {
				columnMap[field] = i
				used[i] = true
				break
			}
		}
	}
	for field := range numFields {
		if columnMap[field] >= 0 {
			continue
		}
		name := strings.ToLower(fieldNames[field])
		for i, cell := range normalized {
			if !used[i] && cell != "" && strings.Contains(cell, name) {
				columnMap[field] = i
				used[i] = true
				break
			}
		}
	}
	return columnMap
}

// Get returns the trimmed cell for the field, or "" if the field is unmapped.
func (c ColumnMap) Get(row []string, field Field) string {
	return xlsxsheet.RowCell(row, c[field])
}

// positionalColumnMap is the MetaTrader 5 column order starting at start.
// Profit, Balance, and Comment are resolved from the end of the row.
func positionalColumnMap(start int, rowLength int) ColumnMap {
	columnMap := ColumnMap{
		FieldTime:       -1,
		FieldDeal:       start,
		FieldSymbol:     start + 1,
		FieldType:       start + 2,
		FieldDirection:  start + 3,
		FieldVolume:     start + 4,
		FieldPrice:      start + 5,
		FieldOrder:      start + 6,
		FieldCommission: start + 7,
		FieldSwap:       start + 8,
		FieldProfit:     -1,
		FieldBalance:    -1,
		FieldComment:    -1,
	}
	// Rows with a Comment column have three trailing fields, otherwise two.
	if rowLength >= start+12 {
		columnMap[FieldProfit] = rowLength - 3
		columnMap[FieldBalance] = rowLength - 2
		columnMap[FieldComment] = rowLength - 1
	} else {
		columnMap[FieldProfit] = rowLength - 2
		columnMap[FieldBalance] = rowLength - 1
	}
	// Short rows would otherwise read the trailing fields from the leading ones.
	for _, field := range []Field{FieldProfit, FieldBalance} {
		if columnMap[field] <= start+1 {
			columnMap[field] = -1
		}
	}
	// Positional fields that collide with the trailing fields are dropped.
	for field := FieldDeal; field <= FieldSwap; field++ {
		if columnMap[field] >= rowLength ||
			columnMap[field] == columnMap[FieldProfit] ||
			columnMap[field] == columnMap[FieldBalance] {
			columnMap[field] = -1
		}
	}
	return columnMap
}
