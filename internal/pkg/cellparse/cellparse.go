// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cellparse parses spreadsheet cell text exported by trading platforms.
//
// Exports come from terminals running in many locales, so numbers may use
// spaces or non-breaking spaces as thousands separators and a comma as the
// decimal separator, and dates use platform-specific layouts.
package cellparse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrInvalidNumber is returned when a cell cannot be read as a number.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidTime is returned when a cell cannot be read as a timestamp.
	ErrInvalidTime = errors.New("invalid time")
)

var (
	// MTLayouts are the MetaTrader deal time layouts, most specific first.
	MTLayouts = []string{
		"2006.01.02 15:04:05",
		"2006.01.02 15:04",
		"2006.01.02",
	}
	// TVLayouts are the TradingView "Date/Time" layouts.
	TVLayouts = []string{
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
	}
	// USLayouts are combined month-first layouts seen in re-saved exports.
	USLayouts = []string{
		"01/02/2006 15:04:05",
		"1/2/2006 15:04:05",
	}
	dateLayouts = []string{
		"2006.01.02",
		"2006-01-02",
		"01/02/2006",
		"1/2/2006",
	}
	clockLayouts = []string{
		"15:04:05",
		"15:04",
	}
)

// maxExcelSerial is 9999-12-31, the last date Excel can represent.
const maxExcelSerial = 2958465

var (
	stopLossRegexp   = regexp.MustCompile(`(?i)\bsl\s*:?\s*([-+]?\d+(?:[.,]\d+)?)`)
	takeProfitRegexp = regexp.MustCompile(`(?i)\btp\s*:?\s*([-+]?\d+(?:[.,]\d+)?)`)
	numberReplacer   = strings.NewReplacer(
		" ", "",
		"\u00a0", "",
		"\u202f", "",
		"\u2212", "-",
	)
)

// ParseDecimal parses a locale-formatted number.
//
// Spaces (including non-breaking spaces) are thousands separators. When both
// '.' and ',' appear, whichever comes last is the decimal separator. A single
// ',' alone is a decimal separator; repeated ',' or '.' are thousands
// separators. An empty cell is zero.
func ParseDecimal(value string) (decimal.Decimal, error) {
	cleaned := numberReplacer.Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	cleaned = strings.TrimPrefix(cleaned, "+")
	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Whichever separator comes last is the decimal separator.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}
	result, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, value)
	}
	return result, nil
}

// MaxNumberMagnitude bounds the numbers ParseNumber accepts, so that sums
// over a sheet stay finite.
const MaxNumberMagnitude = 1e15

// ParseNumber parses a locale-formatted number as a float64.
//
// See ParseDecimal for the accepted formats. Values with a magnitude above
// MaxNumberMagnitude, such as "1e999", are rejected with ErrInvalidNumber.
func ParseNumber(value string) (float64, error) {
	result, err := ParseDecimal(value)
	if err != nil {
		return 0, err
	}
	number := result.InexactFloat64()
	if math.IsInf(number, 0) || math.IsNaN(number) || math.Abs(number) > MaxNumberMagnitude {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidNumber, value)
	}
	return number, nil
}

// ParseTime parses value with the first matching layout.
func ParseTime(value string, layouts []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
}

// ParseExcelSerial parses an Excel serial date number such as "45292.5".
func ParseExcelSerial(value string) (time.Time, error) {
	serial, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	days := serial.InexactFloat64()
	if days < 1 || days > maxExcelSerial {
		return time.Time{}, fmt.Errorf("%w: serial %q out of range", ErrInvalidTime, value)
	}
	t, err := excelize.ExcelDateToTime(days, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	return t.Round(time.Second), nil
}

// ParseMTTime parses a MetaTrader deal time, also accepting Excel serial dates.
func ParseMTTime(value string) (time.Time, error) {
	if t, err := ParseTime(value, MTLayouts); err == nil {
		return t, nil
	}
	return ParseExcelSerial(value)
}

// ParseDateAndClock parses a date and a time of day held in separate cells.
func ParseDateAndClock(date string, clock string) (time.Time, error) {
	day, err := ParseTime(date, dateLayouts)
	if err != nil {
		return time.Time{}, err
	}
	timeOfDay, err := ParseTime(clock, clockLayouts)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(
		time.Duration(timeOfDay.Hour())*time.Hour +
			time.Duration(timeOfDay.Minute())*time.Minute +
			time.Duration(timeOfDay.Second())*time.Second,
	), nil
}

// IsClock returns true if value is a time of day such as "10:15" or "10:15:30".
func IsClock(value string) bool {
	_, err := ParseTime(value, clockLayouts)
	return err == nil
}

// ParseStopLevels extracts "sl <number>" and "tp <number>" from free text.
//
// Nil is returned for a level that is absent.
func ParseStopLevels(text string) (stopLoss *float64, takeProfit *float64) {
	return findLevel(stopLossRegexp, text), findLevel(takeProfitRegexp, text)
}

func findLevel(levelRegexp *regexp.Regexp, text string) *float64 {
	match := levelRegexp.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	value, err := ParseNumber(match[1])
	if err != nil {
		return nil
	}
	return &value
}
