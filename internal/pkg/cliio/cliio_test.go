// Copyright 2026 Peter Edge
//
// All rights reserved.

package cliio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()
	format, err := ParseFormat("CSV")
	require.NoError(t, err)
	require.Equal(t, FormatCSV, format)
	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestWriteRows(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	require.NoError(t, WriteRows(&buffer, FormatCSV, []string{"Key", "Value"}, [][]string{{"Win Rate", "40.00"}}))
	require.Equal(t, "Key,Value\nWin Rate,40.00\n", buffer.String())

	buffer.Reset()
	require.NoError(t, WriteRows(&buffer, FormatTable, []string{"A", "B"}, [][]string{{"long value", "1"}}))
	require.Equal(t, "A           B\nlong value  1\n", buffer.String())

	require.Error(t, WriteRows(&buffer, FormatJSON, nil, nil))
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	require.NoError(t, WriteJSON(&buffer, map[string]string{"symbol": "S&P"}, map[string]string{"symbol": "B"}))
	require.Equal(t, "{\"symbol\":\"S&P\"}\n{\"symbol\":\"B\"}\n", buffer.String())
}
