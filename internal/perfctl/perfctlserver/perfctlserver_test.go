// Copyright 2026 Peter Edge
//
// All rights reserved.

package perfctlserver

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlstore"
	"github.com/bufdev/perfctl/internal/pkg/xlsxtest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	recorder := serve(t, New(slog.Default(), perfctlreport.DefaultOptions()), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestCreateReport(t *testing.T) {
	t.Parallel()
	server := New(slog.Default(), perfctlreport.DefaultOptions())
	recorder := serve(t, server, uploadRequest(t, "/v1/reports", "deals.xlsx", dealsBytes(t)))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	require.Equal(t, "MT5", decoded["source"])
	require.Equal(t, "deals.xlsx", decoded["file_name"])
	require.Equal(t, "mt5_deals", decoded["format"])
	trades, ok := decoded["trades"].([]any)
	require.True(t, ok)
	require.Len(t, trades, 3)
	require.Empty(t, recorder.Header().Get(ReportIDHeader))
}

func TestCreateReportErrors(t *testing.T) {
	t.Parallel()
	server := New(slog.Default(), perfctlreport.DefaultOptions())
	testCases := []struct {
		name     string
		request  *http.Request
		expected int
	}{
		{
			name:     "unsupported_extension",
			request:  uploadRequest(t, "/v1/reports", "deals.csv", []byte("Time,Deal\n")),
			expected: http.StatusBadRequest,
		},
		{
			name:     "corrupt_container",
			request:  uploadRequest(t, "/v1/reports", "deals.xlsx", []byte("not a zip")),
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "missing_file",
			request:  httptest.NewRequest(http.MethodPost, "/v1/reports", nil),
			expected: http.StatusBadRequest,
		},
		{
			name:     "save_without_journal",
			request:  uploadRequest(t, "/v1/reports?save=true", "deals.xlsx", dealsBytes(t)),
			expected: http.StatusServiceUnavailable,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			recorder := serve(t, server, testCase.request)
			require.Equal(t, testCase.expected, recorder.Code, recorder.Body.String())
			var decoded map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
			require.NotEmpty(t, decoded["error"])
		})
	}
}

func TestJournalRoutes(t *testing.T) {
	t.Parallel()
	store, err := perfctlstore.Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	server := New(slog.Default(), perfctlreport.DefaultOptions(), WithJournal(store))

	recorder := serve(t, server, uploadRequest(t, "/v1/reports?save=true", "deals.xlsx", dealsBytes(t)))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	id := recorder.Header().Get(ReportIDHeader)
	require.NotEmpty(t, id)

	recorder = serve(t, server, httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	var reports struct {
		Reports []map[string]any `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &reports))
	require.Len(t, reports.Reports, 1)
	require.Equal(t, id, reports.Reports[0]["id"])

	recorder = serve(t, server, httptest.NewRequest(http.MethodGet, "/v1/reports/"+id+"/trades", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	var trades struct {
		Trades []map[string]any `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &trades))
	require.Len(t, trades.Trades, 3)
	require.Equal(t, "EURUSD", trades.Trades[2]["symbol"])

	recorder = serve(t, server, httptest.NewRequest(http.MethodGet, "/v1/reports/"+id+"/equity", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = serve(t, server, httptest.NewRequest(http.MethodGet, "/v1/reports/missing/trades", nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestJournalRoutesWithoutJournal(t *testing.T) {
	t.Parallel()
	server := New(slog.Default(), perfctlreport.DefaultOptions())
	for _, path := range []string{"/v1/reports", "/v1/reports/abc/trades", "/v1/reports/abc/equity"} {
		recorder := serve(t, server, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusServiceUnavailable, recorder.Code, path)
	}
}

func serve(t *testing.T, server *Server, request *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)
	return recorder
}

func uploadRequest(t *testing.T, target string, fileName string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(FileFormField, fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	request := httptest.NewRequest(http.MethodPost, target, body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func dealsBytes(t *testing.T) []byte {
	t.Helper()
	return xlsxtest.Bytes(t, xlsxtest.NewSheet(
		"Sheet1",
		[]string{"Time", "Deal", "Symbol", "Type", "Direction", "Volume", "Price", "Order", "Commission", "Swap", "Profit", "Balance"},
		[]string{"2024.01.02 09:00:00", "1", "", "balance", "", "", "", "", "0", "0", "1000", "1000"},
		[]string{"2024.01.02 10:00:00", "2", "EURUSD", "buy", "in", "0.1", "1.1", "11", "0", "0", "0", "1000"},
		[]string{"2024.01.02 11:00:00", "3", "EURUSD", "sell", "out", "0.1", "1.2", "12", "0", "0", "100", "1100"},
	))
}
