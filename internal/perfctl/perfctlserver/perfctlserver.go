// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package perfctlserver serves report analysis over HTTP.
//
// Uploaded workbooks are analyzed in the request goroutine. Journal routes
// are available only when a journal is configured.
package perfctlserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlstore"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/bufdev/perfctl/internal/pkg/xlsxsheet"
	"github.com/gin-gonic/gin"
)

const (
	// FileFormField is the multipart field holding the uploaded workbook.
	FileFormField = "file"
	// ReportIDHeader carries the journal ID of a saved upload.
	ReportIDHeader = "X-Report-Id"

	defaultMaxUploadBytes = 64 << 20
	shutdownTimeout       = 10 * time.Second
)

// Journal is the subset of the journal store used by the server.
type Journal interface {
	SaveReport(ctx context.Context, report *perfctlreport.Report) (string, error)
	ListReports(ctx context.Context) ([]perfctlstore.ReportRecord, error)
	GetTrades(ctx context.Context, id string) ([]ledger.Trade, error)
	GetEquity(ctx context.Context, id string) ([]ledger.EquityPoint, error)
}

// Server is the HTTP API.
type Server struct {
	logger         *slog.Logger
	options        perfctlreport.Options
	journal        Journal
	maxUploadBytes int64
}

// ServerOption is an option for a new Server.
type ServerOption func(*Server)

// WithJournal enables the journal routes and saving uploads with ?save=true.
func WithJournal(journal Journal) ServerOption {
	return func(server *Server) {
		server.journal = journal
	}
}

// WithMaxUploadBytes caps the size of uploaded workbooks.
func WithMaxUploadBytes(maxUploadBytes int64) ServerOption {
	return func(server *Server) {
		server.maxUploadBytes = maxUploadBytes
	}
}

// New returns a new Server.
func New(logger *slog.Logger, options perfctlreport.Options, serverOptions ...ServerOption) *Server {
	server := &Server{
		logger:         logger,
		options:        options,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, serverOption := range serverOptions {
		serverOption(server)
	}
	return server
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	engine := gin.New()
	engine.MaxMultipartMemory = s.maxUploadBytes
	engine.Use(s.logRequests(), gin.Recovery())
	engine.GET("/healthz", s.health)
	v1 := engine.Group("/v1")
	v1.POST("/reports", s.createReport)
	v1.GET("/reports", s.listReports)
	v1.GET("/reports/:id/trades", s.getTrades)
	v1.GET("/reports/:id/equity", s.getEquity)
	return engine
}

// Run serves on address until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, address string) error {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errC := make(chan error, 1)
	go func() {
		s.logger.Info("serving", slog.String("address", address))
		errC <- httpServer.ListenAndServe()
	}()
	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createReport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)
	fileHeader, err := c.FormFile(FileFormField)
	if err != nil {
		writeError(c, http.StatusBadRequest, "missing multipart field \""+FileFormField+"\"")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Warn("closing upload", slog.String("file", fileHeader.Filename), slog.Any("error", err))
		}
	}()
	report, err := perfctlreport.Analyze(c.Request.Context(), s.logger, fileHeader.Filename, file, s.options)
	if err != nil {
		var containerError *xlsxsheet.ContainerError
		switch {
		case errors.Is(err, xlsxsheet.ErrUnsupportedExtension):
			writeError(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &containerError):
			writeError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if c.Query("save") == "true" {
		if s.journal == nil {
			writeError(c, http.StatusServiceUnavailable, "journal is not configured")
			return
		}
		id, err := s.journal.SaveReport(c.Request.Context(), report)
		if err != nil {
			writeError(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.Header(ReportIDHeader, id)
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) listReports(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	records, err := s.journal.ListReports(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []perfctlstore.ReportRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": records})
}

func (s *Server) getTrades(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	trades, err := s.journal.GetTrades(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeJournalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": perfctlreport.NewExternalTrades(trades)})
}

func (s *Server) getEquity(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	points, err := s.journal.GetEquity(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeJournalError(c, err)
		return
	}
	if points == nil {
		points = []ledger.EquityPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (s *Server) requireJournal(c *gin.Context) bool {
	if s.journal == nil {
		writeError(c, http.StatusServiceUnavailable, "journal is not configured")
		return false
	}
	return true
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(
			"request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

func writeJournalError(c *gin.Context, err error) {
	if errors.Is(err, perfctlstore.ErrNotFound) {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	writeError(c, http.StatusInternalServerError, err.Error())
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
