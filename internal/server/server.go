package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/sat-mexico/internal/cfdi"
	"github.com/rezonia/sat-mexico/internal/dispatch"
	"github.com/rezonia/sat-mexico/internal/indicator"
	"github.com/rezonia/sat-mexico/internal/logger"
	"github.com/rezonia/sat-mexico/internal/model"
	"github.com/rezonia/sat-mexico/internal/rfc"
)

// Request timeouts per route group
const (
	indicatorTimeout = 30 * time.Second
	issueTimeout     = 2 * time.Minute
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// Credentials are used by the CFDI routes and by batch rows without
	// their own credentials
	Credentials *model.Credentials

	ExchangeRateURL string
	UDIURL          string
	FacturapiURL    string

	Logger *zap.Logger
}

// Server represents the HTTP API server
type Server struct {
	config      *Config
	router      *gin.Engine
	logger      *zap.Logger
	fetcher     *indicator.Fetcher
	invoices    *cfdi.Service
	dispatcher  *dispatch.Dispatcher
	credentials *model.Credentials
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(logger.Recovery(log))
	router.Use(logger.GinMiddleware(log))

	var fetcherOpts []indicator.Option
	fetcherOpts = append(fetcherOpts, indicator.WithLogger(log))
	if config.ExchangeRateURL != "" {
		fetcherOpts = append(fetcherOpts, indicator.WithExchangeRateURL(config.ExchangeRateURL))
	}
	if config.UDIURL != "" {
		fetcherOpts = append(fetcherOpts, indicator.WithUDIURL(config.UDIURL))
	}
	fetcher := indicator.NewFetcher(fetcherOpts...)

	serviceOpts := []cfdi.Option{cfdi.WithLogger(log)}
	if config.FacturapiURL != "" {
		serviceOpts = append(serviceOpts, cfdi.WithFacturapiURL(config.FacturapiURL))
	}
	invoices := cfdi.NewService(serviceOpts...)

	s := &Server{
		config:      config,
		router:      router,
		logger:      log,
		fetcher:     fetcher,
		invoices:    invoices,
		credentials: config.Credentials,
		dispatcher: dispatch.New(
			dispatch.WithFetcher(fetcher),
			dispatch.WithCFDIService(invoices),
			dispatch.WithCredentials(config.Credentials),
			dispatch.WithLogger(log),
		),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/health/upstream", s.handleUpstreamHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		rfcGroup := v1.Group("/rfc")
		rfcGroup.POST("/validate", s.handleRFC(dispatch.OpValidate))
		rfcGroup.POST("/format", s.handleRFC(dispatch.OpFormat))
		rfcGroup.POST("/clean", s.handleRFC(dispatch.OpClean))

		indicators := v1.Group("/indicators")
		indicators.GET("/udi", s.handleUDI)
		indicators.GET("/usd", s.handleExchangeRate(string(model.IndicatorUSD)))
		indicators.GET("/eur", s.handleExchangeRate(string(model.IndicatorEUR)))
		indicators.GET("/rate/:currency", s.handleExchangeRate(""))
		indicators.POST("/udi-to-pesos", s.handleConvert(model.DirectionUDIToPesos))
		indicators.POST("/pesos-to-udi", s.handleConvert(model.DirectionPesosToUDI))

		invoices := v1.Group("/cfdi")
		invoices.POST("/invoice", s.handleIssue(model.OperationInvoice))
		invoices.POST("/credit-note", s.handleIssue(model.OperationCreditNote))
		invoices.GET("/invoices/:id/pdf", s.handleDownloadPDF)

		// Batch endpoint
		v1.POST("/execute", s.handleExecute)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info("Starting server", zap.String("address", s.config.Address))
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleUpstreamHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), indicatorTimeout)
	defer cancel()

	if err := s.fetcher.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleRFC(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RFCRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
			return
		}

		switch operation {
		case dispatch.OpValidate:
			c.JSON(http.StatusOK, rfc.Classify(req.RFC))
		case dispatch.OpFormat:
			c.JSON(http.StatusOK, dispatch.NormalizedRFC{RFC: rfc.Format(req.RFC)})
		default:
			c.JSON(http.StatusOK, dispatch.NormalizedRFC{RFC: rfc.Clean(req.RFC)})
		}
	}
}

func (s *Server) handleUDI(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), indicatorTimeout)
	defer cancel()

	c.JSON(http.StatusOK, s.fetcher.UDI(ctx))
}

// handleExchangeRate serves a fixed currency, or the :currency path
// parameter when currency is empty
func (s *Server) handleExchangeRate(currency string) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := currency
		if code == "" {
			code = c.Param("currency")
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), indicatorTimeout)
		defer cancel()

		c.JSON(http.StatusOK, s.fetcher.ExchangeRate(ctx, code))
	}
}

func (s *Server) handleConvert(direction model.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
			return
		}
		if req.Amount == nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "amount is required"})
			return
		}
		if req.Amount.IsNegative() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "amount must not be negative"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), indicatorTimeout)
		defer cancel()

		var (
			result model.ConversionResult
			err    error
		)
		if direction == model.DirectionUDIToPesos {
			result, err = s.fetcher.ConvertUDIToPesos(ctx, *req.Amount)
		} else {
			result, err = s.fetcher.ConvertPesosToUDI(ctx, *req.Amount)
		}
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleIssue(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params cfdi.Params
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), issueTimeout)
		defer cancel()

		resp, err := s.invoices.Issue(ctx, s.credentials, operation, params)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	}
}

func (s *Server) handleDownloadPDF(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), issueTimeout)
	defer cancel()

	doc, err := s.invoices.DownloadPDF(ctx, s.credentials, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("X-PDF-Pages", strconv.Itoa(doc.Pages))
	c.Data(http.StatusOK, "application/pdf", doc.Content)
}

func (s *Server) handleExecute(c *gin.Context) {
	var batch dispatch.Batch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid batch document", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), issueTimeout)
	defer cancel()

	results, err := s.dispatcher.Run(ctx, batch)
	if err != nil {
		var rowErr *model.RowError
		if errors.As(err, &rowErr) {
			logger.FromContext(c.Request.Context()).Warn("Batch aborted",
				zap.Int("row", rowErr.Row),
				zap.Error(rowErr.Cause))
			c.JSON(http.StatusUnprocessableEntity, ExecuteResponse{
				Results: results,
				Error:   err.Error(),
				Row:     rowErr.Row,
			})
			return
		}
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExecuteResponse{Results: results})
}

// respondError maps domain errors to HTTP status codes
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("Request failed", zap.Error(err))
	}

	resp := ErrorResponse{Error: err.Error()}
	var subErr *model.SubmissionError
	if errors.As(err, &subErr) && subErr.Body != "" {
		resp.Details = subErr.Body
	}
	c.JSON(status, resp)
}

func statusFor(err error) int {
	var (
		cfgErr         *model.ConfigurationError
		unsupportedErr *model.UnsupportedProviderError
		paramErr       *model.ParamError
		subErr         *model.SubmissionError
	)

	switch {
	case errors.As(err, &cfgErr), errors.As(err, &unsupportedErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &paramErr):
		return http.StatusBadRequest
	case errors.As(err, &subErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
