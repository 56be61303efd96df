// Package api exposes the search, reset and sample data operations over HTTP.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/datareset"
	"marketpulse/internal/marketsearch"
	"marketpulse/internal/sampledata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SearchPath     = "/functions/v1/market-search"
	ResetPath      = "/functions/v1/reset-sample-data"
	SampleDataPath = "/functions/v1/generate-sample-data"
)

// Searcher runs one market search.
type Searcher interface {
	Search(ctx context.Context, req marketsearch.SearchRequest) (*marketsearch.SearchResult, error)
}

// Resetter clears one user's data.
type Resetter interface {
	Reset(ctx context.Context, userID string) (*datareset.Outcome, error)
}

// Generator seeds one user's collections with sample data.
type Generator interface {
	Generate(ctx context.Context, userID, businessName string) (*sampledata.Outcome, error)
}

// OperationRecorder counts finished operations.
type OperationRecorder interface {
	RecordOperation(ctx context.Context, operation, status string, duration time.Duration)
}

// Pinger is a dependency checked by the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Searcher     Searcher
	Resetter     Resetter
	Generator    Generator
	ErrorHandler *errors.ErrorHandler
	Logger       logger.Logger
	// Operations is optional.
	Operations OperationRecorder
	// Ready maps a dependency name to its health check.
	Ready map[string]Pinger
}

// NewRouter wires middleware, the function routes and the operational
// endpoints.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(requestID(), requestLogger(d.Logger), recovery(d.ErrorHandler))
	router.Use(cors.New(corsConfig()))

	h := newHandlers(d)

	router.POST(SearchPath, h.MarketSearch)
	router.OPTIONS(SearchPath, preflight)
	router.POST(ResetPath, h.ResetSampleData)
	router.OPTIONS(ResetPath, preflight)
	router.POST(SampleDataPath, h.GenerateSampleData)
	router.OPTIONS(SampleDataPath, preflight)

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

var allowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              allowHeaders,
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
}

// preflight answers OPTIONS requests that carry no Origin header; the CORS
// middleware answers the rest before routing.
func preflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", strings.Join(allowHeaders, ", "))
	c.Status(http.StatusOK)
}
