package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/validation"
	"marketpulse/internal/datareset"
	"marketpulse/internal/marketsearch"
	"marketpulse/internal/sampledata"

	"github.com/gin-gonic/gin"
)

var (
	searchSchema = validation.MustValidator(validation.SearchRequestSchema)
	resetSchema  = validation.MustValidator(validation.ResetRequestSchema)
	sampleSchema = validation.MustValidator(validation.SampleDataRequestSchema)
)

// SearchType stays untyped: a missing, null or non-string value selects the
// general template.
type searchBody struct {
	Brand      string      `json:"brand"`
	SearchType interface{} `json:"searchType"`
}

type resetBody struct {
	UserID string `json:"userId"`
}

type sampleBody struct {
	UserID       string  `json:"userId"`
	BusinessName *string `json:"businessName"`
}

type handlers struct {
	searcher  Searcher
	resetter  Resetter
	generator Generator
	errors    *errors.ErrorHandler
	logger    logger.Logger
	ready     map[string]Pinger
	ops       OperationRecorder
}

func newHandlers(d Deps) *handlers {
	return &handlers{
		searcher:  d.Searcher,
		resetter:  d.Resetter,
		generator: d.Generator,
		errors:    d.ErrorHandler,
		logger:    d.Logger,
		ready:     d.Ready,
		ops:       d.Operations,
	}
}

func (h *handlers) record(ctx context.Context, operation string, start time.Time, err error) {
	if h.ops == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	h.ops.RecordOperation(ctx, operation, status, time.Since(start))
}

// MarketSearch answers 200 {answer, sources} or 500 {error} for every failure.
func (h *handlers) MarketSearch(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	result, err := h.search(ctx, c)
	h.record(ctx, "market-search", start, err)
	if err != nil {
		h.errors.HandleError(ctx, err, "market-search")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errors.Message(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) search(ctx context.Context, c *gin.Context) (*marketsearch.SearchResult, error) {
	var body searchBody
	if err := decode(c, searchSchema, &body); err != nil {
		return nil, err
	}
	return h.searcher.Search(ctx, marketsearch.SearchRequest{
		Subject: body.Brand,
		Intent:  marketsearch.IntentOf(body.SearchType),
	})
}

// ResetSampleData answers 200 {success, message} or 400 {error}.
func (h *handlers) ResetSampleData(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	_, err := h.reset(ctx, c)
	h.record(ctx, "reset-sample-data", start, err)
	if err != nil {
		h.errors.HandleError(ctx, err, "reset-sample-data")
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": datareset.SuccessMessage,
	})
}

func (h *handlers) reset(ctx context.Context, c *gin.Context) (*datareset.Outcome, error) {
	var body resetBody
	if err := decode(c, resetSchema, &body); err != nil {
		return nil, err
	}
	return h.resetter.Reset(ctx, body.UserID)
}

// GenerateSampleData answers 200 {success, message} or 400 {error}.
func (h *handlers) GenerateSampleData(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	outcome, err := h.generate(ctx, c)
	h.record(ctx, "generate-sample-data", start, err)
	if err != nil {
		h.errors.HandleError(ctx, err, "generate-sample-data")
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": outcome.Message,
	})
}

func (h *handlers) generate(ctx context.Context, c *gin.Context) (*sampledata.Outcome, error) {
	var body sampleBody
	if err := decode(c, sampleSchema, &body); err != nil {
		return nil, err
	}
	if h.generator == nil {
		return nil, &errors.ConfigError{Key: "database.postgres.url", EnvVar: "DATABASE_URL"}
	}
	businessName := ""
	if body.BusinessName != nil {
		businessName = *body.BusinessName
	}
	return h.generator.Generate(ctx, body.UserID, businessName)
}

func (h *handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "marketpulse",
	})
}

// Ready pings every registered dependency.
func (h *handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.ready))
	ready := true
	for name, p := range h.ready {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ready, "checks": checks})
}

// decode validates the raw body against schema, then unmarshals it into dst.
func decode(c *gin.Context, v *validation.Validator, dst interface{}) error {
	raw, err := c.GetRawData()
	if err != nil {
		return &errors.ValidationError{Field: "body", Message: "could not be read"}
	}

	result, err := v.ValidateJSON(raw)
	if err != nil {
		return &errors.ValidationError{Field: "body", Message: "must be a JSON object"}
	}
	if err := result.AsError(); err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return &errors.ValidationError{Field: "body", Message: "must be a JSON object"}
	}
	return nil
}
