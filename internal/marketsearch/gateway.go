// Package marketsearch turns a brand and a search intent into one call to the
// external search provider and normalizes what comes back.
package marketsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"marketpulse/internal/common/config"
	apperrors "marketpulse/internal/common/errors"
	httpclient "marketpulse/internal/common/http"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/metrics"
	"marketpulse/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultBaseURL     = "https://api.tavily.com/search"
	defaultSearchDepth = "advanced"
	defaultMaxResults  = 5
	defaultTimeout     = 10 * time.Second

	// maxErrorBody bounds how much of a failed response is kept for logs.
	maxErrorBody = 64 << 10
)

// Config is the gateway's view of the search settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	SearchDepth string
	MaxResults  int
	Vocabulary  Vocabulary
}

// ConfigFrom converts the loaded search section.
func ConfigFrom(cfg config.SearchConfig) Config {
	return Config{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Timeout:     config.GetDuration(cfg.Timeout),
		SearchDepth: cfg.SearchDepth,
		MaxResults:  cfg.MaxResults,
		Vocabulary: Vocabulary{
			Industry: cfg.Vocabulary.Industry,
			Region:   cfg.Vocabulary.Region,
			Year:     cfg.Vocabulary.Year,
		},
	}
}

// Gateway executes searches. It keeps no per-call state and is safe for
// concurrent use.
type Gateway struct {
	config  Config
	client  *httpclient.Client
	builder QueryBuilder
	logger  logger.Logger
}

func NewGateway(cfg Config, log logger.Logger) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.SearchDepth == "" {
		cfg.SearchDepth = defaultSearchDepth
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Gateway{
		config:  cfg,
		client:  httpclient.NewClient(cfg.Timeout),
		builder: NewQueryBuilder(cfg.Vocabulary),
		logger:  log.Named("market-search"),
	}
}

// Search issues exactly one provider call. Failures are typed:
// ConfigError, ValidationError, TimeoutError, TransportError,
// UpstreamHTTPError or UpstreamParseError.
func (g *Gateway) Search(ctx context.Context, req SearchRequest) (result *SearchResult, err error) {
	if g.config.APIKey == "" {
		return nil, &apperrors.ConfigError{Key: "search.api_key", EnvVar: "SEARCH_API_KEY"}
	}
	if blank(req.Subject) {
		return nil, &apperrors.ValidationError{Field: "brand", Message: "must not be empty"}
	}

	query := g.builder.Build(req.Subject, req.Intent)
	g.logger.Info("searching", map[string]interface{}{
		"query":  query,
		"intent": string(req.Intent),
	})

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "marketsearch.Search",
		attribute.String("search.intent", string(req.Intent)),
	)
	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues(intentLabel(req.Intent)).Observe(time.Since(start).Seconds())
		metrics.SearchRequests.WithLabelValues(outcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	resp, err := g.client.PostJSON(ctx, g.config.BaseURL, providerRequest{
		APIKey:            g.config.APIKey,
		Query:             query,
		SearchDepth:       g.config.SearchDepth,
		IncludeAnswer:     true,
		IncludeRawContent: false,
		MaxResults:        g.config.MaxResults,
		IncludeDomains:    []string{},
		ExcludeDomains:    []string{},
	})
	if err != nil {
		if tErr := apperrors.AsTimeout("market search", err); tErr != nil {
			return nil, tErr
		}
		return nil, &apperrors.TransportError{Service: "search provider", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		g.logger.Warn("search provider returned an error", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(raw),
		})
		return nil, &apperrors.UpstreamHTTPError{Status: resp.StatusCode, Body: string(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if tErr := apperrors.AsTimeout("market search", err); tErr != nil {
			return nil, tErr
		}
		return nil, &apperrors.TransportError{Service: "search provider", Cause: err}
	}

	var decoded providerResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &apperrors.UpstreamParseError{Cause: fmt.Errorf("decode search response: %w", err)}
	}

	result = decoded.normalize()
	g.logger.Info("search completed", map[string]interface{}{
		"query":       query,
		"resultCount": len(result.Sources),
	})
	return result, nil
}

func outcome(err error) string {
	switch apperrors.Classify(err) {
	case "":
		return "ok"
	case apperrors.ErrCodeUpstreamHTTP:
		return "http_error"
	case apperrors.ErrCodeUpstreamParse:
		return "parse_error"
	case apperrors.ErrCodeUpstreamTimeout, apperrors.ErrCodeCancelled:
		return "timeout"
	default:
		return "transport_error"
	}
}

func intentLabel(i Intent) string {
	if i.Valid() {
		return string(i)
	}
	return string(IntentGeneral)
}
