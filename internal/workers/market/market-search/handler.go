// internal/workers/market/market-search/handler.go
package marketsearchworker

import (
	"context"

	"marketpulse/internal/common/camunda"
	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/validation"
	"marketpulse/internal/marketsearch"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "market-search"
)

var inputSchema = validation.MustValidator(validation.SearchRequestSchema)

// Searcher runs one market search.
type Searcher interface {
	Search(ctx context.Context, req marketsearch.SearchRequest) (*marketsearch.SearchResult, error)
}

type Handler struct {
	config   *Config
	searcher Searcher
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, searcher Searcher, errHandler *apperrors.ErrorHandler, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		searcher: searcher,
		errors:   errHandler,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.executeJob(ctx, job)
	if err != nil {
		h.errors.HandleError(ctx, err, TaskType)
		camunda.ThrowError(client, job, err, h.logger)
		return
	}

	camunda.CompleteJob(client, job, output, h.logger)
}

func (h *Handler) executeJob(ctx context.Context, job entities.Job) (*Output, error) {
	vars, err := camunda.Variables(job)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, vars)
}

func (h *Handler) execute(ctx context.Context, vars map[string]interface{}) (*Output, error) {
	result, err := inputSchema.ValidateInput(vars)
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "variables", Message: "must be a JSON object"}
	}
	if err := result.AsError(); err != nil {
		return nil, err
	}

	brand, _ := vars["brand"].(string)
	searchType, _ := vars["searchType"].(string)
	return h.Execute(ctx, &Input{Brand: brand, SearchType: searchType})
}

// Execute runs the search for already decoded input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.searcher.Search(ctx, marketsearch.SearchRequest{
		Subject: input.Brand,
		Intent:  marketsearch.Intent(input.SearchType),
	})
	if err != nil {
		return nil, err
	}
	return &Output{MarketSearch: res}, nil
}
