// internal/workers/market/generate-sample-data/handler.go
package generatesampledata

import (
	"context"

	"marketpulse/internal/common/camunda"
	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/validation"
	"marketpulse/internal/sampledata"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-sample-data"
)

var inputSchema = validation.MustValidator(validation.SampleDataRequestSchema)

// Generator seeds one user's collections.
type Generator interface {
	Generate(ctx context.Context, userID, businessName string) (*sampledata.Outcome, error)
}

type Handler struct {
	config    *Config
	generator Generator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, generator Generator, errHandler *apperrors.ErrorHandler, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		errors:    errHandler,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

	input := &Input{}
	input.UserID, _ = vars["userId"].(string)
	input.BusinessName, _ = vars["businessName"].(string)
	return h.Execute(ctx, input)
}

// Execute seeds the user named by input, or refreshes their personas.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	outcome, err := h.generator.Generate(ctx, input.UserID, input.BusinessName)
	if err != nil {
		return nil, err
	}
	return &Output{SampleData: &SampleDataResult{
		Success: true,
		Message: outcome.Message,
		Seeded:  outcome.Seeded,
		Updated: outcome.Updated,
	}}, nil
}
