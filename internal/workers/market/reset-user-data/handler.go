// internal/workers/market/reset-user-data/handler.go
package resetuserdata

import (
	"context"

	"marketpulse/internal/common/camunda"
	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/validation"
	"marketpulse/internal/datareset"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "reset-user-data"
)

var inputSchema = validation.MustValidator(validation.ResetRequestSchema)

// Resetter clears one user's data.
type Resetter interface {
	Reset(ctx context.Context, userID string) (*datareset.Outcome, error)
}

type Handler struct {
	config   *Config
	resetter Resetter
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, resetter Resetter, errHandler *apperrors.ErrorHandler, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		resetter: resetter,
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

	userID, _ := vars["userId"].(string)
	return h.Execute(ctx, &Input{UserID: userID})
}

// Execute resets the user named by input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	outcome, err := h.resetter.Reset(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &Output{Reset: &ResetResult{
		Success: true,
		Message: datareset.SuccessMessage,
		Deleted: outcome.Deleted,
	}}, nil
}
