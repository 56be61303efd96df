// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"marketpulse/internal/common/config"
	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// HandlerFunc is the shape Zeebe job handlers take.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// StartWorker opens a job worker for taskType. It returns nil when the worker
// is disabled in config.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler HandlerFunc, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Instrument(taskType, handler))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jobWorker
}

// Instrument tracks active jobs and job duration for taskType.
func Instrument(taskType string, handler HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()
		defer func() {
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		}()
		handler(client, job)
	}
}

// CompleteJob completes job with output as its variables.
func CompleteJob(client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
	log.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

// ThrowError raises a BPMN error on job carrying the classified code. The
// StandardError fields travel as error variables for catch events.
func ThrowError(client worker.JobClient, job entities.Job, err error, log logger.Logger) {
	std := apperrors.ToStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(job.Type, string(std.Code)).Inc()

	log.Warn("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    std.Code,
		"errorMessage": std.Message,
	})

	cmd, varErr := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(string(std.Code)).
		ErrorMessage(std.Message).
		VariablesFromMap(std.ToErrorVariables())
	if varErr != nil {
		log.Error("failed to create throw error command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  varErr.Error(),
		})
		return
	}

	if _, sendErr := cmd.Send(context.Background()); sendErr != nil {
		log.Error("failed to throw error", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
}

// Variables decodes the job's variables. Undecodable variables are a
// ValidationError so they surface as INVALID_INPUT.
func Variables(job entities.Job) (map[string]interface{}, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "variables", Message: "must be a JSON object"}
	}
	if vars == nil {
		vars = map[string]interface{}{}
	}
	return vars, nil
}
