// internal/common/errors/handler.go
package errors

import (
	"context"
	"fmt"

	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/metrics"
	"marketpulse/internal/common/notify"
)

// FallbackMessage is shown when a failure carries no usable message.
const FallbackMessage = "An unexpected error occurred"

// ErrorHandler is the single funnel for failures: every handled failure turns
// into exactly one notification and one error-level log entry.
type ErrorHandler struct {
	logger   logger.Logger
	notifier notify.Notifier
}

func NewErrorHandler(log logger.Logger, notifier notify.Notifier) *ErrorHandler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ErrorHandler{logger: log, notifier: notifier}
}

// HandleError reports failure under contextName. failure is usually an
// error; any other value (a recovered panic, nil) gets the fallback message.
func (h *ErrorHandler) HandleError(ctx context.Context, failure any, contextName string) {
	message, detail := describe(failure)

	title := "Error"
	logContext := "unknown context"
	if contextName != "" {
		title = fmt.Sprintf("Error in %s", contextName)
		logContext = contextName
	}

	if err := h.notifier.Notify(ctx, notify.NewError(title, message)); err != nil {
		h.logger.Named(logContext).Warn("notification not delivered", map[string]interface{}{
			"error": err.Error(),
		})
	}

	h.logger.Named(logContext).Error(message, map[string]interface{}{
		"error": detail,
	})

	metrics.ErrorsHandled.WithLabelValues(logContext).Inc()
}

// Message returns the user-facing text HandleError would show for failure.
func Message(failure any) string {
	message, _ := describe(failure)
	return message
}

func describe(failure any) (message, detail string) {
	if err, ok := failure.(error); ok && err != nil {
		return err.Error(), fmt.Sprintf("%+v", err)
	}
	return FallbackMessage, fmt.Sprint(failure)
}

// HandleAsync runs op and hands any failure, including a panic, to
// h.HandleError. It returns op's value and true on success, or the zero value
// and false after the failure has been reported.
func HandleAsync[T any](ctx context.Context, h *ErrorHandler, op func(context.Context) (T, error), contextName string) (value T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.HandleError(ctx, r, contextName)
			var zero T
			value, ok = zero, false
		}
	}()

	value, err := op(ctx)
	if err != nil {
		h.HandleError(ctx, err, contextName)
		var zero T
		return zero, false
	}
	return value, true
}
