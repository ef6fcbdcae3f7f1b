package rules

import (
	"context"
	"errors"
	"log/slog"
)

// Step is one unit of work invoked by the host rule engine
type Step interface {
	Name() string
	Execute(ctx context.Context, rc *Context) error
}

// Classifier maps a step failure to an error class
type Classifier func(error) ErrorClass

// Run executes steps in order and stops at the first failure, which is
// returned as a *StepError. classify may be nil.
func Run(ctx context.Context, rc *Context, logger *slog.Logger, classify Classifier, steps ...Step) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("executing step", slog.String("step", s.Name()))
		if err := s.Execute(ctx, rc); err != nil {
			se := AsStepError(s.Name(), err, classify)
			logger.Error("step failed",
				slog.String("step", se.Step),
				slog.String("class", se.Class.String()),
				slog.String("error", se.Err.Error()))
			return se
		}
	}
	return nil
}

// AsStepError wraps err for the host unless it already is a *StepError
func AsStepError(step string, err error, classify Classifier) *StepError {
	var se *StepError
	if errors.As(err, &se) {
		return se
	}
	se = &StepError{Step: step, Err: err}
	if classify != nil {
		se.Class = classify(err)
	}
	return se
}
