package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger logrus.FieldLogger
}

// NewLogUseCaseObserver writes service use-case events to logger.
func NewLogUseCaseObserver(logger logrus.FieldLogger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	fields := make(logrus.Fields, 3+len(event.Fields))
	for k, v := range event.Fields {
		fields[k] = v
	}
	fields["use_case"] = event.Name
	fields["duration_ms"] = event.Duration.Milliseconds()
	fields["success"] = event.Success

	entry := o.logger.WithFields(fields)
	if event.Err != nil {
		entry.WithError(event.Err).Error("service_use_case")
		return
	}
	entry.Info("service_use_case")
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

var tracer = otel.Tracer("github.com/alexanderramin/staffplan/internal/service")

// startUseCase opens a span for a use case. The returned func ends it and
// reports the event; call it deferred with the address of the named error.
// Fields added to the map before the call are reported too.
func startUseCase(ctx context.Context, observer UseCaseObserver, name string, fields map[string]any) (context.Context, func(*error)) {
	startedAt := time.Now().UTC()
	ctx, span := tracer.Start(ctx, name)
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		for k, v := range fields {
			span.SetAttributes(attribute.String(k, fmt.Sprint(v)))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}
}
