package telemetry

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Gunvolt24/movies/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Gunvolt24/movies"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Observation — именованная операция с тегами.
// Low — теги с ограниченным набором значений: идут и в спан, и в метрику.
// High — теги с неограниченным набором значений (id и т.п.): только в спан.
type Observation struct {
	Name string
	Low  []attribute.KeyValue
	High []attribute.KeyValue
}

// Tracer — трейсер сервиса из глобального провайдера.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Observe — выполняет fn внутри спана o.Name и пишет длительность в
// observation_duration_seconds. Ошибка fn записывается в спан и возвращается как есть.
func Observe[T any](
	ctx context.Context,
	tracer trace.Tracer,
	o Observation,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	if tracer == nil {
		tracer = Tracer()
	}

	attrs := make([]attribute.KeyValue, 0, len(o.Low)+len(o.High))
	attrs = append(attrs, o.Low...)
	attrs = append(attrs, o.High...)

	ctx, span := tracer.Start(ctx, o.Name, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	res, err := fn(ctx)

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	metrics.ObservationDuration.
		WithLabelValues(o.Name, outcome, LowCardinalityLabel(o.Low)).
		Observe(time.Since(start).Seconds())

	return res, err
}

// LowCardinalityLabel — теги в виде "k=v,k=v", отсортированные по ключу.
func LowCardinalityLabel(kvs []attribute.KeyValue) string {
	if len(kvs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
