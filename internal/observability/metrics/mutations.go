package metrics

import (
	"time"

	obserrors "github.com/jobhub/ui-api/internal/observability/errors"
	"github.com/jobhub/ui-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// MutationMetric captures one settled mutation for metric emission.
type MutationMetric struct {
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitMutationOutcome emits standardised mutation outcome metrics.
func EmitMutationOutcome(sink statsd.Sink, in MutationMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("mutation.outcome", 1, tags)

	if in.Duration > 0 {
		sink.Timing("mutation.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
