package binvec

import (
	"log/slog"

	"github.com/hupe1980/binvec/distance"
)

type options struct {
	metric           distance.Metric
	logger           *Logger
	verbose          bool
	metricsCollector MetricsCollector
	startID          int64
	hasStartID       bool
}

func defaultOptions() options {
	return options{
		metric:           distance.MetricHamming,
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures an Index.
type Option func(*options)

// WithMetric sets the metric type of the index. The default is Hamming.
//
// The metric selects the distance oracle unless the backend implements
// DistanceOracle, and it is compared by CheckCompatibleForMerge.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithLogger configures structured logging for index operations.
// Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithVerbose enables debug logging. If no logger is configured, a text
// logger writing to stderr is created.
func WithVerbose() Option {
	return func(o *options) {
		o.verbose = true
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithStartID sets the next sequential identifier handed out by Add.
//
// By default it is derived from the backend: 0 for an empty backend,
// otherwise one past the largest stored identifier (and at least Len()).
// Restoring a snapshot uses this to keep removed ids retired.
func WithStartID(id int64) Option {
	return func(o *options) {
		o.startID = id
		o.hasStartID = true
	}
}

func (o *options) resolveLogger() *Logger {
	switch {
	case o.logger != nil:
		return o.logger
	case o.verbose:
		return NewTextLogger(slog.LevelDebug)
	default:
		return NoopLogger()
	}
}

// SearchOptions controls a single search call.
type SearchOptions struct {
	// Selector restricts candidates to its members. Nil admits every entry.
	Selector IDSelector
}

// WithSelector restricts a search to the identifiers selected by sel.
// Filtered-out entries are never returned; rows are still padded to k.
func WithSelector(sel IDSelector) func(*SearchOptions) {
	return func(o *SearchOptions) {
		o.Selector = sel
	}
}

func resolveSearchOptions(optFns []func(*SearchOptions)) SearchOptions {
	var so SearchOptions
	for _, fn := range optFns {
		fn(&so)
	}
	return so
}

// selected reports whether id passes sel. A nil selector admits every id.
func selected(sel IDSelector, id int64) bool {
	return sel == nil || sel.IsMember(id)
}
