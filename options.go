package ipscore

// Options configures a Store at creation.
//
// Today options primarily exist to avoid exploding the API surface;
// every field has a working default.
type Options struct {
	// AdaptiveLocks selects sync.Mutex for the per-block write locks and
	// the allocation stripe pool instead of the default spinlock. Prefer
	// this on virtualized hosts, where a vCPU preempted while spinning
	// wastes its whole slice.
	AdaptiveLocks bool

	// Logger receives lifecycle and maintenance logs. Nil means no
	// logging.
	Logger *Logger

	// Metrics receives maintenance-operation metrics. Nil disables
	// collection.
	Metrics MetricsCollector
}

// Option configures Store creation.
type Option func(*Options)

// WithAdaptiveLocks switches block and allocation locks from spinlocks to
// adaptive mutexes. The choice is fixed for the lifetime of the store and
// never appears on the data path.
func WithAdaptiveLocks() Option {
	return func(o *Options) {
		o.AdaptiveLocks = true
	}
}

// WithLogger configures a structured logger for operation tracing.
func WithLogger(l *Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring.
//
// Example with BasicMetricsCollector:
//
//	metrics := &ipscore.BasicMetricsCollector{}
//	store, _ := ipscore.New(ipscore.WithMetricsCollector(metrics))
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *Options) {
		o.Metrics = mc
	}
}
