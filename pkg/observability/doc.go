/*
Package observability turns controller lifecycle events into logs and
Prometheus metrics.

Both are plain domain.LifecycleHooks and can be combined with domain.Merge:

	metrics := observability.NewMetrics()
	prometheus.MustRegister(metrics)

	ctl, err := mln.New(engine,
		mln.WithLifecycleHooks(metrics.Hooks()),
		mln.WithLifecycleHooks(observability.LogHooks(logger)),
	)
*/
package observability
