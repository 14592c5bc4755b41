// Package metrics provides observability hooks for the rebuild and hot-update pipeline.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay optional:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	srv := devserver.New(cfg, devserver.WithRecorder(recorder))
//
// The Prometheus implementation is served on /metrics by the dev server when
// metrics are enabled in configuration.
package metrics
