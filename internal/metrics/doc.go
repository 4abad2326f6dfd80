// Package metrics provides the observability hooks of the static exporter.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metric calls never need nil checks:
//
//	b := export.NewBuilder(fs, store, renderer, opts) // NoopRecorder
//	b.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// PrometheusRecorder registers its collectors on the registry it is given;
// HTTPHandler serves that registry for scraping (used by the schedule command).
package metrics
