// Package metrics records build and stage metrics.
//
// Components receive a Recorder; NoopRecorder is the default. PrometheusRecorder
// collects into its own registry, which can be written in the Prometheus text
// format for the node_exporter textfile collector:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	builder := build.New(cfg, build.WithRecorder(rec))
//	...
//	_ = rec.WriteTextfile("/var/lib/node_exporter/blogbuilder.prom")
package metrics
