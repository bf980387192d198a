// Package server provides the exporter's HTTP surface.
//
// Routes:
//   - /metrics    Prometheus exposition of the CloudWatch collector
//   - /-/reload   POST triggers a configuration reload
//   - /-/healthy  liveness probe
//   - /-/ready    readiness probe
//   - /           minimal home page
//
// The server handles SIGINT/SIGTERM for graceful shutdown and SIGHUP as a
// reload trigger.
package server
