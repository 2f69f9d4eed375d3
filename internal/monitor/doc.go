// Package monitor implements the optional HTTP endpoints for health
// checks, runtime statistics, effective configuration and Prometheus
// metrics. It is off by default and carries no core logic.
package monitor
