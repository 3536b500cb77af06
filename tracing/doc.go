// Package tracing wraps OpenTelemetry so that the simulator can emit spans for
// every runtime operation and scheduler tick without importing the SDK
// directly. Spans are no-ops until Init installs a provider.
package tracing
