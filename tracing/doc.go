// Package tracing wraps OpenTelemetry so that the orchestration engine can
// emit execution, branch and task spans without importing the SDK directly.
// Spans are no-ops until Init or InitWithExporter installs a provider.
package tracing
