/*
Package observability turns painting and submission lifecycle hooks into
Prometheus metrics and structured log lines.
*/
package observability
