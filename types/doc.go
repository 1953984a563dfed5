// Package types defines the shared data model of the recordai service:
// the request payloads handed in by the controller layer and the unified
// error type used across all provider clients and pipelines.
package types
