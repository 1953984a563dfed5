// Package tlsutil centralizes TLS settings for the outbound provider clients
// (TLS 1.2+, AEAD-only cipher suites, pooled transport safe for concurrent
// reuse across requests).
package tlsutil
