/*
Package metrics records Prometheus metrics for the HTTP surface and the
provider pipeline.

Collector registers its vectors through promauto on the supplied Registerer,
so tests can isolate themselves with a fresh registry. The stage metrics
carry the error classification as a label, which keeps validation rejections
distinguishable from provider outages on a dashboard. Retry counts are fed
in through the provider clients' OnRetry hooks.
*/
package metrics
