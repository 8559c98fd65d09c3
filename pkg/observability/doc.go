/*
Package observability turns planner lifecycle events into metrics and logs.

Metrics registers Prometheus collectors and exposes LifecycleHooks that feed
them during the search; Observe records the outcome of each planning call.
LogHooks writes the same events as structured slog records, and Compose fans
one event stream out to several hook sets.
*/
package observability
