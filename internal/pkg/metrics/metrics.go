// Package metrics holds the process's Prometheus counters, registered at
// init so every package can record against them without a wiring step.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParserRunsTotal counts orchestrator invocations by hall and outcome
	// ("success", "no_data", "error").
	ParserRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_parser_runs_total",
		Help: "Total number of parser invocations by hall and status.",
	}, []string{"hall", "status"})

	// CacheHitsTotal counts menu cache lookups by result ("hit" or "miss").
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_cache_hits_total",
		Help: "Total number of menu cache lookups by result.",
	}, []string{"result"})

	// CoalesceJoinsTotal counts callers whose coalesced fetch was shared with
	// at least one other caller. The caller that triggered the shared fetch
	// is counted too, not only the callers that joined it.
	CoalesceJoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_coalesce_joins_total",
		Help: "Total number of requests whose coalesced fetch was shared with another request.",
	})
)
