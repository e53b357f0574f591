package assemble

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assembledTokens = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tutormind",
		Subsystem: "assemble",
		Name:      "used_tokens",
		Help:      "Token accounting of assembled prompts (pre-injection).",
		Buckets:   prometheus.ExponentialBuckets(64, 2, 12),
	})

	includedMessages = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tutormind",
		Subsystem: "assemble",
		Name:      "included_messages",
		Help:      "Number of messages included in the context window.",
		Buckets:   prometheus.LinearBuckets(0, 5, 12),
	})

	injectedSources = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tutormind",
		Subsystem: "assemble",
		Name:      "injected_sources_total",
		Help:      "Total retrieved source blocks injected into prompts.",
	})
)
