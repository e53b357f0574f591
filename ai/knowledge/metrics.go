package knowledge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resolutionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tutormind",
	Subsystem: "knowledge",
	Name:      "resolution_outcomes_total",
	Help:      "Conflict resolution outcomes by resolution kind.",
}, []string{"resolution"})
