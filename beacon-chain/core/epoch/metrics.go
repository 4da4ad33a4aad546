package epoch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lastJustifiedEpochGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_last_justified_epoch",
		Help: "Last justified epoch of the processed state",
	})
	lastFinalizedEpochGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_last_finalized_epoch",
		Help: "Last finalized epoch of the processed state",
	})
	crosslinksFormedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_crosslinks_formed_total",
		Help: "Total number of crosslink records replaced with a winning root",
	})
	registryUpdateCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_registry_updates_total",
		Help: "Total number of validator registry rotations",
	})
	prunedAttestationsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_pruned_attestations_total",
		Help: "Total number of stale pending attestations pruned at epoch boundaries",
	})
)
