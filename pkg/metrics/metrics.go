// Package metrics exposes the simulation's Prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel    = "kind"
	typeLabel    = "type"
	fromLabel    = "from"
	toLabel      = "to"
	outcomeLabel = "outcome"
	reasonLabel  = "reason"
)

var (
	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbreak_frame_duration_seconds",
		Help:    "The time to simulate one frame.",
		Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
	})

	frames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbreak_frames_total",
		Help: "The number of simulated frames.",
	})

	contacts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbreak_contacts_total",
		Help: "The number of resolved contacts.",
	}, []string{typeLabel})

	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbreak_transitions_total",
		Help: "The number of agents that changed kind.",
	}, []string{fromLabel, toLabel})

	population = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "outbreak_population",
		Help: "The number of agents of each kind.",
	}, []string{kindLabel})

	treeExpansions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbreak_tree_expansions_total",
		Help: "The number of times the spatial index root grew.",
	})

	treeNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "outbreak_tree_nodes",
		Help: "The number of live nodes in the spatial index.",
	})

	rounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbreak_rounds_total",
		Help: "The number of finished rounds.",
	}, []string{outcomeLabel})

	spectators = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "outbreak_spectators",
		Help: "The number of connected spectators.",
	})

	snapshotBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbreak_snapshot_bytes_total",
		Help: "The number of snapshot bytes sent to spectators.",
	})

	sendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbreak_send_errors_total",
		Help: "The errors that occurred while sending snapshots.",
	}, []string{reasonLabel})
)

// ObserveFrame records one simulated frame.
func ObserveFrame(d time.Duration) {
	frames.Inc()
	frameDuration.Observe(d.Seconds())
}

// CountContacts adds n resolved contacts of the given type ("dynamic" or
// "static").
func CountContacts(contactType string, n int) {
	if n == 0 {
		return
	}
	contacts.With(prometheus.Labels{typeLabel: contactType}).Add(float64(n))
}

// CountTransition records an agent changing kind.
func CountTransition(from, to string) {
	transitions.With(prometheus.Labels{fromLabel: from, toLabel: to}).Inc()
}

// SetPopulation sets the number of agents of kind.
func SetPopulation(kind string, n int) {
	population.With(prometheus.Labels{kindLabel: kind}).Set(float64(n))
}

// CountExpansion records a root expansion.
func CountExpansion() {
	treeExpansions.Inc()
}

// SetTreeNodes sets the live node count of the spatial index.
func SetTreeNodes(n int) {
	treeNodes.Set(float64(n))
}

// CountRound records a finished round.
func CountRound(outcome string) {
	rounds.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

func SpectatorConnected() {
	spectators.Inc()
}

func SpectatorDisconnected() {
	spectators.Dec()
}

// CountSnapshot records a snapshot of n bytes sent to one spectator.
func CountSnapshot(n int) {
	snapshotBytes.Add(float64(n))
}

// CountSendError records a failed snapshot send.
func CountSendError(reason string) {
	sendErrors.With(prometheus.Labels{reasonLabel: reason}).Inc()
}
