// Package metrics exposes Prometheus collectors for matches and pairing.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "h2h"

// Match outcomes.
const (
	OutcomeWin          = "win"
	OutcomeDraw         = "draw"
	OutcomeDisconnected = "disconnected"
	OutcomeAborted      = "aborted"
)

// Round settle triggers.
const (
	TriggerAllAnswered = "all_answered"
	TriggerTimeout     = "timeout"
)

// Persistence results.
const (
	PersistOK      = "ok"
	PersistFailed  = "failed"
	PersistSkipped = "skipped_guest"
)

type Metrics struct {
	activeMatches prometheus.Gauge
	matches       *prometheus.CounterVec
	rounds        *prometheus.CounterVec
	answers       *prometheus.CounterVec
	persistence   *prometheus.CounterVec
	queueLength   prometheus.Gauge
	liveRooms     prometheus.Gauge
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		activeMatches: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_matches",
			Help:      "Matches currently held by the engine.",
		}),
		matches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_ended_total",
			Help:      "Matches removed from the engine, by outcome.",
		}, []string{"outcome"}),
		rounds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_settled_total",
			Help:      "Settled rounds, by what triggered settlement.",
		}, []string{"trigger"}),
		answers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Accepted answers, by correctness.",
		}, []string{"correct"}),
		persistence: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_persist_total",
			Help:      "Finished match persistence attempts, by result.",
		}, []string{"result"}),
		queueLength: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Connections waiting in the open queue.",
		}),
		liveRooms: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "private_rooms",
			Help:      "Private rooms awaiting a second player.",
		}),
	}
}

func (m *Metrics) MatchStarted() {
	if m == nil {
		return
	}
	m.activeMatches.Inc()
}

func (m *Metrics) MatchEnded(outcome string) {
	if m == nil {
		return
	}
	m.activeMatches.Dec()
	m.matches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RoundSettled(trigger string) {
	if m == nil {
		return
	}
	m.rounds.WithLabelValues(trigger).Inc()
}

func (m *Metrics) AnswerRecorded(correct bool) {
	if m == nil {
		return
	}
	label := "false"
	if correct {
		label = "true"
	}
	m.answers.WithLabelValues(label).Inc()
}

func (m *Metrics) Persisted(result string) {
	if m == nil {
		return
	}
	m.persistence.WithLabelValues(result).Inc()
}

func (m *Metrics) SetQueueLength(n int) {
	if m == nil {
		return
	}
	m.queueLength.Set(float64(n))
}

func (m *Metrics) SetRooms(n int) {
	if m == nil {
		return
	}
	m.liveRooms.Set(float64(n))
}
