package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMatchLifecycleCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.MatchStarted()
	m.MatchStarted()
	m.MatchEnded(OutcomeWin)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeMatches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matches.WithLabelValues(OutcomeWin)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.matches.WithLabelValues(OutcomeDraw)))
}

func TestGaugesAndLabels(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetQueueLength(3)
	m.SetRooms(2)
	m.AnswerRecorded(true)
	m.AnswerRecorded(false)
	m.AnswerRecorded(false)
	m.RoundSettled(TriggerTimeout)
	m.Persisted(PersistSkipped)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueLength))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.liveRooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.answers.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rounds.WithLabelValues(TriggerTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistence.WithLabelValues(PersistSkipped)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.MatchStarted()
		m.MatchEnded(OutcomeAborted)
		m.SetQueueLength(1)
		m.AnswerRecorded(true)
	})
}
