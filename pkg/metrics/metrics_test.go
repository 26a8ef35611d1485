package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountContacts(t *testing.T) {
	c := contacts.With(prometheus.Labels{typeLabel: "static"})
	before := testutil.ToFloat64(c)

	CountContacts("static", 3)
	CountContacts("static", 0)

	assert.Equal(t, before+3, testutil.ToFloat64(c))
}

func TestCountTransition(t *testing.T) {
	c := transitions.With(prometheus.Labels{fromLabel: "human", toLabel: "zombie"})
	before := testutil.ToFloat64(c)

	CountTransition("human", "zombie")

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestGauges(t *testing.T) {
	SetPopulation("zombie", 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(population.With(prometheus.Labels{kindLabel: "zombie"})))

	SetTreeNodes(13)
	assert.Equal(t, 13.0, testutil.ToFloat64(treeNodes))

	before := testutil.ToFloat64(spectators)
	SpectatorConnected()
	SpectatorConnected()
	SpectatorDisconnected()
	assert.Equal(t, before+1, testutil.ToFloat64(spectators))
}

func TestObserveFrame(t *testing.T) {
	before := testutil.ToFloat64(frames)
	ObserveFrame(2 * time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(frames))
}
