package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) TestRegistersCollectors() {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RegenerationStarted()
	m.Derived(TriggerRaw)

	families, err := reg.Gather()
	suite.NoError(err)
	suite.NotEmpty(families)

	suite.Equal(1.0, testutil.ToFloat64(m.Regenerations))
	suite.Equal(1.0, testutil.ToFloat64(m.Loading))
	suite.Equal(1.0, testutil.ToFloat64(m.Derivations.WithLabelValues(TriggerRaw)))
	suite.Equal(0.0, testutil.ToFloat64(m.Derivations.WithLabelValues(TriggerCurrency)))
}

func (suite *MetricsTestSuite) TestFetchAndLoading() {
	m := New(nil)

	m.RegenerationStarted()
	m.FetchFinished(10*time.Millisecond, nil)
	m.FetchFinished(10*time.Millisecond, errors.New("boom"))
	m.StaleDiscarded()
	m.LoadingDone()

	suite.Equal(1.0, testutil.ToFloat64(m.FetchErrors))
	suite.Equal(1.0, testutil.ToFloat64(m.StaleDiscards))
	suite.Equal(0.0, testutil.ToFloat64(m.Loading))
}

func (suite *MetricsTestSuite) TestSubscribers() {
	m := New(nil)

	m.SubscriberAdded()
	m.SubscriberAdded()
	m.SubscriberRemoved()

	suite.Equal(1.0, testutil.ToFloat64(m.Subscribers))
}

func (suite *MetricsTestSuite) TestNilMetricsIsNoop() {
	var m *Metrics

	suite.NotPanics(func() {
		m.RegenerationStarted()
		m.StaleDiscarded()
		m.FetchFinished(time.Second, nil)
		m.LoadingDone()
		m.Derived(TriggerCurrency)
		m.SubscriberAdded()
		m.SubscriberRemoved()
	})
}

func (suite *MetricsTestSuite) TestDoubleRegistrationPanics() {
	reg := prometheus.NewRegistry()
	New(reg)

	suite.Panics(func() { New(reg) })
}
