// Package metrics exposes the engine's prometheus surface, grounded on
// vms/platformvm/metrics.Metrics: a small interface implemented once,
// registered once, so callers never touch prometheus directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the counters/gauges/histograms the lifecycle engine reports.
type Metrics interface {
	IncSubmitted()
	IncFinishedAllSteps()
	IncRevertedTimeout()
	IncRevertedKill()
	IncRevertedMisbehaviour()
	IncInsuranceBonded()
	IncInsuranceSlashed()
	IncConfirmationAccepted()
	IncConfirmationRejected()
	SetSignalQueueDepth(n int)
	IncSignalQueueRejected()
	ObservePhaseDuration(phase string, d time.Duration)
}

type metrics struct {
	submitted              prometheus.Counter
	finishedAllSteps       prometheus.Counter
	revertedTimeout        prometheus.Counter
	revertedKill           prometheus.Counter
	revertedMisbehaviour   prometheus.Counter
	insuranceBonded        prometheus.Counter
	insuranceSlashed       prometheus.Counter
	confirmationAccepted   prometheus.Counter
	confirmationRejected   prometheus.Counter
	signalQueueDepth       prometheus.Gauge
	signalQueueRejected    prometheus.Counter
	phaseDuration          *prometheus.HistogramVec
}

// New constructs and registers a Metrics implementation on reg.
func New(namespace string, reg prometheus.Registerer) (Metrics, error) {
	m := &metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "xtx_submitted_total",
			Help: "Number of Xtx bundles admitted via setup(Requested).",
		}),
		finishedAllSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "xtx_finished_all_steps_total",
			Help: "Number of Xtx reaching FinishedAllSteps.",
		}),
		revertedTimeout: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "xtx_reverted_timeout_total",
			Help: "Number of Xtx reverted by the timeout sweep.",
		}),
		revertedKill: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "xtx_reverted_kill_total",
			Help: "Number of Xtx reverted by a kill control signal.",
		}),
		revertedMisbehaviour: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "xtx_reverted_misbehaviour_total",
			Help: "Number of Xtx reverted for misbehaviour.",
		}),
		insuranceBonded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "insurance_bonded_total",
			Help: "Number of insurance deposits bonded.",
		}),
		insuranceSlashed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "insurance_slashed_total",
			Help: "Number of insurance deposits slashed.",
		}),
		confirmationAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "confirmations_accepted_total",
			Help: "Number of SFX confirmations accepted.",
		}),
		confirmationRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "confirmations_rejected_total",
			Help: "Number of SFX confirmations rejected.",
		}),
		signalQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "signal_queue_depth",
			Help: "Current depth of the control-signal queue.",
		}),
		signalQueueRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "signal_queue_rejected_total",
			Help: "Number of signals rejected because the queue was full.",
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "phase_duration_seconds",
			Help:    "Duration of each lifecycle phase.",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
	}

	collectors := []prometheus.Collector{
		m.submitted, m.finishedAllSteps, m.revertedTimeout, m.revertedKill,
		m.revertedMisbehaviour, m.insuranceBonded, m.insuranceSlashed,
		m.confirmationAccepted, m.confirmationRejected, m.signalQueueDepth,
		m.signalQueueRejected, m.phaseDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) IncSubmitted()            { m.submitted.Inc() }
func (m *metrics) IncFinishedAllSteps()      { m.finishedAllSteps.Inc() }
func (m *metrics) IncRevertedTimeout()       { m.revertedTimeout.Inc() }
func (m *metrics) IncRevertedKill()          { m.revertedKill.Inc() }
func (m *metrics) IncRevertedMisbehaviour()  { m.revertedMisbehaviour.Inc() }
func (m *metrics) IncInsuranceBonded()       { m.insuranceBonded.Inc() }
func (m *metrics) IncInsuranceSlashed()      { m.insuranceSlashed.Inc() }
func (m *metrics) IncConfirmationAccepted()  { m.confirmationAccepted.Inc() }
func (m *metrics) IncConfirmationRejected()  { m.confirmationRejected.Inc() }
func (m *metrics) SetSignalQueueDepth(n int) { m.signalQueueDepth.Set(float64(n)) }
func (m *metrics) IncSignalQueueRejected()   { m.signalQueueRejected.Inc() }

func (m *metrics) ObservePhaseDuration(phase string, d time.Duration) {
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// NewNop returns a Metrics that records nothing, for tests that don't want
// a live registry.
func NewNop() Metrics {
	reg := prometheus.NewRegistry()
	m, err := New("circuit_nop", reg)
	if err != nil {
		panic(err)
	}
	return m
}
