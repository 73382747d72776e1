package buzzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "buzzerd",
		Subsystem: "buzzer",
		Name:      "state",
		Help:      "1 for the state the buzzer pin is currently in",
	}, []string{"state"})

	initAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "buzzerd",
		Subsystem: "buzzer",
		Name:      "init_attempts_total",
		Help:      "Pin initialization attempts made by the startup retry loop",
	}, []string{"result"})

	driverFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "buzzerd",
		Subsystem: "buzzer",
		Name:      "driver_faults_total",
		Help:      "GPIO driver failures per operation",
	}, []string{"op"})

	patternsPlayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buzzerd",
		Subsystem: "buzzer",
		Name:      "patterns_played_total",
		Help:      "Beep patterns played to completion",
	})

	requestsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buzzerd",
		Subsystem: "buzzer",
		Name:      "requests_dropped_total",
		Help:      "Beep requests rejected because the queue was full",
	})
)

func setStateMetric(s State) {
	for _, st := range []State{Uninitialized, Ready, Failed} {
		v := 0.0
		if st == s {
			v = 1
		}
		stateGauge.WithLabelValues(st.String()).Set(v)
	}
}
