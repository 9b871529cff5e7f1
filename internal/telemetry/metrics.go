// Package telemetry provides the Prometheus metrics of both cogs.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Captcha outcomes used as the result label.
const (
	ResultPassed   = "passed"
	ResultFailed   = "failed"
	ResultExpired  = "expired"
	ResultDeparted = "departed"
)

type Metrics struct {
	// Counters
	CaptchaChallenges prometheus.Counter
	CaptchaResults    *prometheus.CounterVec
	RoomsCreated      prometheus.Counter
	RoomsDeleted      prometheus.Counter
	RoomClaims        prometheus.Counter

	// Gauges
	CaptchaActive prometheus.Gauge
	RoomsActive   prometheus.Gauge
}

// Registers every metric on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		CaptchaChallenges: f.NewCounter(prometheus.CounterOpts{Name: "warden_captcha_challenges_total", Help: "Number of captcha challenges issued"}),
		CaptchaResults:    f.NewCounterVec(prometheus.CounterOpts{Name: "warden_captcha_results_total", Help: "Number of finished captcha challenges by result"}, []string{"result"}),
		RoomsCreated:      f.NewCounter(prometheus.CounterOpts{Name: "warden_roomer_rooms_created_total", Help: "Number of temporary voice rooms created"}),
		RoomsDeleted:      f.NewCounter(prometheus.CounterOpts{Name: "warden_roomer_rooms_deleted_total", Help: "Number of temporary voice rooms deleted"}),
		RoomClaims:        f.NewCounter(prometheus.CounterOpts{Name: "warden_roomer_claims_total", Help: "Number of successful room claims"}),
		CaptchaActive:     f.NewGauge(prometheus.GaugeOpts{Name: "warden_captcha_active_challenges", Help: "Current number of unresolved captcha challenges"}),
		RoomsActive:       f.NewGauge(prometheus.GaugeOpts{Name: "warden_roomer_active_rooms", Help: "Current number of temporary voice rooms"}),
	}
}

// Noop returns metrics registered nowhere.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) CaptchaResult(result string) {
	m.CaptchaResults.WithLabelValues(result).Inc()
}
