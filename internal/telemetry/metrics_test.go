package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisteredAndCounting(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CaptchaChallenges.Inc()
	m.CaptchaResult(ResultPassed)
	m.CaptchaResult(ResultPassed)
	m.RoomsActive.Set(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]*dto.MetricFamily{}
	for _, f := range families {
		names[f.GetName()] = f
	}

	require.Contains(t, names, "warden_captcha_results_total")
	result := names["warden_captcha_results_total"].GetMetric()[0]
	assert.Equal(t, "passed", result.GetLabel()[0].GetValue())
	assert.Equal(t, 2.0, result.GetCounter().GetValue())

	assert.Equal(t, 1.0, names["warden_captcha_challenges_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 3.0, names["warden_roomer_active_rooms"].GetMetric()[0].GetGauge().GetValue())
}

func TestNoopDoesNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		Noop()
		Noop()
	})
}
