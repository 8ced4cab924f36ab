package server

import (
	"time"

	"github.com/armon/go-metrics"
	metricsprom "github.com/armon/go-metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	promRegisterer = prometheus.DefaultRegisterer
	promGatherer   = prometheus.DefaultGatherer
)

func (s *Server) setupTelemetry() error {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	promSink, err := metricsprom.NewPrometheusSinkFrom(metricsprom.PrometheusOpts{
		Name:       "evm_bridge_prometheus_sink",
		Expiration: 0,
		Registerer: promRegisterer,
	})
	if err != nil {
		return err
	}

	metricsConf := metrics.DefaultConfig("evm_bridge")
	metricsConf.EnableHostname = false
	_, err = metrics.NewGlobal(metricsConf, metrics.FanoutSink{
		inm, promSink,
	})

	return err
}
