package tracing

import (
	"io"
	"tenantry/common"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
	jprom "github.com/uber/jaeger-lib/metrics/prometheus"
)

// InitGlobalTracer installs a jaeger tracer configured from JAEGER_* variables as the global tracer.
// JAEGER_DISABLED=true installs a no-op tracer. Tracer metrics go to registerer when it is not nil.
// The returned closer flushes pending spans.
func InitGlobalTracer(registerer prometheus.Registerer) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = common.GetServiceName()
	}

	var factory metrics.Factory = metrics.NullFactory
	if registerer != nil {
		factory = jprom.New(jprom.WithRegisterer(registerer))
	}

	tracer, closer, err := cfg.NewTracer(
		jaegercfg.Logger(jaegerLogger{entry: common.Log.WithField("component", "jaeger")}),
		jaegercfg.Metrics(factory),
	)
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}

type jaegerLogger struct {
	entry *logrus.Entry
}

func (l jaegerLogger) Error(msg string) {
	l.entry.Error(msg)
}

func (l jaegerLogger) Infof(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l jaegerLogger) Debugf(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}
