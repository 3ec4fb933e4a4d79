package plugins

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/linht/adrv-manager/adrv903x"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the transceiver service
type Metrics struct {
	registry *prometheus.Registry

	registerAccesses *prometheus.CounterVec // access, result
	operations       *prometheus.CounterVec // operation, result
	channelMode      *prometheus.GaugeVec   // channel
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		registerAccesses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adrv_register_accesses_total",
			Help: "Register port accesses by kind and result",
		}, []string{"access", "result"}),
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adrv_operations_total",
			Help: "Device operations by name and result kind",
		}, []string{"operation", "result"}),
		channelMode: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adrv_channel_data_format_mode",
			Help: "Last data format mode read or written per channel",
		}, []string{"channel"}),
	}
}

// Registry returns the registry backing the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOperation counts one device operation
func (m *Metrics) ObserveOperation(op string, err error) {
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
}

// ObserveMode records the data format mode of ch
func (m *Metrics) ObserveMode(ch adrv903x.Channel, mode adrv903x.DataFormatMode) {
	m.channelMode.WithLabelValues(ch.String()).Set(float64(mode))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var derr *adrv903x.Error
	if errors.As(err, &derr) {
		_, kind := errorStatus(derr)
		return kind
	}
	return "error"
}

// instrumentedPort counts every access made through the wrapped port
type instrumentedPort struct {
	adrv903x.RegisterPort
	m *Metrics
}

func (m *Metrics) wrap(p adrv903x.RegisterPort) adrv903x.RegisterPort {
	return &instrumentedPort{RegisterPort: p, m: m}
}

func (p *instrumentedPort) count(access string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.m.registerAccesses.WithLabelValues(access, result).Inc()
}

func (p *instrumentedPort) ReadField(addr, mask uint32) (uint32, error) {
	v, err := p.RegisterPort.ReadField(addr, mask)
	p.count("read_field", err)
	return v, err
}

func (p *instrumentedPort) WriteField(addr, mask, value uint32) error {
	err := p.RegisterPort.WriteField(addr, mask, value)
	p.count("write_field", err)
	return err
}

func (p *instrumentedPort) Read32(addr, mask uint32) (uint32, error) {
	v, err := p.RegisterPort.Read32(addr, mask)
	p.count("read32", err)
	return v, err
}

func (p *instrumentedPort) Write32(addr, value, mask uint32) error {
	err := p.RegisterPort.Write32(addr, value, mask)
	p.count("write32", err)
	return err
}

// MetricsPlugin exposes the collectors at /metrics
type MetricsPlugin struct {
	metrics *Metrics
}

// NewMetricsPlugin creates a new metrics plugin instance
func NewMetricsPlugin(m *Metrics) (*MetricsPlugin, error) {
	if m == nil {
		return nil, errors.New("metrics are not enabled on the transceiver")
	}
	return &MetricsPlugin{metrics: m}, nil
}

// Name returns the plugin identifier
func (p *MetricsPlugin) Name() string {
	return "metrics"
}

// RegisterRoutes adds the plugin's HTTP routes
func (p *MetricsPlugin) RegisterRoutes(app *fiber.App) {
	app.Get("/metrics", p.metrics.Handler())
}

// Shutdown performs cleanup
func (p *MetricsPlugin) Shutdown() error {
	return nil
}

func init() {
	Register("metrics", func(config interface{}) (Plugin, error) {
		t, ok := config.(*Transceiver)
		if !ok || t == nil {
			return nil, errors.New("invalid config for metrics plugin")
		}
		return NewMetricsPlugin(t.metrics)
	})
}
