package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	tcp "github.com/tevino/tcp-oneshot"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DaemonConfig is only used for options specific to daemon mode.
// Use CLI arguments for options that are common between CLI/Daemon.
type DaemonConfig struct {
	RunAddress   string   `yaml:"run_address"`
	SendInterval uint32   `yaml:"send_interval"`
	Targets      []Target `yaml:"targets"`
}

// Target is a destination and the payload sent to it on every tick.
type Target struct {
	Address string `yaml:"address"`
	Payload string `yaml:"payload"`
}

const (
	defaultRunAddress   = ":9100"
	defaultSendInterval = 10
)

func parseConfigFile(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open config file")
	}
	var settings DaemonConfig
	if err = yaml.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}
	if settings.RunAddress == "" {
		settings.RunAddress = defaultRunAddress
	}
	if settings.SendInterval == 0 {
		settings.SendInterval = defaultSendInterval
	}
	if len(settings.Targets) == 0 {
		return nil, errors.Errorf("%s: no targets configured", path)
	}

	// Validate addresses.
	for _, target := range settings.Targets {
		if _, _, err := tcp.SplitHostPort(target.Address); err != nil {
			return nil, errors.Wrapf(err, "invalid target in %s", path)
		}
	}
	return &settings, nil
}

// Daemon periodically sends the configured payloads and exports metrics.
type Daemon struct {
	prometheus struct {
		registry           *prometheus.Registry
		sendDurationMetric *prometheus.GaugeVec
		errorCountMetric   *prometheus.CounterVec
		sentBytesMetric    *prometheus.CounterVec
	}
	config *DaemonConfig
	sender *tcp.Sender
	logger *zap.Logger
}

// NewDaemon creates a Daemon with its own metrics registry.
func NewDaemon(config *DaemonConfig, sender *tcp.Sender, logger *zap.Logger) *Daemon {
	d := &Daemon{
		config: config,
		sender: sender,
		logger: logger.Named("daemon"),
	}

	d.prometheus.registry = prometheus.NewRegistry()
	d.prometheus.sendDurationMetric = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tcpsend_duration_ms",
			Help: "Duration of the last one-shot send in ms, partitioned by destination address.",
		},
		[]string{
			// Which TCP address was sent to
			"destination",
		},
	)
	d.prometheus.errorCountMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcpsend_error_count",
			Help: "Number of failed sends, partitioned by error type, error class and destination address.",
		},
		[]string{
			// What type of error
			"error_type",
			// Errno-like class of the error
			"error_class",
			// Which TCP address was sent to
			"destination",
		},
	)
	d.prometheus.sentBytesMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcpsend_bytes_total",
			Help: "Number of payload bytes fully sent, partitioned by destination address.",
		},
		[]string{"destination"},
	)
	d.prometheus.registry.MustRegister(d.prometheus.sendDurationMetric)
	d.prometheus.registry.MustRegister(d.prometheus.errorCountMetric)
	d.prometheus.registry.MustRegister(d.prometheus.sentBytesMetric)
	return d
}

// Handler serves the metrics of this daemon.
func (d *Daemon) Handler() http.Handler {
	return promhttp.HandlerFor(
		d.prometheus.registry,
		promhttp.HandlerOpts{Registry: d.prometheus.registry},
	)
}

// RunOnce sends to every configured target once, one after another.
func (d *Daemon) RunOnce(ctx context.Context) {
	for _, target := range d.config.Targets {
		if ctx.Err() != nil {
			d.logger.Info("stopping running send")
			return
		}
		payload := []byte(target.Payload)
		startedAt := time.Now()
		err := d.sender.SendAddr(ctx, target.Address, payload)
		duration := time.Since(startedAt)

		d.prometheus.sendDurationMetric.
			WithLabelValues(target.Address).Set(float64(duration.Milliseconds()))
		if err != nil {
			_, errType := classifyErr(err)
			d.prometheus.errorCountMetric.
				WithLabelValues(errType, errclass.New(err), target.Address).Inc()
			d.logger.Warn("send failed",
				zap.String("destination", target.Address),
				zap.String("errorType", errType),
				zap.Error(err),
			)
			continue
		}
		d.prometheus.sentBytesMetric.WithLabelValues(target.Address).Add(float64(len(payload)))
		d.logger.Debug("sent",
			zap.String("destination", target.Address),
			zap.Int("bytes", len(payload)),
			zap.Duration("duration", duration),
		)
	}
}

// Run serves metrics and sends on every interval until ctx is done.
// NOTE: the next round won't start unless the previous one has finished.
func (d *Daemon) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.Handler())
	srv := &http.Server{Addr: d.config.RunAddress, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		d.logger.Info("starting metrics server",
			zap.String("address", d.config.RunAddress),
			zap.String("path", "/metrics"),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	ticker := time.NewTicker(time.Duration(d.config.SendInterval) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("quitting")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err, ok := <-serveErr:
			if ok {
				return errors.Wrap(err, "failed to start HTTP server")
			}
			serveErr = nil
		case <-ticker.C:
			d.logger.Debug("new tick, sending to all targets again")
			d.RunOnce(ctx)
		}
	}
}

// Run the program in Daemon Mode.
func daemonMode(ctx context.Context, conf *Config, sender *tcp.Sender, logger *zap.Logger) int {
	config, err := parseConfigFile(conf.ConfigFile)
	if err != nil {
		logger.Error("invalid daemon config", zap.Error(err))
		return 2
	}
	logger.Info("parsed config", zap.String("path", conf.ConfigFile), zap.Int("targets", len(config.Targets)))
	if err := NewDaemon(config, sender, logger).Run(ctx); err != nil {
		logger.Error("daemon stopped", zap.Error(err))
		return 1
	}
	return 0
}
