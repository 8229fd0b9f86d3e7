package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	tcp "github.com/tevino/tcp-oneshot"
	"go.uber.org/zap"
)

// Config contains all available options.
type Config struct {
	Addr        string
	Payload     []byte
	Timeout     time.Duration
	IOTimeout   time.Duration
	Requests    int
	Concurrency int
	Nameserver  string
	Mark        int
	Verbose     bool
	ConfigFile  string
}

func parseConfig(args []string, stdin io.Reader) (*Config, error) {
	var (
		conf        Config
		data, file  string
		timeoutMS   int
		ioTimeoutMS int
	)
	fs := pflag.NewFlagSet("tcp-send", pflag.ContinueOnError)
	fs.StringVarP(&conf.Addr, "addr", "a", "", "TCP address to send to, host:port")
	fs.StringVarP(&data, "data", "d", "", "Payload to send")
	fs.StringVarP(&file, "file", "f", "", "Read payload from file, - for stdin")
	fs.IntVarP(&timeoutMS, "timeout", "t", 3000, "Connect timeout in millisecond")
	fs.IntVar(&ioTimeoutMS, "io-timeout", int(tcp.DefaultIOTimeout/time.Millisecond), "Send/receive timeout in millisecond")
	fs.IntVarP(&conf.Requests, "requests", "n", 1, "Number of sends to perform")
	fs.IntVarP(&conf.Concurrency, "concurrency", "c", 1, "Number of sends to perform simultaneously")
	fs.StringVar(&conf.Nameserver, "nameserver", "", "Resolve hostnames with this DNS server, host:port")
	fs.IntVar(&conf.Mark, "mark", 0, "SO_MARK to set on sockets (linux only)")
	fs.BoolVarP(&conf.Verbose, "verbose", "v", false, "Print more logs e.g. error detail")
	fs.StringVar(&conf.ConfigFile, "config", "", "Run as a daemon with this YAML config")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if timeoutMS <= 0 {
		return nil, errors.Errorf("timeout must be positive, got %d", timeoutMS)
	}
	if ioTimeoutMS < 0 {
		return nil, errors.Errorf("io-timeout must not be negative, got %d", ioTimeoutMS)
	}
	conf.Timeout = time.Duration(timeoutMS) * time.Millisecond
	conf.IOTimeout = time.Duration(ioTimeoutMS) * time.Millisecond

	// Daemon mode carries its own targets.
	if conf.ConfigFile != "" {
		return &conf, nil
	}

	if conf.Addr == "" {
		return nil, errors.New("--addr is required")
	}
	if _, _, err := tcp.SplitHostPort(conf.Addr); err != nil {
		return nil, err
	}
	if conf.Requests < 1 {
		return nil, errors.Errorf("requests must be positive, got %d", conf.Requests)
	}
	if conf.Concurrency < 1 {
		return nil, errors.Errorf("concurrency must be positive, got %d", conf.Concurrency)
	}

	switch {
	case data != "" && file != "":
		return nil, errors.New("--data and --file are mutually exclusive")
	case file == "-":
		payload, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "read payload from stdin")
		}
		conf.Payload = payload
	case file != "":
		payload, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrap(err, "read payload file")
		}
		conf.Payload = payload
	default:
		conf.Payload = []byte(data)
	}
	return &conf, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newSender(conf *Config, logger *zap.Logger) *tcp.Sender {
	opts := tcp.DefaultOptions().
		WithConnectTimeout(conf.Timeout).
		WithIOTimeout(conf.IOTimeout).
		WithMark(conf.Mark)
	sender := tcp.NewSender(opts)
	sender.Logger = logger.Named("sender")
	if conf.Nameserver != "" {
		sender.Resolver = tcp.NewNameserverResolver(conf.Nameserver)
	}
	return sender
}

// Run the program in CLI / one-off mode.
func cliMode(ctx context.Context, conf *Config, sender *tcp.Sender, logger *zap.Logger) int {
	logger.Info("sending",
		zap.String("addr", conf.Addr),
		zap.Int("bytes", len(conf.Payload)),
		zap.Duration("timeout", conf.Timeout),
		zap.Int("requests", conf.Requests),
		zap.Int("concurrency", conf.Concurrency),
	)

	cs := NewConcurrentSender(sender, conf.Concurrency, logger)
	startedAt := time.Now()
	cs.Run(ctx, conf.Addr, conf.Payload, conf.Requests)
	duration := time.Since(startedAt)

	logger.Info(fmt.Sprintf("finished %d/%d sends in %s", cs.Count(CRequest), conf.Requests, duration),
		zap.Uint64("succeed", cs.Count(CSucceed)),
		zap.Uint64("errInvalid", cs.Count(CErrAddr)),
		zap.Uint64("errConnect", cs.Count(CErrConnect)),
		zap.Uint64("errShortWrite", cs.Count(CErrShortWrite)),
		zap.Uint64("errOther", cs.Count(CErrOther)),
	)
	if cs.Count(CSucceed) != uint64(conf.Requests) {
		return 1
	}
	return 0
}

func main() {
	conf, err := parseConfig(os.Args[1:], os.Stdin)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(conf.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}

	// Calls without a per-call timeout fall back to the global one.
	tcp.ConnectTimeout = conf.Timeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	sender := newSender(conf, logger)

	var code int
	if conf.ConfigFile != "" {
		code = daemonMode(ctx, conf, sender, logger)
	} else {
		code = cliMode(ctx, conf, sender, logger)
	}
	stop()
	_ = logger.Sync()
	os.Exit(code)
}
