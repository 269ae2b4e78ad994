package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/webcast/internal/config"
	"github.com/vango-dev/webcast/internal/errors"
	"github.com/vango-dev/webcast/pkg/archive"
	"github.com/vango-dev/webcast/pkg/session"
)

type connectOptions struct {
	configPath    string
	url           string
	params        []string
	clientParams  []string
	headers       []string
	cookie        string
	metricsAddr   string
	archiveBucket string
	logLevel      string
}

func connectCmd() *cobra.Command {
	var opts connectOptions

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a push endpoint and print payloads",
		Long: `Connect to a webcast push endpoint and print every decoded payload
as a JSON line on stdout.

Settings come from webcast.json (the --config file, or the one in the
current directory) and are overridden by flags.

Examples:
  webcast connect
  webcast connect --url=wss://push.example.com/webcast/im/push/v2/ --param room_id=7312 --cookie "ttwid=..."
  webcast connect --metrics-addr=:9090 --archive-bucket=webcast-payloads`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runConnect(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Path to webcast.json")
	f.StringVar(&opts.url, "url", "", "Push endpoint (ws:// or wss://)")
	f.StringArrayVarP(&opts.params, "param", "p", nil, "Query parameter key=value (repeatable, wins over client params)")
	f.StringArrayVar(&opts.clientParams, "client-param", nil, "Base query parameter key=value (repeatable)")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "Handshake header key=value (repeatable)")
	f.StringVar(&opts.cookie, "cookie", "", "Cookie header value")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address")
	f.StringVar(&opts.archiveBucket, "archive-bucket", "", "Archive payloads to this S3 bucket")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts connectOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}

	if opts.url != "" {
		cfg.URL = opts.url
	}
	if cfg.Params, err = parseKV("param", opts.params, cfg.Params); err != nil {
		return nil, err
	}
	if cfg.ClientParams, err = parseKV("client-param", opts.clientParams, cfg.ClientParams); err != nil {
		return nil, err
	}
	if cfg.Headers, err = parseKV("header", opts.headers, cfg.Headers); err != nil {
		return nil, err
	}
	if opts.cookie != "" {
		cfg.Cookie = opts.cookie
		cfg.CookieFile = ""
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.archiveBucket != "" {
		cfg.Archive.Bucket = opts.archiveBucket
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// payloadLine is the JSON shape of one printed payload.
type payloadLine struct {
	Time      time.Time         `json:"time"`
	SessionID string            `json:"session_id"`
	ID        uint64            `json:"id,omitempty"`
	SeqID     uint64            `json:"seq_id,omitempty"`
	Method    string            `json:"method,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Bytes     int               `json:"bytes"`
	Payload   []byte            `json:"payload"`
}

func runConnect(ctx context.Context, opts connectOptions, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg)

	sc, err := cfg.SessionConfig()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := session.NewMetrics(
		session.WithRegistry(registry),
		session.WithNamespace(cfg.Metrics.Namespace),
	)

	var archiver *archive.Archiver
	if cfg.Archive.Bucket != "" {
		client, err := newS3Client(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		store := archive.NewS3Store(client, cfg.Archive.Bucket, cfg.Archive.Prefix)
		archiver = archive.NewArchiver(store, archive.WithLogger(logger))
		defer archiver.Close()
	}

	sess := session.Connect(ctx, sc,
		session.WithLogger(logger),
		session.WithMetrics(metrics),
	)
	defer sess.Close()

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           adminRouter(registry, sess),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	enc := json.NewEncoder(stdout)
	for ev := range sess.Events() {
		switch ev.Kind {
		case session.EventOpen:
			logger.Info("connected", "session_id", sess.ID())

		case session.EventPayload:
			line := payloadLine{
				Time:      ev.Time,
				SessionID: sess.ID(),
				Bytes:     len(ev.Payload),
				Payload:   ev.Payload,
			}
			if c := ev.Container; c != nil {
				line.ID = c.ID
				line.SeqID = c.SeqID
				line.Method = c.Method
				line.Headers = c.Headers
			}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("write payload: %w", err)
			}
			if archiver != nil {
				archiver.Submit(archive.NewRecord(sess.ID(), ev))
			}

		case session.EventDecodeFailed:
			logger.Warn("frame decode failed", "error", ev.Err)

		case session.EventClosed:
			return closeError(ctx, ev.Err)
		}
	}
	return closeError(ctx, sess.Err())
}

// closeError maps the reason a session closed to the command's result.
// Closing because the user interrupted is not an error.
func closeError(ctx context.Context, err error) error {
	if err == nil || ctx.Err() != nil {
		return nil
	}
	switch {
	case stderrors.Is(err, session.ErrInvalidURL):
		return errors.New("W104").Wrap(err)
	case stderrors.Is(err, session.ErrCredentials):
		return errors.New("W203").Wrap(err)
	case stderrors.Is(err, session.ErrHandshake):
		return errors.New("W202").Wrap(err)
	}

	var se *session.SessionError
	if stderrors.As(err, &se) && se.Op == "dial" {
		return errors.New("W201").Wrap(err)
	}
	return errors.New("W301").Wrap(err)
}

// newS3Client builds an S3 client from the archive settings. Region and
// credentials resolve through the AWS default chain: environment, shared
// config and credentials files, SSO and instance roles. archive.region
// overrides the resolved region.
func newS3Client(ctx context.Context, cfg config.ArchiveConfig) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.New("W401").Wrap(err)
	}
	if awsCfg.Region == "" {
		return nil, errors.New("W401").WithDetail("archive.region is not set and no AWS region is configured")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
