package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/weft-ui/weft/internal/config"
	"github.com/weft-ui/weft/pkg/persist"
	"github.com/weft-ui/weft/pkg/runtime"
	"github.com/weft-ui/weft/pkg/weft"
)

func serveCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo component server",
		Long: `Start an HTTP server hosting the built-in counter component.

Configuration is read from weft.yaml in the config directory;
a missing file uses the defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configDir)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing weft.yaml")

	return cmd
}

func runServe(configDir string) error {
	var cfg *config.Config
	path, err := config.Find(configDir)
	switch {
	case err == nil:
		cfg, err = config.LoadFile(path)
		if err != nil {
			return err
		}
	case os.IsNotExist(err):
		cfg = config.New()
	default:
		return err
	}

	logger := buildLogger(cfg.Log)
	slog.SetDefault(logger)

	sessCfg := runtime.DefaultSessionConfig()
	sessCfg.MaxEventQueue = cfg.Session.MaxEventQueue
	sessCfg.ReadTimeout = cfg.Session.ReadTimeout.Std()
	sessCfg.WriteTimeout = cfg.Session.WriteTimeout.Std()
	sessCfg.HeartbeatInterval = cfg.Session.HeartbeatInterval.Std()
	sessCfg.Logger = logger

	if cfg.Metrics.Enabled {
		sessCfg.Metrics = runtime.NewMetrics(
			runtime.WithNamespace(cfg.Metrics.Namespace),
		)
	}

	store, err := buildStore(cfg.Persist)
	if err != nil {
		return err
	}

	manager := runtime.NewSessionManager(sessCfg, runtime.WithSnapshotStore(store))
	server := runtime.NewServer(cfg.Server.Addr(), counterApp, manager)

	printBanner()
	success("serving on http://%s", cfg.Server.Addr())
	info("metrics at http://%s/metrics", cfg.Server.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}

// buildLogger constructs the slog logger from the log section.
func buildLogger(lc config.LogConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// buildStore constructs the snapshot store from the persist section.
func buildStore(pc config.PersistConfig) (persist.SnapshotStore, error) {
	switch pc.Backend {
	case "s3":
		opts := []func(*awsconfig.LoadOptions) error{}
		if pc.Region != "" {
			opts = append(opts, awsconfig.WithRegion(pc.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return persist.NewS3Store(s3.NewFromConfig(awsCfg), pc.Bucket, pc.Prefix), nil
	default:
		return persist.NewMemoryStore(), nil
	}
}

// counterApp is the demo served by `weft serve`. It shows the hooks working
// together: a writable computed counter keyed on the step, a memoized label,
// and handlers registered once per session. The setter variables are
// assigned on every render but the setters themselves are stable, so the
// handlers capture them safely.
func counterApp(sess *runtime.Session) runtime.Component {
	var setStep *weft.Setter[int]
	var setCount *weft.Setter[int]
	var curStep int

	sess.Handle("inc", func(json.RawMessage) {
		setCount.Update(func(v int) int { return v + curStep })
	})
	sess.Handle("step", func(payload json.RawMessage) {
		var n int
		if err := json.Unmarshal(payload, &n); err == nil && n != 0 {
			setStep.Set(n)
		}
	})

	return func() string {
		step, stepSetter := weft.UseWritableComputed(weft.Static(1))
		count, countSetter := weft.UseWritableComputed(
			weft.Computed(func(prev *int) int {
				if prev == nil {
					return 0
				}
				// Changing the step keeps the counter where the user left it.
				return *prev
			}),
			step,
		)
		setStep, setCount, curStep = stepSetter, countSetter, step

		label := weft.UseMemo(func() string {
			return fmt.Sprintf("Count: %d (step %d)", count, step)
		}, count, step)

		return fmt.Sprintf(`<h1>%s</h1>
<button data-weft-event="inc">+%d</button>
<button data-weft-event="step" data-weft-payload="1">step 1</button>
<button data-weft-event="step" data-weft-payload="5">step 5</button>`,
			label, step)
	}
}
