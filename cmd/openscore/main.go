// Command openscore reconstructs the scoreboard of a CS:GO demo and stores
// the result in the configured backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/ThePyrotechnic/openscoreboard/internal/decoder"
	"github.com/ThePyrotechnic/openscoreboard/internal/logging"
	"github.com/ThePyrotechnic/openscoreboard/internal/matchtype"
	intOtel "github.com/ThePyrotechnic/openscoreboard/internal/otel"
	"github.com/ThePyrotechnic/openscoreboard/internal/pipeline"
	"github.com/ThePyrotechnic/openscoreboard/internal/storage"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	ProgramName string = "openscore"
)

type options struct {
	demoType       string
	skipProcessing bool
	logLevel       string
	configDir      string
	storageType    string
	demoPath       string
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := pflag.NewFlagSet(ProgramName, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <demo.dem>\n", ProgramName)
		fs.PrintDefaults()
	}
	fs.StringVarP(&opts.demoType, "type", "t", matchtype.ESEA, "demo type (esea, valve)")
	fs.BoolVar(&opts.skipProcessing, "skip-processing", false, "reuse the event log of a previous run")
	fs.StringVar(&opts.logLevel, "log", "", "log level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	fs.StringVar(&opts.configDir, "config", ".", "directory holding openscore.yaml")
	fs.StringVar(&opts.storageType, "storage", "", "storage backend ("+strings.Join(storage.Types, ", ")+")")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("expected exactly one demo file")
	}
	opts.demoPath = fs.Arg(0)

	// fail before anything is read
	if _, err := matchtype.Get(opts.demoType); err != nil {
		return opts, err
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	sessionStart := time.Now()

	slogManager := logging.NewSlogManager()
	slogManager.Setup(opts.logLevel, logging.Sinks{})
	logger := slogManager.Logger()

	if err := config.Load(opts.configDir); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}
	if opts.logLevel == "" {
		opts.logLevel = config.GetString("logLevel")
	}
	if opts.storageType != "" {
		viper.Set("storage.type", opts.storageType)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// log file, OTel and Graylog sinks
	sinks := logging.Sinks{}

	if logsDir := config.GetString("logsDir"); logsDir != "" {
		logFile, err := openLogFile(logsDir, sessionStart, logger)
		if err != nil {
			logger.Error("Failed to create/open log file!", "error", err, "dir", logsDir)
		} else {
			defer logFile.Close()
			sinks.File = logFile
		}
	}

	var otelProvider *intOtel.Provider
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var logWriter io.Writer = os.Stderr
		if sinks.File != nil {
			logWriter = sinks.File
		}
		otelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    logWriter,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := otelProvider.Shutdown(shutdownCtx); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}()
		}
	}
	var otelLogProvider *sdklog.LoggerProvider
	if otelProvider != nil {
		otelLogProvider = otelProvider.LoggerProvider()
	}
	sinks.Provider = otelLogProvider

	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		w, err := logging.NewGraylogWriter(graylogCfg.Address)
		if err != nil {
			logger.Error("Failed to connect to Graylog", "error", err, "address", graylogCfg.Address)
		} else {
			defer w.Close()
			sinks.Graylog = w
		}
	}

	slogManager.Setup(opts.logLevel, sinks)
	logger = slogManager.Logger()
	defer func() {
		if err := slogManager.Flush(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	logger.Info("Starting up...", "version", Version, "build", BuildDate, "demo", opts.demoPath, "type", opts.demoType)

	store, err := storage.NewBackend(config.GetStorageConfig(), storage.Dependencies{
		DB:     config.GetDBConfig(),
		Influx: config.GetInfluxConfig(),
		Logger: logger,
	})
	if err != nil {
		logger.Log(ctx, logging.LevelCritical, "Failed to create storage backend", "error", err)
		return 1
	}
	if err := store.Init(); err != nil {
		logger.Log(ctx, logging.LevelCritical, "Failed to initialize storage backend", "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	p, err := pipeline.New(decoder.New(config.GetDecoderConfig(), logger), store, slogManager)
	if err != nil {
		logger.Log(ctx, logging.LevelCritical, "Failed to create pipeline", "error", err)
		return 1
	}

	rec, err := p.Run(ctx, pipeline.Request{
		DemoPath:   opts.demoPath,
		DemoType:   opts.demoType,
		SkipDecode: opts.skipProcessing,
	})
	if rec != nil {
		t, ct := rec.FinalScore()
		fmt.Println(t, ct)
	}
	if err != nil {
		logger.Log(ctx, logging.LevelCritical, "Run failed", "error", err, "demo", opts.demoPath)
		return 1
	}

	logger.Info("Done", "duration", time.Since(sessionStart))
	return 0
}

// openLogFile creates the session log, moving a previous file of the same
// name aside. A file that cannot be moved is appended to.
func openLogFile(logsDir string, sessionStart time.Time, logger *slog.Logger) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, err
	}
	path := logging.LogFilePath(logsDir, ProgramName, sessionStart)
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".old"); err != nil {
			logger.Warn("Failed to move previous log file aside", "error", err, "path", path)
		}
	}
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
}
