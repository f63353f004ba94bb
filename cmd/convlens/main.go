package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CrudyLame/convlens/internal/api"
	"github.com/CrudyLame/convlens/internal/config"
	"github.com/CrudyLame/convlens/internal/events"
	"github.com/CrudyLame/convlens/internal/groq"
	"github.com/CrudyLame/convlens/internal/ingest"
	"github.com/CrudyLame/convlens/internal/mapper"
	"github.com/CrudyLame/convlens/internal/processor"
	"github.com/CrudyLame/convlens/internal/store"
)

func main() {
	csvPath := flag.String("csv", "", "transcript export to analyze")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if cfg.GroqAPIKey == "" {
		slog.Error("GROQ_API_KEY is required")
		os.Exit(1)
	}

	slog.Info("convlens starting", "port", cfg.Port, "csv", *csvPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the batch on SIGINT/SIGTERM; completed conversations are
	// already flushed incrementally.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown requested")
		cancel()
	}()

	// Database (optional; without it the run only writes the JSON artifact).
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, skipping Postgres persistence")
	}

	// Event bus (optional).
	var bus *events.Client
	if cfg.NatsURL != "" {
		var err error
		bus, err = events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, running without event publishing")
	}

	// Groq client and mapper.
	llm := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel, slog.Default())
	slog.Info("groq client ready", "model", cfg.GroqModel)
	m := mapper.New(llm, slog.Default())

	proc := processor.New(processor.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		ResultsFile:   cfg.ResultsFile,
		ProgressFile:  cfg.ProgressFile,
		SourceFile:    *csvPath,
		TimeThreshold: cfg.TimeThreshold,
	}, m, recorderOrNil(db), publisherOrNil(bus), slog.Default())

	srv := api.NewServer(cfg.Port, proc, counterOrNil(db))
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Without an export to process, serve the status API and wait.
	if *csvPath == "" {
		slog.Info("no export given, serving")
		<-ctx.Done()
		slog.Info("convlens stopped")
		return
	}

	parser := ingest.NewParser(cfg.TimeThreshold, slog.Default())
	conversations, err := parser.ParseFile(*csvPath)
	if err != nil {
		slog.Error("failed to parse transcript export", "error", err)
		os.Exit(1)
	}
	stats := ingest.Summarize(conversations)
	slog.Info("export parsed",
		"conversations", stats.TotalConversations,
		"messages", stats.TotalMessages,
		"users", stats.UniqueUsers,
	)

	state, err := proc.Run(ctx, conversations)
	if err != nil {
		slog.Error("batch run interrupted", "error", err, "processed", state.Processed)
		os.Exit(1)
	}

	slog.Info("convlens done",
		"total", state.Total,
		"succeeded", state.Succeeded,
		"failed", state.Failed,
		"results_file", cfg.ResultsFile,
	)
}

// recorderOrNil avoids handing the processor a typed-nil interface.
func recorderOrNil(db *store.Store) processor.Recorder {
	if db == nil {
		return nil
	}
	return db
}

func publisherOrNil(bus *events.Client) processor.Publisher {
	if bus == nil {
		return nil
	}
	return bus
}

func counterOrNil(db *store.Store) api.AnalysisCounter {
	if db == nil {
		return nil
	}
	return db
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
