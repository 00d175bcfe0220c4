package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/advex-rss/app/api"
	"github.com/lysyi3m/advex-rss/app/cfg"
	"github.com/lysyi3m/advex-rss/app/feed"
	"github.com/lysyi3m/advex-rss/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("advex-rss failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	partitions, err := feed.LoadConfig(appCfg.PartitionsFile)
	if err != nil {
		return fmt.Errorf("failed to load partitions: %w", err)
	}

	httpClient := &http.Client{}
	source := feed.NewSource(httpClient, appCfg.SourceURL, appCfg.UserAgent, time.Duration(appCfg.Timeout)*time.Second)
	partitioner := feed.NewPartitioner(partitions)
	generator := feed.NewGenerator()
	writer := feed.NewWriter(appCfg.OutputDir, appCfg.FilePrefix)

	var verifier *feed.Verifier
	if appCfg.Verify {
		verifier = feed.NewVerifier()
	}

	newTask := func() *tasks.GenerateFeedsTask {
		return tasks.NewGenerateFeedsTask(appCfg.FilePrefix, source, partitioner, generator, verifier, writer)
	}

	slog.Info("Starting advex-rss",
		"version", appCfg.Version,
		"source", appCfg.SourceURL,
		"output_dir", appCfg.OutputDir,
		"serve", appCfg.Serve)

	if !appCfg.Serve {
		task := newTask()
		task.Start()
		return task.Execute(context.Background())
	}

	return serve(appCfg, partitions, writer, func() tasks.TaskInterface { return newTask() })
}

func serve(appCfg *cfg.Cfg, partitions *feed.Config, writer *feed.Writer, newTask func() tasks.TaskInterface) error {
	scheduler := tasks.NewScheduler(newTask, time.Duration(appCfg.Interval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(writer, scheduler, partitions.Tags(), appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "interval", time.Duration(appCfg.Interval)*time.Second)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serverErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serverErr = <-serverErrChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("advex-rss stopped")
	return serverErr
}
