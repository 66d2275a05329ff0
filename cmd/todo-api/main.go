// main is the entry point for the todo API
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cirocosta/todo-api/internal/api"
	"github.com/cirocosta/todo-api/internal/config"
	"github.com/cirocosta/todo-api/internal/database"
	"github.com/cirocosta/todo-api/internal/repository"
	"github.com/cirocosta/todo-api/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	os.Args = os.Args[1:]

	var err error
	switch cmd {
	case "run":
		err = runServer()
	case "ping-db":
		err = pingDB()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		slog.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`
Usage: todo-api <command> [options]

Commands:
  run          Start the HTTP server
  ping-db      Connect to the database and check it answers

Run 'todo-api <command> -h' for more information on a command.
`)
}

// loadConfig parses the command flags, loads configuration and installs
// the default logger
func loadConfig() (config.Config, error) {
	envFile := flag.String("env-file", "", "Path to a .env file (default: ./.env when present)")
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(logger)

	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// create context that listens for interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// setup dependencies
	var (
		todoRepo repository.TodoRepository
		store    api.Pinger
	)
	switch cfg.DB.Store {
	case config.StoreMemory:
		slog.Warn("using in-memory store, data is lost on exit")
		todoRepo = repository.NewInMemoryTodoRepository()
	default:
		pool, err := database.Connect(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		slog.Info("database pool connected", "max_conns", cfg.DB.MaxConns)
		todoRepo = repository.NewPostgresTodoRepository(pool)
		store = pool
	}

	todoService := service.NewTodoService(todoRepo)

	r := api.NewRouter(todoService, api.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Store:          store,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)

	// start server in a goroutine
	go func() {
		slog.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}

	// shutdown server gracefully
	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func pingDB() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.DB.Store == config.StoreMemory {
		fmt.Println("TODO_STORE=memory, nothing to ping")
		return nil
	}

	pool, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	fmt.Println("database reachable")
	return nil
}
