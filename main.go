package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/solaris-forensic/casegraph/internal/analyzer"
	"github.com/solaris-forensic/casegraph/internal/auth"
	"github.com/solaris-forensic/casegraph/internal/chat"
	"github.com/solaris-forensic/casegraph/internal/config"
	"github.com/solaris-forensic/casegraph/internal/gemini"
	"github.com/solaris-forensic/casegraph/internal/logger"
	"github.com/solaris-forensic/casegraph/internal/server"
	"github.com/solaris-forensic/casegraph/internal/session"
)

// geminiAgents adapts the Gemini client to the session's agent factory.
type geminiAgents struct {
	client *gemini.Client
}

func (g geminiAgents) NewAgent(contents []analyzer.Content) chat.Agent {
	return g.client.NewChat(contents)
}

func main() {
	transport := flag.String("transport", "stdio", "Transport mode: stdio or http")
	port := flag.String("port", "8081", "HTTP port (only used with --transport http)")
	configPath := flag.String("config", "", "Path to a YAML config file")
	dataDir := flag.String("data-dir", "", "Directory for local SQLite databases (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	authStore, err := auth.Open(cfg.DataDir)
	if err != nil {
		zl.Fatal("open auth store", "error", err)
	}
	defer authStore.Close()

	var an analyzer.Analyzer
	var agents session.AgentFactory
	client, err := gemini.New(cfg.Gemini, zl)
	switch {
	case err == nil:
		an = client
		agents = geminiAgents{client: client}
	case errors.Is(err, gemini.ErrNoAPIKey):
		zl.Warn("no model backend; evidence analysis and assistant disabled", "error", err)
	default:
		zl.Fatal("build gemini client", "error", err)
	}

	sess := session.New(authStore, an, agents, zl)
	srv := server.New(sess)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *transport {
	case "stdio":
		zl.Info("casegraph server starting", "transport", "stdio")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			zl.Fatal("server error", "error", err)
		}
	case "http":
		addr := ":" + *port
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		zl.Info("casegraph server listening", "addr", addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			zl.Fatal("http server error", "error", err)
		}
	default:
		zl.Fatal("unknown transport (use stdio or http)", "transport", *transport)
	}
}
