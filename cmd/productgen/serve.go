package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/flarexio/productgen"
	"github.com/flarexio/productgen/llm"
	"github.com/flarexio/productgen/vector"

	mcpE "github.com/flarexio/productgen/mcp"
	httpT "github.com/flarexio/productgen/transport/http"
	natsT "github.com/flarexio/productgen/transport/nats"
)

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	log := zap.L()

	mode := cfg.LLM.Mode
	if m := cmd.String("mode"); m != "" {
		parsed, err := llm.ParseMode(m)
		if err != nil {
			return err
		}

		mode = parsed
	}

	backend, err := llm.SelectBackend(mode, cfg.LLM)
	if err != nil {
		return err
	}

	open, err := Opener(cfg.Vector.Driver)
	if err != nil {
		return err
	}

	store, err := vector.Open(ctx, cfg.Vector, open)
	if err != nil {
		return err
	}

	svc, err := productgen.NewService(ctx, cfg.Config, backend, store)
	if err != nil {
		store.Close()
		return err
	}
	defer svc.Close()

	svc = productgen.LoggingMiddleware(log)(svc)

	endpoints := productgen.EndpointSet{
		GenerateProducts: productgen.GenerateProductsEndpoint(svc),
		ImportProducts:   productgen.ImportProductsEndpoint(svc),
		SearchProducts:   productgen.SearchProductsEndpoint(svc),
	}

	// Add NATS Transport
	if natsURL := cmd.String("nats"); natsURL != "" {
		idBytes, err := os.ReadFile(filepath.Join(cfg.Path, "id"))
		if err != nil {
			return err
		}

		edgeID := strings.TrimSpace(string(idBytes))

		nc, err := nats.Connect(natsURL,
			nats.Name("ProductGen Server - "+edgeID),
			nats.UserCredentials(filepath.Join(cfg.Path, "user.creds")),
		)

		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "productgen",
			Version: "1.0.0",
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		topic := "edges." + edgeID + ".productgen"

		root := srv.AddGroup(topic)
		natsT.AddEndpoints(root, endpoints)

		log.Info("nats transport started", zap.String("topic", topic))
	}

	if cmd.Bool("http") {
		r := gin.Default()
		httpT.AddRouters(r, endpoints, cfg.HTTP)

		mcpEndpoints := make(map[mcp.MCPMethod]mcpE.MCPEndpoint)
		mcpEndpoints[mcp.MethodInitialize] = mcpE.InitializeEndpoint(svc)
		mcpEndpoints[mcp.MethodPing] = mcpE.PingEndpoint(svc)
		mcpEndpoints[mcp.MethodToolsList] = mcpE.ListToolsEndpoint(svc)
		mcpEndpoints[mcp.MethodToolsCall] = mcpE.CallToolEndpoint(svc)
		httpT.AddStreamableRouters(r, mcpEndpoints)

		httpAddr := cmd.String("http-addr")
		go r.Run(httpAddr)

		log.Info("http transport started", zap.String("addr", httpAddr))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sign := <-quit:
		log.Info("graceful shutdown", zap.String("signal", sign.String()))
	case <-ctx.Done():
	}

	return nil
}
