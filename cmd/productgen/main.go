package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/flarexio/productgen"
	"github.com/flarexio/productgen/llm"
	"github.com/flarexio/productgen/qa"
	"github.com/flarexio/productgen/vector"
)

const ModePrompt = "Enter local or remote model type (local/remote): "

func main() {
	cmd := &cli.Command{
		Name:  "productgen",
		Usage: "Synthetic skincare product generator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path to the productgen workspace",
			},
			&cli.StringFlag{
				Name:    "mode",
				Usage:   "Language model backend (local/remote), prompted when empty",
				Sources: cli.EnvVars("PRODUCTGEN_MODE"),
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Also write JSON logs to this rotated file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log prompts and model responses",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate products in a single model request and save them",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of products to generate",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Dataset file to write",
					},
				},
				Action: generate,
			},
			{
				Name:   "schema",
				Usage:  "Create the product collection in the vector store",
				Action: schema,
			},
			{
				Name:  "import",
				Usage: "Import a saved dataset into the vector store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "input",
						Usage: "Dataset file to read",
					},
				},
				Action: importProducts,
			},
			{
				Name:      "search",
				Usage:     "Search imported products",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of results",
						Value: 5,
					},
				},
				Action: search,
			},
			{
				Name:   "qa",
				Usage:  "Ask the language model questions until 'finish'",
				Action: ask,
			},
			{
				Name:  "serve",
				Usage: "Serve products over NATS, HTTP and MCP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "nats",
						Usage:   "NATS server URL",
						Value:   "wss://nats.flarex.io",
						Sources: cli.EnvVars("NATS_URL"),
					},
					&cli.BoolFlag{
						Name:  "http",
						Usage: "Enable HTTP transport",
						Value: false,
					},
					&cli.StringFlag{
						Name:  "http-addr",
						Usage: "HTTP server address",
						Value: ":8080",
					},
				},
				Action: serve,
			},
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

type configKey struct{}

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ctx, err
		}

		path = filepath.Join(homeDir, ".flarex", "productgen")
	}

	log, err := NewLogger(cmd.String("log-file"), cmd.Bool("debug"))
	if err != nil {
		return ctx, err
	}

	zap.ReplaceGlobals(log)

	cfg, err := LoadConfig(path)
	if err != nil {
		return ctx, err
	}

	return context.WithValue(ctx, configKey{}, cfg), nil
}

func teardown(ctx context.Context, cmd *cli.Command) error {
	zap.L().Sync()
	return nil
}

func configFrom(ctx context.Context) Config {
	cfg, ok := ctx.Value(configKey{}).(Config)
	if !ok {
		return Config{Config: productgen.DefaultConfig()}
	}

	return cfg
}

// selectMode takes the flag value or asks on in.
func selectMode(cmd *cli.Command, in *bufio.Reader) (llm.Mode, error) {
	if mode := cmd.String("mode"); mode != "" {
		return llm.ParseMode(mode)
	}

	fmt.Print(ModePrompt)

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}

	return llm.ParseMode(line)
}

func generate(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)

	if output := cmd.String("output"); output != "" {
		cfg.Generator.Output = output
	}

	count := cfg.Generator.Count
	if n := cmd.Int("count"); n > 0 {
		count = int(n)
	}

	mode, err := selectMode(cmd, bufio.NewReader(os.Stdin))
	if err != nil {
		return err
	}

	backend, err := llm.SelectBackend(mode, cfg.LLM)
	if err != nil {
		return err
	}

	svc, err := productgen.NewService(ctx, cfg.Config, backend, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc = productgen.LoggingMiddleware(zap.L())(svc)

	fmt.Printf("Generating %d products in a single API call...\n\n", count)

	result, err := svc.GenerateProducts(ctx, count)
	if err != nil {
		return err
	}

	if err := productgen.WriteReport(os.Stdout, result); err != nil {
		return err
	}

	if result.Failed() || len(result.Products) == 0 {
		return nil
	}

	path, err := svc.SaveProducts(ctx, result.Products)
	if err != nil {
		return err
	}

	fmt.Printf("\n✓ Saved to: %s\n", path)

	summary, err := productgen.Summarize(result.Products)
	if err != nil {
		return err
	}

	return productgen.WriteSummary(os.Stdout, summary)
}

func schema(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)

	open, err := Opener(cfg.Vector.Driver)
	if err != nil {
		return err
	}

	return vector.WithStore(ctx, cfg.Vector, open, func(store *vector.Manager) error {
		s := productgen.ProductSchema(cfg.Vector)
		if err := store.CreateSchema(ctx, s); err != nil {
			return err
		}

		fmt.Printf("✓ Created collection %s with %d properties\n", s.Name, len(s.Properties))
		return nil
	})
}

func importProducts(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)

	input := cmd.String("input")
	if input == "" {
		input = cfg.Generator.Output
	}

	products, err := productgen.Load(input)
	if err != nil {
		return err
	}

	open, err := Opener(cfg.Vector.Driver)
	if err != nil {
		return err
	}

	return vector.WithStore(ctx, cfg.Vector, open, func(store *vector.Manager) error {
		svc, err := productgen.NewService(ctx, cfg.Config, nil, store)
		if err != nil {
			return err
		}

		svc = productgen.LoggingMiddleware(zap.L())(svc)

		n, err := svc.ImportProducts(ctx, products)
		fmt.Printf("✓ Imported %d of %d products into %s\n", n, len(products), productgen.ProductSchema(cfg.Vector).Name)

		return err
	})
}

func search(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)

	query := strings.Join(cmd.Args().Slice(), " ")
	if query == "" {
		return errors.New("query is required")
	}

	open, err := Opener(cfg.Vector.Driver)
	if err != nil {
		return err
	}

	return vector.WithStore(ctx, cfg.Vector, open, func(store *vector.Manager) error {
		svc, err := productgen.NewService(ctx, cfg.Config, nil, store)
		if err != nil {
			return err
		}

		products, err := svc.SearchProducts(ctx, query, int(cmd.Int("k")))
		if err != nil {
			return err
		}

		for i, p := range products {
			fmt.Printf("  %d. %s - $%.2f (%s)\n", i+1, p.Name, p.Price, strings.Join(p.ConcernsAddressed, ", "))
		}

		return nil
	})
}

func ask(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)

	stdin := bufio.NewReader(os.Stdin)

	mode, err := selectMode(cmd, stdin)
	if err != nil {
		return err
	}

	backend, err := llm.SelectBackend(mode, cfg.LLM)
	if err != nil {
		return err
	}

	session := qa.NewSession(backend)
	return session.Run(ctx, stdin, os.Stdout)
}
