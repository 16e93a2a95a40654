package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/liao/coffee-assistant/internal/ai"
	"github.com/liao/coffee-assistant/internal/config"
	"github.com/liao/coffee-assistant/internal/kb"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	pdfPath := flag.String("pdf", "", "path to PDF knowledge base file")
	outDir := flag.String("output", "", "directory to save the vector store (default: rag.vectors_dir from config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	if *pdfPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: kb-builder -pdf <file> [-output <dir>] [-config <file>]\n")
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	dir := *outDir
	if dir == "" {
		dir = cfg.RAG.VectorsDir
	}

	ctx := context.Background()

	aiClient, err := ai.NewClient(ctx, cfg.Gemini)
	if err != nil {
		slog.Error("create AI client failed", "error", err)
		os.Exit(1)
	}

	splitter := kb.NewSplitter(cfg.KB.ChunkSize, cfg.KB.ChunkOverlap)
	builder := kb.NewBuilder(splitter, aiClient.EmbedFunc(), cfg.KB.BatchSize)

	report, err := builder.Build(ctx, *pdfPath, dir)
	if err != nil {
		slog.Error("build failed", "error", err)
		os.Exit(1)
	}

	fmt.Println(report)
	slog.Info("done!")
}
