package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/liao/coffee-assistant/internal/ai"
	"github.com/liao/coffee-assistant/internal/chat"
	"github.com/liao/coffee-assistant/internal/config"
	"github.com/liao/coffee-assistant/internal/detect"
	"github.com/liao/coffee-assistant/internal/rag"
	"github.com/liao/coffee-assistant/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Gemini 客户端
	aiClient, err := ai.NewClient(ctx, cfg.Gemini)
	if err != nil {
		slog.Error("create AI client failed", "error", err)
		os.Exit(1)
	}
	slog.Info("AI client initialized", "models", cfg.Gemini.ChatModels)

	// 向量存储 + 检索链。知识库缺失时只有无依据兜底可用。
	store, err := rag.NewStore(cfg.RAG.VectorsDir, aiClient.EmbedFunc())
	if err != nil {
		slog.Warn("load vector store failed, answers will not be grounded", "error", err)
		store = nil
	}
	retriever := rag.NewPipeline(store, aiClient, cfg.RAG.TopK, cfg.RAG.MinSimilarity)
	router := rag.NewRouter(aiClient, retriever)

	// 会话记忆
	memory, err := chat.NewManager(5, cfg.Data.SessionsDir)
	if err != nil {
		slog.Error("create chat manager failed", "error", err)
		os.Exit(1)
	}

	// 检测器
	var detector detect.Detector
	switch cfg.Detector.Mode {
	case "mock":
		slog.Warn("using mock detector")
		detector = detect.DefaultMock()
	default:
		detector = detect.NewClient(cfg.Detector.URL, cfg.Detector.ConfThreshold, cfg.Detector.Timeout)
	}

	srv := server.New(cfg.Server.Addr, detector, router, memory)

	// 优雅关闭
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		slog.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Stop(shutdownCtx)
		cancel()
	}()

	if err := srv.Run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
