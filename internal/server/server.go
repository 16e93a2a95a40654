package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/liao/coffee-assistant/internal/chat"
	"github.com/liao/coffee-assistant/internal/detect"
	"github.com/liao/coffee-assistant/internal/rag"
)

//go:embed static
var staticFiles embed.FS

// Answerer 由 rag.Router 实现
type Answerer interface {
	Answer(ctx context.Context, question string, history []string) rag.Answer
}

// Server 是整个应用的 Web 层：
// 图片上传 + 检测 + 自动药方，以及后续的自由问答。
type Server struct {
	detector detect.Detector
	answerer Answerer
	memory   *chat.Manager
	httpSrv  *http.Server
}

func New(addr string, detector detect.Detector, answerer Answerer, memory *chat.Manager) *Server {
	s := &Server{
		detector: detector,
		answerer: answerer,
		memory:   memory,
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(sessionCookie)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/detect", s.handleDetect)
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/history", s.handleHistory)
	r.Post("/api/reset", s.handleReset)

	static, _ := fs.Sub(staticFiles, "static")
	r.Handle("/*", http.FileServerFS(static))

	return r
}

// Handler 暴露路由，测试用
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run 启动 HTTP 服务并阻塞到出错或 Stop
func (s *Server) Run() error {
	slog.Info("server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭并持久化会话记忆
func (s *Server) Stop(ctx context.Context) {
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := s.memory.Save(); err != nil {
		slog.Error("save sessions failed", "error", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
