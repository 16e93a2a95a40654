package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/liao/coffee-assistant/internal/ai"
	"github.com/liao/coffee-assistant/internal/chat"
	"github.com/liao/coffee-assistant/internal/detect"
)

const maxUploadSize = 10 << 20 // 10MB

type detectResponse struct {
	Detections []detect.Detection `json:"detections"`
	Diseases   []string           `json:"diseases"`
	Healthy    bool               `json:"healthy"`
	Annotated  string             `json:"annotated,omitempty"` // base64
	Mime       string             `json:"mime,omitempty"`
	Remedy     *answerResponse    `json:"remedy,omitempty"`
}

type chatRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
	Grounded bool     `json:"grounded"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "coffee-assistant"})
}

// handleDetect 上传叶片图片：检测 → 标注 → 检出病害时自动生成药方
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "image exceeds the 10MB upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	if !allowedImage(header.Filename) {
		writeError(w, http.StatusBadRequest, "only jpg, jpeg and png images are supported")
		return
	}

	img, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read upload failed")
		return
	}

	dets, err := s.detector.Detect(r.Context(), img)
	if err != nil {
		slog.Error("detection failed", "error", err)
		writeError(w, http.StatusBadGateway, "disease detection is temporarily unavailable")
		return
	}

	resp := detectResponse{Detections: dets, Diseases: detect.UniqueClasses(dets)}
	if len(dets) == 0 {
		resp.Healthy = true
		writeJSON(w, http.StatusOK, resp)
		return
	}

	// 标注失败不阻断流程，只少一张标注图
	if annotated, err := detect.Annotate(img, dets); err != nil {
		slog.Warn("annotate failed", "error", err)
	} else {
		resp.Annotated = base64.StdEncoding.EncodeToString(annotated)
		resp.Mime = http.DetectContentType(annotated)
	}

	// 自动生成药方并计入会话记忆
	sid := sessionID(r)
	question := ai.RemedyQuestion(resp.Diseases)
	answer := s.answerer.Answer(r.Context(), question, s.memory.HistoryLines(sid))
	s.memory.Append(sid, chat.RoleUser, question)
	s.memory.Append(sid, chat.RoleAssistant, answer.Text)

	resp.Remedy = &answerResponse{
		Answer:   answer.Text,
		Sources:  answer.Sources,
		Grounded: answer.Grounded,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	sid := sessionID(r)
	// 当前问题不算进改写用的历史，先取再写
	history := s.memory.HistoryLines(sid)
	answer := s.answerer.Answer(r.Context(), question, history)
	s.memory.Append(sid, chat.RoleUser, question)
	s.memory.Append(sid, chat.RoleAssistant, answer.Text)

	writeJSON(w, http.StatusOK, answerResponse{
		Answer:   answer.Text,
		Sources:  answer.Sources,
		Grounded: answer.Grounded,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	msgs := s.memory.History(sessionID(r))
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.memory.Clear(sessionID(r)); err != nil {
		slog.Error("clear session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear chat history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func allowedImage(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".jpeg") || strings.HasSuffix(name, ".png")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
