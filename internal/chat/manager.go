package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `json:"role"` // "user" / "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Session struct {
	Messages   []Message `json:"messages"`
	LastActive time.Time `json:"last_active"`
}

// Manager 按会话 ID 维护有界窗口的对话记忆，每个会话一个 JSON 文件。
// 会话在第一次访问时从磁盘懒加载。
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	maxTurns    int
	sessionsDir string
}

func NewManager(maxTurns int, sessionsDir string) (*Manager, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		maxTurns:    maxTurns,
		sessionsDir: sessionsDir,
	}, nil
}

// Append 追加一条消息并裁剪窗口
func (m *Manager) Append(sessionID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.LastActive = time.Now()
	m.trim(s)
}

// History 返回会话消息的副本
func (m *Manager) History(sessionID string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// HistoryLines 把历史格式化为 "Human: ..." / "Assistant: ..." 行，
// 供问题改写提示词使用
func (m *Manager) HistoryLines(sessionID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	lines := make([]string, 0, len(s.Messages))
	for _, msg := range s.Messages {
		speaker := "Human"
		if msg.Role == RoleAssistant {
			speaker = "Assistant"
		}
		lines = append(lines, speaker+": "+msg.Content)
	}
	return lines
}

// Clear 清空会话记忆并删除持久化文件
func (m *Manager) Clear(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	err := os.Remove(m.sessionFile(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Save 把所有在内存中的会话持久化
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal session %s: %w", id, err)
		}
		if err := os.WriteFile(m.sessionFile(id), data, 0644); err != nil {
			return fmt.Errorf("write session %s: %w", id, err)
		}
	}
	return nil
}

// load 取会话，必要时从磁盘恢复。调用方需持有锁。
func (m *Manager) load(sessionID string) *Session {
	if s, ok := m.sessions[sessionID]; ok {
		return s
	}

	s := &Session{LastActive: time.Now()}
	if data, err := os.ReadFile(m.sessionFile(sessionID)); err == nil {
		var restored Session
		if json.Unmarshal(data, &restored) == nil {
			s = &restored
		}
	}
	m.sessions[sessionID] = s
	return s
}

func (m *Manager) sessionFile(sessionID string) string {
	return filepath.Join(m.sessionsDir, sessionID+".json")
}

func (m *Manager) trim(s *Session) {
	// 保留最近 maxTurns*2 条消息（每轮 = 1 user + 1 assistant）
	max := m.maxTurns * 2
	if len(s.Messages) > max {
		s.Messages = s.Messages[len(s.Messages)-max:]
	}
}
