package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrWorkspaceNotFound is returned when an invite code matches nothing
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// Workspace is a shared team space with chat
type Workspace struct {
	Code      string    `json:"inviteCode"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	Members   []Member  `json:"members,omitempty"`
}

// Member is a workspace participant
type Member struct {
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Message is a chat message in a workspace
type Message struct {
	ID         string    `json:"id"`
	Sender     string    `json:"senderId"`
	SenderName string    `json:"senderName,omitempty"`
	Body       string    `json:"message"`
	Type       string    `json:"type"` // text | system
	Timestamp  time.Time `json:"timestamp"`
}

// newInviteCode returns a 6-character uppercase code
func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// CreateWorkspace creates a workspace with its owner and a system
// welcome message, returning the generated invite code
func (s *Store) CreateWorkspace(name, creatorEmail, creatorName string) (*Workspace, error) {
	ws := &Workspace{
		Code:      newInviteCode(),
		Name:      name,
		CreatedBy: creatorEmail,
		CreatedAt: time.Now(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO workspaces (code, name, created_by, created_at) VALUES (?, ?, ?, ?)
	`, ws.Code, ws.Name, ws.CreatedBy, ws.CreatedAt); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		INSERT INTO workspace_members (workspace_code, user_email, name, role, joined_at)
		VALUES (?, ?, ?, 'owner', ?)
	`, ws.Code, creatorEmail, creatorName, ws.CreatedAt); err != nil {
		return nil, err
	}

	welcome := fmt.Sprintf("Welcome to %s! Team workspace created by %s.", name, creatorName)
	if _, err := tx.Exec(`
		INSERT INTO messages (id, workspace_code, sender, sender_name, body, msg_type, created_at)
		VALUES (?, ?, 'system', 'System', ?, 'system', ?)
	`, uuid.NewString(), ws.Code, welcome, ws.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	ws.Members = []Member{{Email: creatorEmail, Name: creatorName, Role: "owner", JoinedAt: ws.CreatedAt}}
	return ws, nil
}

// JoinWorkspace adds a member by invite code and posts a system message
func (s *Store) JoinWorkspace(code, email, name string) (*Workspace, error) {
	ws, err := s.GetWorkspace(code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := s.db.Exec(`
		INSERT INTO workspace_members (workspace_code, user_email, name, role, joined_at)
		VALUES (?, ?, ?, 'member', ?)
		ON CONFLICT(workspace_code, user_email) DO NOTHING
	`, code, email, name, now); err != nil {
		return nil, err
	}

	joined := fmt.Sprintf("%s joined the workspace.", name)
	if _, err := s.db.Exec(`
		INSERT INTO messages (id, workspace_code, sender, sender_name, body, msg_type, created_at)
		VALUES (?, ?, 'system', 'System', ?, 'system', ?)
	`, uuid.NewString(), code, joined, now); err != nil {
		return nil, err
	}

	return s.GetWorkspace(ws.Code)
}

// GetWorkspace returns a workspace with its members
func (s *Store) GetWorkspace(code string) (*Workspace, error) {
	var ws Workspace
	err := s.db.QueryRow(`
		SELECT code, name, created_by, created_at FROM workspaces WHERE code = ?
	`, code).Scan(&ws.Code, &ws.Name, &ws.CreatedBy, &ws.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT user_email, name, role, joined_at
		FROM workspace_members WHERE workspace_code = ? ORDER BY joined_at
	`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m Member
		var name sql.NullString
		if err := rows.Scan(&m.Email, &name, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Name = name.String
		ws.Members = append(ws.Members, m)
	}
	return &ws, rows.Err()
}

// ListWorkspacesFor returns the workspaces a user belongs to
func (s *Store) ListWorkspacesFor(email string) ([]Workspace, error) {
	rows, err := s.db.Query(`
		SELECT w.code, w.name, w.created_by, w.created_at
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_code = w.code
		WHERE m.user_email = ?
		ORDER BY w.created_at
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.Code, &ws.Name, &ws.CreatedBy, &ws.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

// CountWorkspaces returns the total number of workspaces
func (s *Store) CountWorkspaces() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM workspaces`).Scan(&n)
	return n, err
}

// AppendMessage stores a chat message in a workspace
func (s *Store) AppendMessage(code string, m Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.Type == "" {
		m.Type = "text"
	}

	_, err := s.db.Exec(`
		INSERT INTO messages (id, workspace_code, sender, sender_name, body, msg_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, code, m.Sender, m.SenderName, m.Body, m.Type, m.Timestamp)
	return err
}

// ListMessages returns a workspace's messages in chronological order
func (s *Store) ListMessages(code string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT id, sender, sender_name, body, msg_type, created_at
		FROM messages
		WHERE workspace_code = ?
		ORDER BY created_at DESC, id LIMIT ?
	`, code, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var name sql.NullString
		if err := rows.Scan(&m.ID, &m.Sender, &name, &m.Body, &m.Type, &m.Timestamp); err != nil {
			return nil, err
		}
		m.SenderName = name.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Flip to chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
