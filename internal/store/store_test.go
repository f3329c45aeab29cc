package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/taskflowhq/taskflow/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "taskflow.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_TaskCRUD(t *testing.T) {
	s := newTestStore(t)
	user := "alice@example.com"

	due, _ := domain.ParseDate("2026-04-01")
	task := &domain.Task{
		ID:        "t1",
		Title:     "Write report",
		Priority:  domain.PriorityHigh,
		Status:    domain.StatusTodo,
		Project:   "Q2",
		DueDate:   &due,
		TimeSpent: 30,
	}

	if err := s.UpsertTask(user, task); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTask(user, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Title != "Write report" || got.DueDate == nil || got.DueDate.String() != "2026-04-01" {
		t.Errorf("GetTask = %+v", got)
	}

	// Upsert updates in place
	task.Status = domain.StatusInProgress
	if err := s.UpsertTask(user, task); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetTask(user, "t1")
	if got.Status != domain.StatusInProgress {
		t.Errorf("Status = %s after update", got.Status)
	}

	// Other users can't see it
	if other, _ := s.GetTask("bob@example.com", "t1"); other != nil {
		t.Error("task leaked across users")
	}

	// Status filter
	tasks, err := s.ListTasks(user, ListOptions{Status: domain.StatusInProgress})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Errorf("ListTasks = %d tasks, want 1", len(tasks))
	}

	deleted, err := s.DeleteTask(user, "t1")
	if err != nil || !deleted {
		t.Fatalf("DeleteTask = %v, %v", deleted, err)
	}
	if got, _ := s.GetTask(user, "t1"); got != nil {
		t.Error("task still present after delete")
	}
	if deleted, _ := s.DeleteTask(user, "t1"); deleted {
		t.Error("double delete reported success")
	}
}

func TestStore_UserKV(t *testing.T) {
	s := newTestStore(t)
	kv := s.UserKV("alice@example.com")

	if _, ok, err := kv.Get("timer_state"); err != nil || ok {
		t.Fatalf("Get on empty store = ok=%v err=%v", ok, err)
	}

	if err := kv.Set("timer_state", `{"timeLeft":100}`); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set("timer_state", `{"timeLeft":90}`); err != nil {
		t.Fatal(err)
	}

	val, ok, err := kv.Get("timer_state")
	if err != nil || !ok || val != `{"timeLeft":90}` {
		t.Errorf("Get = %q ok=%v err=%v", val, ok, err)
	}

	// Scoped per user
	if _, ok, _ := s.UserKV("bob@example.com").Get("timer_state"); ok {
		t.Error("kv leaked across users")
	}

	if err := kv.Delete("timer_state"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get("timer_state"); ok {
		t.Error("key still present after delete")
	}
}

func TestStore_FocusTime(t *testing.T) {
	s := newTestStore(t)
	user := "alice@example.com"
	day := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	if err := s.AddFocusTime(user, day, 25); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFocusTime(user, day, 5); err != nil {
		t.Fatal(err)
	}

	got, err := s.FocusTime(user, day)
	if err != nil || got != 30 {
		t.Errorf("FocusTime = %d, %v; want 30", got, err)
	}

	// Different day starts at zero
	if got, _ := s.FocusTime(user, day.AddDate(0, 0, 1)); got != 0 {
		t.Errorf("next day FocusTime = %d, want 0", got)
	}
}

func TestStore_FocusSessions(t *testing.T) {
	s := newTestStore(t)
	user := "alice@example.com"
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	fs := domain.FocusSession{Type: domain.SessionWork, Duration: 25, Completed: true}
	if err := s.AddFocusSession(user, fs, at); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFocusSession(user, fs, at.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	// Previous day should not count
	if err := s.AddFocusSession(user, fs, at.AddDate(0, 0, -1)); err != nil {
		t.Fatal(err)
	}

	n, err := s.CountFocusSessions(user, at)
	if err != nil || n != 2 {
		t.Errorf("CountFocusSessions = %d, %v; want 2", n, err)
	}

	sessions, err := s.ListFocusSessions(user, at)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("ListFocusSessions = %d entries, want 2", len(sessions))
	}
	if sessions[0].Type != domain.SessionWork || sessions[0].Duration != 25 || !sessions[0].Completed {
		t.Errorf("session = %+v", sessions[0])
	}
}

func TestStore_Notifications(t *testing.T) {
	s := newTestStore(t)
	user := "alice@example.com"

	for i := 0; i < maxNotifications+10; i++ {
		if err := s.AddNotification(user, "focus_complete", "Focus Session Complete", "Great job!", "🎯"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListNotifications(user)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != maxNotifications {
		t.Errorf("kept %d notifications, want %d", len(got), maxNotifications)
	}
	if got[0].Read {
		t.Error("new notifications should be unread")
	}

	if err := s.MarkNotificationsRead(user); err != nil {
		t.Fatal(err)
	}
	got, _ = s.ListNotifications(user)
	for _, n := range got {
		if !n.Read {
			t.Error("notification still unread after MarkNotificationsRead")
			break
		}
	}
}

func TestStore_Workspaces(t *testing.T) {
	s := newTestStore(t)

	ws, err := s.CreateWorkspace("Design Team", "alice@example.com", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(ws.Code) != 6 {
		t.Errorf("invite code = %q, want 6 chars", ws.Code)
	}

	joined, err := s.JoinWorkspace(ws.Code, "bob@example.com", "Bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(joined.Members) != 2 {
		t.Errorf("members = %d, want 2", len(joined.Members))
	}

	if _, err := s.JoinWorkspace("NOPE99", "eve@example.com", "Eve"); err != ErrWorkspaceNotFound {
		t.Errorf("join unknown code error = %v, want ErrWorkspaceNotFound", err)
	}

	msgs, err := s.ListMessages(ws.Code, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Welcome plus join announcement, chronological
	if len(msgs) != 2 || msgs[0].Type != "system" {
		t.Errorf("messages = %+v", msgs)
	}

	if err := s.AppendMessage(ws.Code, Message{Sender: "bob@example.com", SenderName: "Bob", Body: "hi all"}); err != nil {
		t.Fatal(err)
	}
	msgs, _ = s.ListMessages(ws.Code, 0)
	if len(msgs) != 3 || msgs[2].Body != "hi all" {
		t.Errorf("messages after append = %+v", msgs)
	}

	mine, err := s.ListWorkspacesFor("bob@example.com")
	if err != nil || len(mine) != 1 {
		t.Errorf("ListWorkspacesFor = %v, %v", mine, err)
	}

	if n, _ := s.CountWorkspaces(); n != 1 {
		t.Errorf("CountWorkspaces = %d, want 1", n)
	}
}

func TestStore_Users(t *testing.T) {
	s := newTestStore(t)

	s.UpsertTask("alice@example.com", &domain.Task{ID: "1", Title: "x", Priority: domain.PriorityLow, Status: domain.StatusTodo})
	s.UserKV("bob@example.com").Set("timer_state", "{}")
	s.AddFocusTime("carol@example.com", time.Now(), 10)

	users, err := s.Users()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	if len(users) != len(want) {
		t.Fatalf("Users = %v", users)
	}
	for i := range want {
		if users[i] != want[i] {
			t.Errorf("Users[%d] = %s, want %s", i, users[i], want[i])
		}
	}
}
