package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/taskflowhq/taskflow/internal/activity"
	"github.com/taskflowhq/taskflow/internal/chat"
	"github.com/taskflowhq/taskflow/internal/domain"
	"github.com/taskflowhq/taskflow/internal/notify"
	"github.com/taskflowhq/taskflow/internal/scoring"
	"github.com/taskflowhq/taskflow/internal/store"
	"github.com/taskflowhq/taskflow/internal/timer"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	timers := timer.NewManager(timer.DefaultConfig(), func(user string) timer.Deps {
		return timer.Deps{
			Snapshots: timer.NewKVSnapshotStore(st.UserKV(user)),
			Focus:     st.UserFocus(user, nil),
			User:      user,
		}
	})

	hub := chat.NewHub(func(code string, m chat.Message) error {
		return st.AppendMessage(code, store.Message{
			ID:         m.ID,
			Sender:     m.Sender,
			SenderName: m.SenderName,
			Body:       m.Body,
			Type:       m.Type,
			Timestamp:  m.Timestamp,
		})
	})

	return NewServer(st, timers, hub, activity.NewLog(), notify.NoopNotifier{}, ":0")
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestTasksCRUD(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, "POST", "/api/tasks?user=alice@example.com",
		`{"title":"Write report","priority":"high","status":"todo","project":"work"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body)
	}
	var created domain.Task
	json.NewDecoder(w.Body).Decode(&created)
	if created.ID == "" {
		t.Fatal("create did not assign an id")
	}

	w = do(t, s, "GET", "/api/tasks?user=alice@example.com", "")
	var tasks []domain.Task
	json.NewDecoder(w.Body).Decode(&tasks)
	if len(tasks) != 1 || tasks[0].Title != "Write report" {
		t.Errorf("list = %+v", tasks)
	}

	w = do(t, s, "PUT", "/api/tasks/"+created.ID+"?user=alice@example.com",
		`{"title":"Write report","priority":"high","status":"completed","project":"work"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body)
	}

	w = do(t, s, "GET", "/api/tasks/"+created.ID+"?user=alice@example.com", "")
	var got domain.Task
	json.NewDecoder(w.Body).Decode(&got)
	if got.Status != domain.StatusCompleted {
		t.Errorf("Status = %s after update", got.Status)
	}

	w = do(t, s, "DELETE", "/api/tasks/"+created.ID+"?user=alice@example.com", "")
	if w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	w = do(t, s, "DELETE", "/api/tasks/"+created.ID+"?user=alice@example.com", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestTasks_StatusFilter(t *testing.T) {
	s := newTestServer(t)

	do(t, s, "POST", "/api/tasks?user=alice@example.com",
		`{"title":"A","priority":"high","status":"completed"}`)
	do(t, s, "POST", "/api/tasks?user=alice@example.com",
		`{"title":"B","priority":"low","status":"todo"}`)

	w := do(t, s, "GET", "/api/tasks?user=alice@example.com&status=completed", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var tasks []domain.Task
	json.NewDecoder(w.Body).Decode(&tasks)
	if len(tasks) != 1 || tasks[0].Title != "A" {
		t.Errorf("filtered list = %+v, want only the completed task", tasks)
	}

	if w = do(t, s, "GET", "/api/tasks?user=alice@example.com&status=done", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status filter = %d, want 400", w.Code)
	}
}

func TestTasks_Validation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		path string
		body string
	}{
		{"missing user", "/api/tasks", `{"title":"x","priority":"high","status":"todo"}`},
		{"bad priority", "/api/tasks?user=a@b.c", `{"title":"x","priority":"urgent","status":"todo"}`},
		{"bad status", "/api/tasks?user=a@b.c", `{"title":"x","priority":"high","status":"done"}`},
		{"negative timeSpent", "/api/tasks?user=a@b.c", `{"title":"x","priority":"high","status":"todo","timeSpent":-5}`},
		{"missing title", "/api/tasks?user=a@b.c", `{"priority":"high","status":"todo"}`},
		{"bad dueDate", "/api/tasks?user=a@b.c", `{"title":"x","priority":"high","status":"todo","dueDate":"tomorrow"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, s, "POST", tc.path, tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body)
			}
		})
	}

	if w := do(t, s, "PUT", "/api/tasks/nope?user=a@b.c",
		`{"title":"x","priority":"high","status":"todo"}`); w.Code != http.StatusNotFound {
		t.Errorf("update unknown id status = %d, want 404", w.Code)
	}
}

func TestPrioritizeHandler(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, "POST", "/api/ai/prioritize",
		`{"tasks":[{"id":"1","title":"A","priority":"high","status":"todo"},{"id":"2","title":"B","priority":"low","status":"todo"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var result scoring.PrioritizeResult
	json.NewDecoder(w.Body).Decode(&result)
	if len(result.PrioritizedTasks) != 2 || result.PrioritizedTasks[0] != "1" {
		t.Errorf("ranking = %v, want high-priority task first", result.PrioritizedTasks)
	}
	if len(result.Recommendations) == 0 || result.Insights == "" {
		t.Errorf("missing recommendations or insights: %+v", result)
	}
}

func TestPrioritizeHandler_BadInput(t *testing.T) {
	s := newTestServer(t)

	for name, body := range map[string]string{
		"no tasks field":  `{}`,
		"tasks not array": `{"tasks":"nope"}`,
		"malformed json":  `{`,
		"invalid enum":    `{"tasks":[{"id":"1","title":"A","priority":"urgent","status":"todo"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			if w := do(t, s, "POST", "/api/ai/prioritize", body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}

	if w := do(t, s, "GET", "/api/ai/prioritize", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", w.Code)
	}
}

func TestDailyReviewHandler(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, "POST", "/api/ai/daily-review",
		`{"tasks":[{"id":"1","title":"A","priority":"high","status":"completed"}],"completedTasks":1,"timeSpent":95,"focusSessions":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var review scoring.Review
	json.NewDecoder(w.Body).Decode(&review)
	if review.Score <= 0 || review.Summary == "" {
		t.Errorf("review = %+v", review)
	}
	if len(review.TomorrowFocus) < 2 {
		t.Errorf("TomorrowFocus = %v", review.TomorrowFocus)
	}
}

func TestTimerEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, "GET", "/api/timer?user=alice@example.com", "")
	var state timer.Snapshot
	json.NewDecoder(w.Body).Decode(&state)
	if state.TimeLeft != 1500 || state.IsRunning {
		t.Fatalf("initial state = %+v", state)
	}

	w = do(t, s, "POST", "/api/timer/start?user=alice@example.com", "")
	json.NewDecoder(w.Body).Decode(&state)
	if !state.IsRunning {
		t.Error("start did not run the timer")
	}

	w = do(t, s, "POST", "/api/timer/pause?user=alice@example.com", "")
	json.NewDecoder(w.Body).Decode(&state)
	if state.IsRunning {
		t.Error("pause left the timer running")
	}

	w = do(t, s, "POST", "/api/timer/skip?user=alice@example.com", "")
	json.NewDecoder(w.Body).Decode(&state)
	if state.SessionType != domain.SessionBreak || state.CompletedSessions != 1 {
		t.Errorf("after skip: %+v", state)
	}

	// Skipping a work session credits the full duration
	deadline := time.Now().Add(2 * time.Second)
	for {
		minutes, err := s.store.FocusTime("alice@example.com", time.Now())
		if err != nil {
			t.Fatal(err)
		}
		if minutes == 25 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("focus time = %d, want 25", minutes)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if w = do(t, s, "POST", "/api/timer/explode?user=alice@example.com", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown action status = %d, want 404", w.Code)
	}
	if w = do(t, s, "POST", "/api/timer/start", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing user status = %d, want 400", w.Code)
	}
}

func TestTimerEndpoints_PerUserIsolation(t *testing.T) {
	s := newTestServer(t)

	do(t, s, "POST", "/api/timer/start?user=alice@example.com", "")

	w := do(t, s, "GET", "/api/timer?user=bob@example.com", "")
	var state timer.Snapshot
	json.NewDecoder(w.Body).Decode(&state)
	if state.IsRunning {
		t.Error("bob's timer is running because alice started hers")
	}
}

func TestActivityHandler(t *testing.T) {
	s := newTestServer(t)

	if w := do(t, s, "POST", "/api/activity", `{"user":"alice"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing action status = %d, want 400", w.Code)
	}

	w := do(t, s, "POST", "/api/activity", `{"user":"alice","action":"completed a task"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}

	w = do(t, s, "GET", "/api/activity", "")
	var entries []activity.Entry
	json.NewDecoder(w.Body).Decode(&entries)
	if len(entries) != 1 || entries[0].Action != "completed a task" {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].Ago == "" {
		t.Error("entry missing humanized timestamp")
	}
}

func TestNotificationsFlow(t *testing.T) {
	s := newTestServer(t)

	if err := s.store.AddNotification("alice@example.com", "focus_complete", "Focus Session Complete", "Great job! You focused for 25 minutes", "🎯"); err != nil {
		t.Fatal(err)
	}

	w := do(t, s, "GET", "/api/notifications?user=alice@example.com", "")
	var notifications []store.Notification
	json.NewDecoder(w.Body).Decode(&notifications)
	if len(notifications) != 1 || notifications[0].Read {
		t.Fatalf("notifications = %+v", notifications)
	}

	if w = do(t, s, "POST", "/api/notifications/read?user=alice@example.com", ""); w.Code != http.StatusOK {
		t.Fatalf("mark read status = %d", w.Code)
	}

	w = do(t, s, "GET", "/api/notifications?user=alice@example.com", "")
	json.NewDecoder(w.Body).Decode(&notifications)
	if !notifications[0].Read {
		t.Error("notification still unread")
	}
}

func TestWorkspacesAPI(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, "POST", "/api/workspaces",
		`{"name":"Design Team","creatorEmail":"alice@example.com","creatorName":"Alice"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body)
	}
	var ws store.Workspace
	json.NewDecoder(w.Body).Decode(&ws)
	if len(ws.Code) != 6 {
		t.Fatalf("invite code = %q, want 6 characters", ws.Code)
	}

	w = do(t, s, "POST", "/api/workspaces/join",
		`{"inviteCode":"`+ws.Code+`","email":"bob@example.com","name":"Bob"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("join status = %d, body %s", w.Code, w.Body)
	}
	var joined store.Workspace
	json.NewDecoder(w.Body).Decode(&joined)
	if len(joined.Members) != 2 {
		t.Errorf("members = %+v, want 2", joined.Members)
	}

	w = do(t, s, "GET", "/api/workspaces/"+ws.Code+"/messages", "")
	var messages []store.Message
	json.NewDecoder(w.Body).Decode(&messages)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want welcome + join", len(messages))
	}
	if messages[0].Type != "system" || !strings.Contains(messages[0].Body, "Welcome to Design Team") {
		t.Errorf("first message = %+v", messages[0])
	}

	w = do(t, s, "GET", "/api/workspaces?user=bob@example.com", "")
	var list []store.Workspace
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 1 || list[0].Code != ws.Code {
		t.Errorf("bob's workspaces = %+v", list)
	}

	if w = do(t, s, "POST", "/api/workspaces/join",
		`{"inviteCode":"ZZZZZZ","email":"eve@example.com","name":"Eve"}`); w.Code != http.StatusNotFound {
		t.Errorf("join unknown code status = %d, want 404", w.Code)
	}
	if w = do(t, s, "GET", "/api/workspaces/ZZZZZZ/messages", ""); w.Code != http.StatusNotFound {
		t.Errorf("messages for unknown code status = %d, want 404", w.Code)
	}
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)

	do(t, s, "POST", "/api/tasks?user=alice@example.com",
		`{"title":"A","priority":"high","status":"completed"}`)
	do(t, s, "POST", "/api/tasks?user=alice@example.com",
		`{"title":"B","priority":"low","status":"todo"}`)
	do(t, s, "POST", "/api/tasks?user=bob@example.com",
		`{"title":"C","priority":"medium","status":"todo"}`)
	do(t, s, "POST", "/api/workspaces",
		`{"name":"Team","creatorEmail":"alice@example.com","creatorName":"Alice"}`)

	w := do(t, s, "GET", "/api/admin/stats", "")
	var stats AdminStats
	json.NewDecoder(w.Body).Decode(&stats)
	if stats.Users != 2 || stats.Tasks != 3 || stats.CompletedTasks != 1 || stats.Workspaces != 1 {
		t.Errorf("stats = %+v", stats)
	}

	w = do(t, s, "GET", "/api/admin/users", "")
	var users []AdminUser
	json.NewDecoder(w.Body).Decode(&users)
	if len(users) != 2 {
		t.Fatalf("users = %+v", users)
	}

	w = do(t, s, "GET", "/api/admin/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "alice@example.com") || !strings.Contains(body, "title: A") {
		t.Errorf("export missing task data:\n%s", body)
	}
}

func TestNotifySink_BroadcastsToSSEClients(t *testing.T) {
	s := newTestServer(t)

	client := make(chan SSEEvent, 1)
	s.sseHub.register <- client
	defer func() { s.sseHub.unregister <- client }()

	// Let the hub pick up the registration before broadcasting
	time.Sleep(10 * time.Millisecond)

	err := s.NotifySink().Send(notify.Notification{
		User:  "alice@example.com",
		Kind:  "daily_review",
		Title: "Daily Review: 79/100",
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case event := <-client:
		if event.Type != EventNotification {
			t.Errorf("event type = %q, want %q", event.Type, EventNotification)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification never reached the SSE client")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	if w := do(t, s, "GET", "/api/health", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}
