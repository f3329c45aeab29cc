// Package api exposes the TaskFlow HTTP interface: task CRUD, the
// scoring endpoints, per-user timer transport, activity, notifications,
// workspaces, and admin views.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/taskflowhq/taskflow/internal/activity"
	"github.com/taskflowhq/taskflow/internal/chat"
	"github.com/taskflowhq/taskflow/internal/notify"
	"github.com/taskflowhq/taskflow/internal/store"
	"github.com/taskflowhq/taskflow/internal/timer"
)

// Server is the HTTP API server
type Server struct {
	store    *store.Store
	timers   *timer.Manager
	feed     *activity.Log
	chat     *chat.Hub
	notifier notify.Notifier
	addr     string
	mux      *http.ServeMux
	sseHub   *SSEHub
	started  time.Time
}

// NewServer creates a new API server. notifier may be nil.
func NewServer(st *store.Store, timers *timer.Manager, hub *chat.Hub, feed *activity.Log, notifier notify.Notifier, addr string) *Server {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	s := &Server{
		store:    st,
		timers:   timers,
		feed:     feed,
		chat:     hub,
		notifier: notifier,
		addr:     addr,
		mux:      http.NewServeMux(),
		sseHub:   NewSSEHub(),
		started:  time.Now(),
	}
	s.setupRoutes()
	go s.sseHub.Run()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.healthHandler())

	s.mux.HandleFunc("/api/tasks", s.tasksHandler())
	s.mux.HandleFunc("/api/tasks/", s.taskByIDHandler())

	s.mux.HandleFunc("/api/ai/prioritize", s.prioritizeHandler())
	s.mux.HandleFunc("/api/ai/daily-review", s.dailyReviewHandler())

	s.mux.HandleFunc("/api/timer", s.timerStateHandler())
	s.mux.HandleFunc("/api/timer/", s.timerActionHandler())

	s.mux.HandleFunc("/api/activity", s.activityHandler())

	s.mux.HandleFunc("/api/notifications", s.listNotificationsHandler())
	s.mux.HandleFunc("/api/notifications/read", s.readNotificationsHandler())

	s.mux.HandleFunc("/api/workspaces", s.workspacesHandler())
	s.mux.HandleFunc("/api/workspaces/join", s.joinWorkspaceHandler())
	s.mux.HandleFunc("/api/workspaces/", s.workspaceSubHandler())

	s.mux.HandleFunc("/api/admin/stats", s.adminStatsHandler())
	s.mux.HandleFunc("/api/admin/users", s.adminUsersHandler())
	s.mux.HandleFunc("/api/admin/export", s.adminExportHandler())

	s.mux.HandleFunc("/api/events", s.sseHandler())
}

// Handler returns the server's route mux
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return http.ListenAndServe(s.addr, s.mux)
}

// Broadcast sends an event to all SSE clients
func (s *Server) Broadcast(event SSEEvent) {
	s.sseHub.Broadcast(event)
}

// NotifySink returns a notifier that mirrors every delivery to SSE
// clients as a notification event
func (s *Server) NotifySink() notify.Notifier {
	return notify.FuncNotifier(func(n notify.Notification) error {
		s.Broadcast(SSEEvent{Type: EventNotification, Data: n})
		return nil
	})
}

func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// userParam extracts the required user query parameter
func userParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "user parameter required")
		return "", false
	}
	return user, true
}
