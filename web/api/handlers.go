package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskflowhq/taskflow/internal/domain"
	"github.com/taskflowhq/taskflow/internal/scoring"
	"github.com/taskflowhq/taskflow/internal/store"
)

func (s *Server) tasksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userParam(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			status := domain.Status(r.URL.Query().Get("status"))
			if status != "" && !status.Valid() {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status filter %q", status))
				return
			}
			opts := store.ListOptions{
				Status:  status,
				Project: r.URL.Query().Get("project"),
			}
			tasks, err := s.store.ListTasks(user, opts)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if tasks == nil {
				tasks = []domain.Task{}
			}
			writeJSON(w, tasks)

		case http.MethodPost:
			var task domain.Task
			if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
				writeError(w, http.StatusBadRequest, "invalid task JSON")
				return
			}
			if task.Title == "" {
				writeError(w, http.StatusBadRequest, "title required")
				return
			}
			if err := task.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if task.ID == "" {
				task.ID = uuid.NewString()
			}
			if err := s.store.UpsertTask(user, &task); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSONStatus(w, http.StatusCreated, task)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) taskByIDHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userParam(w, r)
		if !ok {
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusBadRequest, "task ID required")
			return
		}

		switch r.Method {
		case http.MethodGet:
			task, err := s.store.GetTask(user, id)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if task == nil {
				writeError(w, http.StatusNotFound, "task not found")
				return
			}
			writeJSON(w, task)

		case http.MethodPut:
			existing, err := s.store.GetTask(user, id)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if existing == nil {
				writeError(w, http.StatusNotFound, "task not found")
				return
			}

			var task domain.Task
			if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
				writeError(w, http.StatusBadRequest, "invalid task JSON")
				return
			}
			task.ID = id
			if err := task.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if err := s.store.UpsertTask(user, &task); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, task)

		case http.MethodDelete:
			deleted, err := s.store.DeleteTask(user, id)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if !deleted {
				writeError(w, http.StatusNotFound, "task not found")
				return
			}
			writeJSON(w, map[string]string{"status": "deleted"})

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) prioritizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req struct {
			Tasks *[]domain.Task `json:"tasks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tasks == nil {
			writeError(w, http.StatusBadRequest, "Invalid request: tasks array required")
			return
		}
		for i := range *req.Tasks {
			if err := (*req.Tasks)[i].Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		writeJSON(w, scoring.Prioritize(*req.Tasks, time.Now()))
	}
}

func (s *Server) dailyReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req struct {
			Tasks          []domain.Task `json:"tasks"`
			CompletedTasks int           `json:"completedTasks"`
			TimeSpent      int           `json:"timeSpent"`
			FocusSessions  int           `json:"focusSessions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request JSON")
			return
		}

		writeJSON(w, scoring.DailyReview(req.Tasks, req.CompletedTasks, req.TimeSpent, req.FocusSessions, time.Now()))
	}
}

func (s *Server) timerStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		user, ok := userParam(w, r)
		if !ok {
			return
		}
		writeJSON(w, s.timers.Get(user).State())
	}
}

func (s *Server) timerActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		user, ok := userParam(w, r)
		if !ok {
			return
		}

		action := strings.TrimPrefix(r.URL.Path, "/api/timer/")
		engine := s.timers.Get(user)

		switch action {
		case "start":
			engine.Start()
		case "pause":
			engine.Pause()
		case "stop":
			engine.Stop()
		case "reset":
			engine.Reset()
		case "skip":
			engine.Skip()
		default:
			writeError(w, http.StatusNotFound, "unknown timer action")
			return
		}

		state := engine.State()
		s.Broadcast(SSEEvent{Type: EventTimerUpdate, Data: map[string]interface{}{
			"user":  user,
			"state": state,
		}})
		writeJSON(w, state)
	}
}

func (s *Server) activityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, s.feed.Recent())

		case http.MethodPost:
			var req struct {
				User   string `json:"user"`
				Action string `json:"action"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" || req.Action == "" {
				writeError(w, http.StatusBadRequest, "Missing user or action")
				return
			}
			entry := s.feed.Add(req.User, req.Action)
			s.Broadcast(SSEEvent{Type: EventActivity, Data: entry})
			writeJSONStatus(w, http.StatusCreated, entry)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) listNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		user, ok := userParam(w, r)
		if !ok {
			return
		}
		notifications, err := s.store.ListNotifications(user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if notifications == nil {
			notifications = []store.Notification{}
		}
		writeJSON(w, notifications)
	}
}

func (s *Server) readNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		user, ok := userParam(w, r)
		if !ok {
			return
		}
		if err := s.store.MarkNotificationsRead(user); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	}
}

func (s *Server) workspacesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			user, ok := userParam(w, r)
			if !ok {
				return
			}
			workspaces, err := s.store.ListWorkspacesFor(user)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if workspaces == nil {
				workspaces = []store.Workspace{}
			}
			writeJSON(w, workspaces)

		case http.MethodPost:
			var req struct {
				Name         string `json:"name"`
				CreatorEmail string `json:"creatorEmail"`
				CreatorName  string `json:"creatorName"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.CreatorEmail == "" {
				writeError(w, http.StatusBadRequest, "name and creatorEmail required")
				return
			}
			ws, err := s.store.CreateWorkspace(req.Name, req.CreatorEmail, req.CreatorName)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSONStatus(w, http.StatusCreated, ws)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) joinWorkspaceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req struct {
			InviteCode string `json:"inviteCode"`
			Email      string `json:"email"`
			Name       string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InviteCode == "" || req.Email == "" {
			writeError(w, http.StatusBadRequest, "inviteCode and email required")
			return
		}

		ws, err := s.store.JoinWorkspace(strings.ToUpper(req.InviteCode), req.Email, req.Name)
		if errors.Is(err, store.ErrWorkspaceNotFound) {
			writeError(w, http.StatusNotFound, "workspace not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, ws)
	}
}

// workspaceSubHandler routes /api/workspaces/{code}/messages and
// /api/workspaces/{code}/ws
func (s *Server) workspaceSubHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/workspaces/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			writeError(w, http.StatusBadRequest, "workspace code required")
			return
		}
		code := strings.ToUpper(parts[0])

		if _, err := s.store.GetWorkspace(code); errors.Is(err, store.ErrWorkspaceNotFound) {
			writeError(w, http.StatusNotFound, "workspace not found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		switch parts[1] {
		case "messages":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			messages, err := s.store.ListMessages(code, 100)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if messages == nil {
				messages = []store.Message{}
			}
			writeJSON(w, messages)

		case "ws":
			user, ok := userParam(w, r)
			if !ok {
				return
			}
			name := r.URL.Query().Get("name")
			if err := s.chat.ServeWS(w, r, code, user, name); err != nil {
				// Upgrade already wrote the HTTP error response
				return
			}

		default:
			writeError(w, http.StatusNotFound, "not found")
		}
	}
}
