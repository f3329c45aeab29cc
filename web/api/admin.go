package api

import (
	"net/http"
	"time"

	"github.com/taskflowhq/taskflow/internal/domain"
	"github.com/taskflowhq/taskflow/internal/store"
	"gopkg.in/yaml.v3"
)

var listAll = store.ListOptions{}

// AdminStats is the aggregate view over all stored state
type AdminStats struct {
	Users          int    `json:"users"`
	Tasks          int    `json:"tasks"`
	CompletedTasks int    `json:"completedTasks"`
	Workspaces     int    `json:"workspaces"`
	Uptime         string `json:"uptime"`
}

// AdminUser is a per-user summary row
type AdminUser struct {
	Email          string `json:"email"`
	Tasks          int    `json:"tasks"`
	CompletedTasks int    `json:"completedTasks"`
}

func (s *Server) adminStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		users, err := s.store.Users()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		stats := AdminStats{
			Users:  len(users),
			Uptime: time.Since(s.started).Round(time.Second).String(),
		}

		for _, u := range users {
			tasks, err := s.store.ListTasks(u, listAll)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			stats.Tasks += len(tasks)
			for _, t := range tasks {
				if t.Status == domain.StatusCompleted {
					stats.CompletedTasks++
				}
			}
		}

		workspaces, err := s.store.CountWorkspaces()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		stats.Workspaces = workspaces

		writeJSON(w, stats)
	}
}

func (s *Server) adminUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		users, err := s.store.Users()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		rows := make([]AdminUser, 0, len(users))
		for _, u := range users {
			tasks, err := s.store.ListTasks(u, listAll)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			row := AdminUser{Email: u, Tasks: len(tasks)}
			for _, t := range tasks {
				if t.Status == domain.StatusCompleted {
					row.CompletedTasks++
				}
			}
			rows = append(rows, row)
		}

		writeJSON(w, rows)
	}
}

// adminExportHandler dumps every user's tasks as YAML
func (s *Server) adminExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		users, err := s.store.Users()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		export := make(map[string][]domain.Task, len(users))
		for _, u := range users {
			tasks, err := s.store.ListTasks(u, listAll)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			export[u] = tasks
		}

		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Disposition", `attachment; filename="taskflow-export.yaml"`)
		if err := yaml.NewEncoder(w).Encode(export); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}
