package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/taskflowhq/taskflow/internal/activity"
	"github.com/taskflowhq/taskflow/internal/chat"
	"github.com/taskflowhq/taskflow/internal/config"
	"github.com/taskflowhq/taskflow/internal/domain"
	"github.com/taskflowhq/taskflow/internal/notify"
	"github.com/taskflowhq/taskflow/internal/review"
	"github.com/taskflowhq/taskflow/internal/scoring"
	"github.com/taskflowhq/taskflow/internal/sound"
	"github.com/taskflowhq/taskflow/internal/store"
	"github.com/taskflowhq/taskflow/internal/timer"
	"github.com/taskflowhq/taskflow/tui"
	"github.com/taskflowhq/taskflow/web/api"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var version = "dev"

var (
	servePort      int
	timerUser      string
	prioritizeFile string
	reviewFile     string
	reviewTime     int
	reviewSessions int
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskFlow server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured port")
	rootCmd.AddCommand(serveCmd)

	timerCmd := &cobra.Command{
		Use:   "timer",
		Short: "Run the interactive focus timer",
		RunE:  runTimer,
	}
	timerCmd.Flags().StringVar(&timerUser, "user", "", "user email owning the timer state")
	rootCmd.AddCommand(timerCmd)

	prioritizeCmd := &cobra.Command{
		Use:   "prioritize",
		Short: "Rank a task list by urgency",
		RunE:  runPrioritize,
	}
	prioritizeCmd.Flags().StringVar(&prioritizeFile, "file", "", "YAML or JSON task list (required)")
	prioritizeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(prioritizeCmd)

	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Generate a daily productivity review",
		RunE:  runReview,
	}
	reviewCmd.Flags().StringVar(&reviewFile, "file", "", "YAML or JSON task list (required)")
	reviewCmd.Flags().IntVar(&reviewTime, "time-spent", 0, "focused minutes today")
	reviewCmd.Flags().IntVar(&reviewSessions, "sessions", 0, "focus sessions completed today")
	reviewCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(reviewCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("taskflow %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

// buildNotifier assembles the delivery stack: durable per-user storage
// plus the optional desktop and Slack sinks
func buildNotifier(cfg *config.Config, st *store.Store) notify.Notifier {
	return notify.NewMultiNotifier(
		notify.NewStoreNotifier(st),
		notify.NewDesktopNotifier(cfg.Notifications.Desktop),
		notify.NewSlackNotifier(cfg.Notifications.SlackWebhook),
	)
}

func timerConfig(cfg *config.Config) timer.Config {
	return timer.Config{
		WorkDuration:  cfg.Timer.WorkDuration(),
		BreakDuration: cfg.Timer.BreakDuration(),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	notifier := buildNotifier(cfg, st)
	cues := sound.NewSystemPlayer(cfg.Timer.Sound)

	timers := timer.NewManager(timerConfig(cfg), func(user string) timer.Deps {
		return timer.Deps{
			Snapshots: timer.NewKVSnapshotStore(st.UserKV(user)),
			Focus:     st.UserFocus(user, nil),
			Notifier:  notifier,
			Cues:      cues,
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

	server := api.NewServer(st, timers, hub, activity.NewLog(), notifier, cfg.Server.Addr())

	var g errgroup.Group

	g.Go(func() error {
		log.Printf("serving on http://%s", cfg.Server.Addr())
		return server.Start()
	})

	if cfg.Review.Enabled {
		// Digests also reach live SSE clients
		digestSink := notify.NewMultiNotifier(notifier, server.NotifySink())
		scheduler, err := review.NewScheduler(cfg.Review.Cron, st, digestSink)
		if err != nil {
			return err
		}
		g.Go(func() error {
			log.Printf("daily review scheduled (%s), next run %s", cfg.Review.Cron, scheduler.NextRun().Format(time.Kitchen))
			scheduler.Start()
			return nil
		})
	}

	g.Go(func() error {
		return watchConfig(cfgPath, timers)
	})

	return g.Wait()
}

// watchConfig re-applies timer durations when the config file changes.
// New durations affect engines created after the change.
func watchConfig(path string, timers *timer.Manager) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory; editors often replace the file on save
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Printf("config watch disabled: %v", err)
		return nil
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := config.Load(path)
			if err != nil {
				log.Printf("config reload failed: %v", err)
				continue
			}
			timers.SetConfig(timerConfig(cfg))
			log.Printf("config reloaded: work %dm, break %dm", cfg.Timer.WorkMinutes, cfg.Timer.BreakMinutes)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config watch error: %v", err)
		}
	}
}

func runTimer(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	deps := timer.Deps{
		Notifier: notify.NewDesktopNotifier(cfg.Notifications.Desktop),
		Cues:     sound.NewSystemPlayer(cfg.Timer.Sound),
		User:     timerUser,
	}

	// With a user the timer shares its state with the server
	if timerUser != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
		st, err := store.New(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		deps.Snapshots = timer.NewKVSnapshotStore(st.UserKV(timerUser))
		deps.Focus = st.UserFocus(timerUser, nil)
	}

	engine := timer.New(timerConfig(cfg), deps)

	p := tea.NewProgram(tui.NewModel(engine), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runPrioritize(cmd *cobra.Command, args []string) error {
	tasks, err := loadTaskFile(prioritizeFile)
	if err != nil {
		return err
	}

	result := scoring.Prioritize(tasks, time.Now())

	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	fmt.Println("Prioritized tasks:")
	for i, id := range result.PrioritizedTasks {
		fmt.Printf("  %d. %s\n", i+1, titles[id])
	}
	fmt.Println("\nRecommendations:")
	for _, rec := range result.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
	fmt.Printf("\n%s\n", result.Insights)

	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	tasks, err := loadTaskFile(reviewFile)
	if err != nil {
		return err
	}

	completed := 0
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			completed++
		}
	}

	rev := scoring.DailyReview(tasks, completed, reviewTime, reviewSessions, time.Now())

	fmt.Printf("Score: %d/100\n\n%s\n", rev.Score, rev.Summary)
	fmt.Println("\nAchievements:")
	for _, a := range rev.Achievements {
		fmt.Printf("  - %s\n", a)
	}
	fmt.Println("\nImprovements:")
	for _, i := range rev.Improvements {
		fmt.Printf("  - %s\n", i)
	}
	fmt.Println("\nTomorrow:")
	for _, f := range rev.TomorrowFocus {
		fmt.Printf("  - %s\n", f)
	}
	fmt.Printf("\n%s\n", rev.Insights)

	return nil
}

// loadTaskFile reads a task list from YAML or JSON (YAML is a superset)
func loadTaskFile(path string) ([]domain.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tasks []domain.Task
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
	}
	return tasks, nil
}
