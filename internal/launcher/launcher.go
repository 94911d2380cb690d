// Package launcher serves an endpoint that starts the dashboard process.
package launcher

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Launcher spawns the dashboard on every request to its root endpoint.
// Children are not supervised: start failures and exit status are only logged.
type Launcher struct {
	Command []string
	// Env is appended to the launcher's own environment.
	Env     []string
	Message string

	run func(cmd *exec.Cmd) error
}

// New creates a Launcher that starts command with DASHBOARD_ADDR set to dashboardAddr.
func New(command []string, dashboardAddr string) *Launcher {
	return &Launcher{
		Command: command,
		Env:     []string{"DASHBOARD_ADDR=" + dashboardAddr},
		Message: fmt.Sprintf("Dashboard is running on port %s", port(dashboardAddr)),
		run:     startAndWait,
	}
}

func port(addr string) string {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		return p
	}
	return strings.TrimPrefix(addr, ":")
}

// Handler builds the router.
func (l *Launcher) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", l.handleLaunch)
	return r
}

func (l *Launcher) handleLaunch(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] launch requested request_id=%s", middleware.GetReqID(r.Context()))
	go l.spawn()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, l.Message)
}

func (l *Launcher) spawn() {
	if len(l.Command) == 0 {
		log.Println("[ERROR] launch: no command configured")
		return
	}
	cmd := exec.Command(l.Command[0], l.Command[1:]...)
	cmd.Env = append(os.Environ(), l.Env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	start := time.Now()
	if err := l.run(cmd); err != nil {
		log.Printf("[ERROR] dashboard %q exited after %s: %v",
			strings.Join(l.Command, " "), time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("[INFO] dashboard %q exited after %s",
		strings.Join(l.Command, " "), time.Since(start).Round(time.Millisecond))
}

// startAndWait starts cmd and reaps it once it exits.
func startAndWait(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	log.Printf("[INFO] dashboard started pid=%d", cmd.Process.Pid)
	return cmd.Wait()
}
