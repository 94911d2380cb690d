package launcher

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	l := New([]string{"./dashboard"}, ":8501")
	if l.Message != "Dashboard is running on port 8501" {
		t.Errorf("message = %q", l.Message)
	}
	if len(l.Env) != 1 || l.Env[0] != "DASHBOARD_ADDR=:8501" {
		t.Errorf("env = %v", l.Env)
	}
	if got := port("127.0.0.1:9000"); got != "9000" {
		t.Errorf("port = %q", got)
	}
}

func TestLaunchRespondsBeforeChildExits(t *testing.T) {
	release := make(chan struct{})
	started := make(chan *exec.Cmd, 1)

	l := New([]string{"dashboard", "-flag"}, ":8501")
	l.run = func(cmd *exec.Cmd) error {
		started <- cmd
		<-release
		return nil
	}
	defer close(release)

	srv := httptest.NewServer(l.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || string(body) != "Dashboard is running on port 8501" {
		t.Errorf("response = %d %q", resp.StatusCode, body)
	}

	select {
	case cmd := <-started:
		if len(cmd.Args) != 2 || cmd.Args[1] != "-flag" {
			t.Errorf("args = %v", cmd.Args)
		}
		found := false
		for _, e := range cmd.Env {
			if e == "DASHBOARD_ADDR=:8501" {
				found = true
			}
		}
		if !found {
			t.Error("DASHBOARD_ADDR not passed to child")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("spawn never ran")
	}
}

func TestLaunchIgnoresStartFailure(t *testing.T) {
	called := make(chan struct{}, 1)
	l := New([]string{"dashboard"}, ":8501")
	l.run = func(*exec.Cmd) error {
		called <- struct{}{}
		return errors.New("exec: not found")
	}

	srv := httptest.NewServer(l.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "8501") {
		t.Errorf("response = %d %q", resp.StatusCode, body)
	}

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("spawn never ran")
	}
}

func TestStartAndWaitMissingBinary(t *testing.T) {
	cmd := exec.Command("/nonexistent/dashboard-binary")
	if err := startAndWait(cmd); err == nil {
		t.Fatal("expected start error")
	}
}
