// Package web serves the comparison as a single-page browser UI backed by a
// small JSON API, with websocket-driven live reload in watch mode.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/thiagokokada/diffy-go/internal/dirdiff"
	"github.com/thiagokokada/diffy-go/internal/watch"
)

//go:embed index.html
var indexHTML []byte

// Config carries everything the web front-end needs to start.
type Config struct {
	Left           string
	Right          string
	IncludeIgnored bool
	Excludes       []string
	Port           int
	Open           bool
	Watch          bool
}

// apiResponse is the envelope every API endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Server exposes the comparison over HTTP.
type Server struct {
	core *dirdiff.Core
	hub  *hub
}

func NewServer(core *dirdiff.Core) *Server {
	return &Server{core: core, hub: newHub()}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/diff", s.handleDiff)
	mux.HandleFunc("/api/file", s.handleFile)
	mux.HandleFunc("/api/events", s.hub.serve)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Error: "method not allowed"})
		return
	}
	result, err := s.core.Analyze()
	if err != nil {
		slog.Error("analyze failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: result})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Error: "method not allowed"})
		return
	}
	rel, err := cleanRelPath(r.URL.Query().Get("path"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: err.Error()})
		return
	}
	diff, err := s.core.FileDiff(rel)
	if err != nil {
		slog.Error("file diff failed", slog.String("path", rel), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: diff})
}

// cleanRelPath validates a client-supplied relative path. Anything that could
// escape the comparison roots is rejected.
func cleanRelPath(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("missing path parameter")
	}
	rel := strings.ReplaceAll(raw, "\\", "/")
	if strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("absolute path not allowed: %q", raw)
	}
	cleaned := path.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path escapes comparison root: %q", raw)
	}
	return cleaned, nil
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encode response", slog.Any("error", err))
	}
}

// Run serves the comparison until interrupted.
func Run(cfg Config) error {
	core := dirdiff.New(cfg.Left, cfg.Right)
	core.IncludeIgnored = cfg.IncludeIgnored
	core.Excludes = cfg.Excludes

	server := NewServer(core)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	url := fmt.Sprintf("http://%s", ln.Addr())

	if cfg.Watch {
		w, err := watch.Start([]string{cfg.Left, cfg.Right}, func() {
			server.hub.broadcast("reload")
		})
		if err != nil {
			slog.Warn("file watching disabled", slog.Any("error", err))
		} else {
			defer w.Close()
		}
	}

	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	slog.Info("serving comparison", slog.String("url", url))
	if cfg.Open {
		if err := openBrowser(url); err != nil {
			slog.Warn("open browser", slog.Any("error", err))
		}
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
