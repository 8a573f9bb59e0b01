package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/host"

	"hostwatch/internal/alerts"
	"hostwatch/internal/db"
	"hostwatch/internal/metrics"
	"hostwatch/internal/triggerlog"
)

const version = "0.1.0"

//go:embed templates/*.html
var webFS embed.FS

// Server is the thin HTTP surface over the metric store, the alert store
// and the trigger log.
type Server struct {
	repo     *db.Repository
	rules    *alerts.Store
	triggers *triggerlog.Logger
	log      *slog.Logger
	tpl      *template.Template
}

func NewServer(repo *db.Repository, rules *alerts.Store, triggers *triggerlog.Logger, logger *slog.Logger) *Server {
	tpl := template.Must(template.ParseFS(webFS, "templates/*.html"))
	return &Server{repo: repo, rules: rules, triggers: triggers, log: logger, tpl: tpl}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/metrics/cpu", s.handleLatest(metrics.CategoryCPU))
	mux.HandleFunc("/metrics/memory", s.handleLatest(metrics.CategoryMemory))
	mux.HandleFunc("/metrics/disk", s.handleLatest(metrics.CategoryDisk))
	mux.HandleFunc("/metrics/cpu/history", s.handleHistory(metrics.CategoryCPU))
	mux.HandleFunc("/metrics/memory/history", s.handleHistory(metrics.CategoryMemory))
	mux.HandleFunc("/metrics/disk/history", s.handleHistory(metrics.CategoryDisk))
	mux.HandleFunc("/alerts/get", s.handleAlertsGet)
	mux.HandleFunc("/alerts/create", s.handleAlertsCreate)
	mux.HandleFunc("/alerts/update", s.handleAlertsUpdate)
	mux.HandleFunc("/alerts/delete/", s.handleAlertsDelete)
	mux.HandleFunc("/alerts/fields", s.handleAlertFields)
	mux.HandleFunc("/logs/get", s.handleLogsGet)
	return logMiddleware(mux, s.log)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	addr := r.Host
	if addr == "" {
		addr = "localhost"
	}
	if err := s.tpl.ExecuteTemplate(w, "index.html", map[string]any{"URL": addr}); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	uptime, _ := host.UptimeWithContext(r.Context())
	writeJSON(w, map[string]any{
		"status":   "ok",
		"version":  version,
		"hostname": hostname,
		"uptime":   uptime,
	})
}

func (s *Server) handleLatest(c metrics.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.repo.Latest(r.Context(), c)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, snap)
	}
}

func (s *Server) handleHistory(c metrics.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := queryUnix(r, "start", time.Unix(0, 0))
		end := queryUnix(r, "end", time.Now())
		ctx := r.Context()

		var out any
		var err error
		switch c {
		case metrics.CategoryCPU:
			out, err = s.repo.CPUHistory(ctx, start, end)
		case metrics.CategoryMemory:
			out, err = s.repo.MemoryHistory(ctx, start, end)
		case metrics.CategoryDisk:
			out, err = s.repo.DiskHistory(ctx, start, end)
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, out)
	}
}

func (s *Server) handleAlertsGet(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.Load()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, rules)
}

func (s *Server) handleAlertsCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var rule alerts.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if _, err := s.rules.Add(rule); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, "Success")
}

func (s *Server) handleAlertsUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var rule alerts.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := s.rules.Update(rule); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, "Success")
}

func (s *Server) handleAlertsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/alerts/delete/"))
	if err != nil {
		http.Error(w, "invalid alert id", 400)
		return
	}
	if err := s.rules.Remove(id); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, "Success")
}

func (s *Server) handleAlertFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, metrics.FieldKeys())
}

func (s *Server) handleLogsGet(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid n", 400)
			return
		}
		n = parsed
	}
	lines, err := s.triggers.Get(n)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, lines)
}

func queryUnix(r *http.Request, key string, fallback time.Time) time.Time {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return time.Unix(sec, 0)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
