// Package api exposes the activity log and the assistant over HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/gardenlog/internal/assistant"
	"github.com/pbaille/gardenlog/internal/domain"
	"github.com/pbaille/gardenlog/internal/logbook"
)

// Server handles HTTP requests for the activity log API
type Server struct {
	book      *logbook.Book
	assistant *assistant.Assistant
	lang      domain.Language
	logger    *zap.Logger
	addr      string
}

// Option configures a Server
type Option func(*Server)

// WithLanguage sets the language used when a request names none
func WithLanguage(lang domain.Language) Option {
	return func(s *Server) {
		s.lang = lang
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new API server
func New(book *logbook.Book, a *assistant.Assistant, addr string, opts ...Option) *Server {
	s := &Server{
		book:      book,
		assistant: a,
		lang:      domain.English,
		logger:    zap.NewNop(),
		addr:      addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Logs
	mux.HandleFunc("GET /logs", s.listLogs)
	mux.HandleFunc("POST /logs", s.addLog)
	mux.HandleFunc("GET /logs/{id}", s.getLog)
	mux.HandleFunc("DELETE /logs/{id}", s.deleteLog)
	mux.HandleFunc("POST /logs/{id}/tags", s.addTag)
	mux.HandleFunc("DELETE /logs/{id}/tags/{tag}", s.removeTag)
	mux.HandleFunc("PUT /logs/{id}/date", s.updateDate)

	// Tags
	mux.HandleFunc("GET /tags", s.listTags)

	// Questions
	mux.HandleFunc("POST /ask", s.ask)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return s.withLogging(withCORS(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LogView is a log entry with its localized tag names
type LogView struct {
	domain.LogEntry
	Tags []string `json:"tags"`
}

func (s *Server) view(e domain.LogEntry, lang domain.Language) LogView {
	tags := s.book.LocalizedTags(e, lang)
	if tags == nil {
		tags = []string{}
	}
	return LogView{LogEntry: e, Tags: tags}
}

func (s *Server) language(r *http.Request) domain.Language {
	if l := r.URL.Query().Get("lang"); l != "" {
		return domain.ParseLanguage(l)
	}
	return s.lang
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	var logs []domain.LogEntry
	if tag := r.URL.Query().Get("tag"); tag != "" {
		logs = s.book.LogsWithTag(tag)
	} else {
		logs = s.book.SortedLogs()
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n < len(logs) {
			logs = logs[:n]
		}
	}

	lang := s.language(r)
	views := make([]LogView, 0, len(logs))
	for _, e := range logs {
		views = append(views, s.view(e, lang))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  views,
		"count": len(views),
	})
}

// AddLogRequest is the request body for adding a log
type AddLogRequest struct {
	Text string `json:"text"`
}

func (s *Server) addLog(w http.ResponseWriter, r *http.Request) {
	var req AddLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.book.AddLog(req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	writeJSON(w, http.StatusCreated, s.view(*entry, s.language(r)))
}

// lookup resolves the {id} path value, accepting unique id prefixes
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (domain.LogEntry, bool) {
	id := r.PathValue("id")
	if e, ok := s.book.Log(id); ok {
		return e, true
	}
	if e, ok := s.book.FindByPrefix(id); ok {
		return e, true
	}
	writeError(w, http.StatusNotFound, "log not found")
	return domain.LogEntry{}, false
}

func (s *Server) getLog(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(e, s.language(r)))
}

func (s *Server) deleteLog(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := s.book.DeleteLog(e.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTagRequest is the request body for tagging a log
type AddTagRequest struct {
	Tag string `json:"tag"`
}

func (s *Server) addTag(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req AddTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Tag) == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}

	if err := s.book.AddTag(req.Tag, e.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeLog(w, r, e.ID)
}

func (s *Server) removeTag(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := s.book.RemoveTag(r.PathValue("tag"), e.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeLog(w, r, e.ID)
}

// UpdateDateRequest is the request body for changing a log's date
type UpdateDateRequest struct {
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) updateDate(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req UpdateDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CreatedAt.IsZero() {
		writeError(w, http.StatusBadRequest, "createdAt is required")
		return
	}

	if err := s.book.UpdateLogDate(e.ID, req.CreatedAt); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeLog(w, r, e.ID)
}

func (s *Server) writeLog(w http.ResponseWriter, r *http.Request, id string) {
	e, ok := s.book.Log(id)
	if !ok {
		writeError(w, http.StatusNotFound, "log not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view(e, s.language(r)))
}

// TagView is a tag id with its localized name
type TagView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	lang := s.language(r)

	var ids []string
	if suggested, _ := strconv.ParseBool(r.URL.Query().Get("suggested")); suggested {
		ids = s.book.AllSuggestedTagIDs(lang)
	} else {
		ids = s.book.AvailableTagIDs(lang)
	}

	tags := make([]TagView, 0, len(ids))
	for _, id := range ids {
		name, ok := s.book.TagName(id, lang)
		if !ok {
			name = id
		}
		tags = append(tags, TagView{ID: id, Name: name})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tags": tags,
	})
}

// AskRequest is the request body for asking a question
type AskRequest struct {
	Question string `json:"question"`
	Lang     string `json:"lang,omitempty"`
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lang := s.language(r)
	if req.Lang != "" {
		lang = domain.ParseLanguage(req.Lang)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"answer": s.assistant.Answer(req.Question, lang),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
