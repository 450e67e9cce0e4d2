// Package server serves the interactive dashboard: one upload per browser
// session, filters in the query string, CSV export of the filtered view.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/harrisonrobin/baronboard/pkg/export"
	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/i18n"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/render"
	"github.com/harrisonrobin/baronboard/pkg/report"
	"github.com/harrisonrobin/baronboard/pkg/session"
	"github.com/harrisonrobin/baronboard/pkg/util"
	"go.uber.org/zap"
)

const (
	sessionCookie = "baronboard_session"

	// multipart parts above this spill to temp files
	formMemory = 8 << 20

	shutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr           string
	Extract        extract.Options
	MaxUploadBytes int64
	CacheSize      int
	Printer        *i18n.Printer
	// Now is the clock; handlers read it once per request.
	Now func() time.Time
}

// Server is the dashboard web server.
type Server struct {
	opts  Options
	mux   *http.ServeMux
	memo  *session.Memo
	store *session.Store
}

// New creates a server with empty session state.
func New(opts Options) (*Server, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Printer == nil {
		opts.Printer = i18n.New("en")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	memo, err := session.NewMemo(opts.CacheSize)
	if err != nil {
		return nil, err
	}
	store, err := session.NewStore(session.DefaultStoreSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:  opts,
		mux:   http.NewServeMux(),
		memo:  memo,
		store: store,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("GET /export.csv", s.handleExport)
}

// Handler is the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// StartContext listens on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) StartContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.S().Warnf("server shutdown: %v", err)
		}
	}()

	zap.S().Infof("serving dashboard on http://%s", ln.Addr())
	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := &render.DashboardView{Filter: parseFilter(r)}
	upload, ok := s.store.Get(sessionID(r))
	if !ok {
		s.writeDashboard(w, http.StatusOK, view)
		return
	}

	rep, err := s.memo.Report(r.Context(), upload, s.opts.Extract, util.Today(s.opts.Now()))
	if err != nil {
		view.Error = s.opts.Printer.Error(err)
		s.writeDashboard(w, http.StatusUnprocessableEntity, view)
		return
	}
	view.Report = rep.Filter(view.Filter)
	s.writeDashboard(w, http.StatusOK, view)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	now := s.opts.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, s.opts.Printer.T("The upload is too large."))
			return
		}
		s.writeError(w, http.StatusBadRequest, s.opts.Printer.T("No file was uploaded."))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, s.opts.Printer.T("No file was uploaded."))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, s.opts.Printer.T("No file was uploaded."))
		return
	}

	upload := session.NewUpload(header.Filename, data, now)
	if _, err := s.memo.Report(r.Context(), upload, s.opts.Extract, util.Today(now)); err != nil {
		zap.S().Infof("rejected upload %s: %v", header.Filename, err)
		s.writeError(w, http.StatusUnprocessableEntity, s.opts.Printer.Error(err))
		return
	}

	id := sessionID(r)
	if id == "" {
		id = s.store.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	s.store.Put(id, upload)
	zap.S().Infof("session %s uploaded %s (%d bytes)", id, header.Filename, len(data))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	now := s.opts.Now()
	upload, ok := s.store.Get(sessionID(r))
	if !ok {
		http.Error(w, s.opts.Printer.T("Upload a spreadsheet to start"), http.StatusNotFound)
		return
	}
	rep, err := s.memo.Report(r.Context(), upload, s.opts.Extract, util.Today(now))
	if err != nil {
		http.Error(w, s.opts.Printer.Error(err), http.StatusUnprocessableEntity)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rep.Filter(parseFilter(r)).Records); err != nil {
		zap.S().Errorf("export: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(now)))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeDashboard(w, status, &render.DashboardView{Error: msg})
}

func (s *Server) writeDashboard(w http.ResponseWriter, status int, view *render.DashboardView) {
	var buf bytes.Buffer
	if err := render.Dashboard(&buf, view, s.opts.Printer); err != nil {
		zap.S().Errorf("render dashboard: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// parseFilter reads the status, requester and q query parameters. Unknown
// status labels are ignored.
func parseFilter(r *http.Request) report.Filter {
	q := r.URL.Query()
	var f report.Filter
	for _, label := range q["status"] {
		if s, err := model.ParseStatus(label); err == nil {
			f.Statuses = append(f.Statuses, s)
		}
	}
	for _, name := range q["requester"] {
		if name != "" {
			f.Requesters = append(f.Requesters, name)
		}
	}
	f.Query = q.Get("q")
	return f
}
