package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/csvgate/internal/core"
	"github.com/JonMunkholm/csvgate/internal/report"
	"github.com/JonMunkholm/csvgate/internal/validator"
	"github.com/JonMunkholm/csvgate/internal/web/templates"
)

const (
	// multipartOverhead is the slack allowed above the file size limit for
	// the other form fields and part headers.
	multipartOverhead = 1 << 20

	// multipartMemory is how much of the form is kept in memory before
	// spilling to temporary files.
	multipartMemory = 32 << 20
)

var (
	errBadForm   = errors.New("read multipart form")
	errBadFormat = errors.New("unsupported report format")
)

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.UploadPage(templates.UploadData{
		Projects:    s.service.Profiles(),
		Kinds:       validator.AllKinds,
		MaxFileSize: s.cfg.Upload.MaxFileSize.String(),
	})
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render upload page", "error", err)
	}
}

// handleValidateForm validates a file posted from the upload form and
// renders the result page.
func (s *Server) handleValidateForm(w http.ResponseWriter, r *http.Request) {
	req, err := s.readRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	run, err := s.service.Validate(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.ResultPage(templates.ResultData{
		RunID:    run.ID,
		FileName: run.FileName,
		Project:  run.Project,
		Duration: run.Duration.Round(time.Millisecond).String(),
		Result:   run.Result,
	})
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render result page", "run_id", run.ID, "error", err)
	}
}

// handleValidate validates a multipart upload and returns the run as JSON.
// With ?format=csv|xlsx|json the findings report is returned as a download
// instead.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var format report.Format
	if name := r.URL.Query().Get("format"); name != "" {
		f, err := report.ParseFormat(name)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("%w: %q", errBadFormat, name), 0)
			return
		}
		format = f
	}

	req, err := s.readRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	run, err := s.service.Validate(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if format == "" {
		writeJSON(w, http.StatusOK, run)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(run.FileName)))
	w.Header().Set("X-Run-ID", run.ID)
	w.Header().Set("X-Validation-Outcome", run.Result.Outcome())
	if err := report.Write(w, format, run.Result); err != nil {
		slog.Error("write report", "run_id", run.ID, "format", format, "error", err)
	}
}

// readRequest extracts the file, project and optional column configuration
// from a multipart form.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (core.Request, error) {
	if limit := s.service.MaxFileSize(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return core.Request{}, fmt.Errorf("%w: request body over limit", core.ErrFileTooLarge)
		}
		return core.Request{}, fmt.Errorf("%w: %w", errBadForm, err)
	}

	req := core.Request{Project: r.FormValue("project")}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, core.ErrNoFile
		}
		return req, fmt.Errorf("%w: %w", errBadForm, err)
	}
	defer file.Close()

	req.FileName = header.Filename
	req.Data, err = io.ReadAll(file)
	if err != nil {
		return req, fmt.Errorf("%w: %w", errBadForm, err)
	}

	if cols := r.FormValue("columns"); strings.TrimSpace(cols) != "" {
		req.Columns, err = core.ParseColumnConfig([]byte(cols))
		if err != nil {
			return req, err
		}
	}
	return req, nil
}

// handleListProjects lists the destination projects.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Profiles())
}

type kindInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// handleListKinds lists the data kinds a column can be configured with.
func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := make([]kindInfo, 0, len(validator.AllKinds))
	for _, k := range validator.AllKinds {
		kinds = append(kinds, kindInfo{Name: k.String(), Label: k.Label()})
	}
	writeJSON(w, http.StatusOK, kinds)
}

// handleListRuns lists recent validation runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.RunFilter{
		Project: q.Get("project"),
		Outcome: q.Get("outcome"),
		Limit:   parseIntParam(r, "limit", 0),
		Offset:  parseIntParam(r, "offset", 0),
	}

	runs, err := s.service.RecentRuns(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if runs == nil {
		runs = []core.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns one run summary.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleHealth reports liveness and validation slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"validations": s.service.LimiterStatus(),
	})
}

// parseIntParam parses a non-negative integer query parameter with a default
// value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
