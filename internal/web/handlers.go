package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/clientimport/internal/core"
	"github.com/JonMunkholm/clientimport/internal/csv"
	"github.com/JonMunkholm/clientimport/internal/logging"
	"github.com/JonMunkholm/clientimport/internal/store"
)

// handleHealth reports liveness and the number of imports in flight.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status":        "ok",
		"activeImports": s.limiter.ActiveCount(),
	})
}

// operationInfo describes one registered import operation.
type operationInfo struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	KeyField string   `json:"keyField,omitempty"`
	Columns  []string `json:"columns"`
}

// handleListOperations lists the registered import operations and their
// recognized columns.
func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]operationInfo, len(defs))
	for i, def := range defs {
		out[i] = operationInfo{
			Key:      def.Key,
			Label:    def.Label,
			KeyField: def.KeyField,
			Columns:  def.Columns(),
		}
	}
	writeJSON(w, r, out)
}

// handleDownloadTemplate serves the CSV template for one operation as an
// attachment.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	operation := chi.URLParam(r, "operation")
	def, ok := core.Get(operation)
	if !ok {
		respondError(w, r, fmt.Errorf("unknown import operation %q", operation), http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("clients_%s_template.csv", def.Key)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	io.WriteString(w, def.TemplateCSV())
}

// handleImport parses an uploaded CSV and runs it as one batch.
//
// The file arrives as a multipart "file" field or as the raw request body.
// mode=preview (the default) validates and diffs without touching the
// store; mode=commit applies row by row. The response is the full batch
// result, one outcome per data row in input order. A header-only file is
// not an error: it produces a valid all-zero result.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	operation := chi.URLParam(r, "operation")
	def, ok := core.Get(operation)
	if !ok {
		respondError(w, r, fmt.Errorf("unknown import operation %q", operation), http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxBodySize)

	text, err := s.readImportBody(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(text) == "" {
		respondError(w, r, core.ErrEmptyFile, http.StatusBadRequest)
		return
	}

	mode, err := core.ParseMode(r.FormValue("mode"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	records := csv.MapRecords(csv.Parse(text))

	if err := s.limiter.Acquire(r.Context()); err != nil {
		respondError(w, r, err, http.StatusTooManyRequests)
		return
	}
	defer s.limiter.Release()

	logger := logging.FromContext(r.Context())
	runner := core.NewRunner(s.store.Applier(def),
		core.WithWorkers(s.cfg.Import.Workers),
		core.WithProgress(func(done, total int) {
			logger.Debug("import progress", "operation", def.Key, "done", done, "total", total)
		}, s.cfg.Import.ProgressInterval),
	)

	result := runner.Run(r.Context(), records, mode)

	if mode == core.ModeCommit {
		if _, err := s.store.RecordRun(r.Context(), def.Key, result); err != nil {
			logger.Error("record import run", "operation", def.Key, "error", err)
		}
	}

	logger.Info("import finished",
		"operation", def.Key,
		"mode", string(result.Mode),
		"requested", result.RequestedCount,
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
	)

	writeJSON(w, r, result)
}

// readImportBody extracts CSV text from a multipart "file" field or, for
// non-multipart requests, the raw body. All bytes pass through the
// sanitizing reader so broken encodings cannot poison the tokenizer.
func (s *Server) readImportBody(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.cfg.Import.MaxBodySize); err != nil {
			return "", fmt.Errorf("no file provided: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("no file provided: %w", err)
		}
		defer file.Close()
		return readSanitized(file)
	}
	return readSanitized(r.Body)
}

func readSanitized(r io.Reader) (string, error) {
	data, err := io.ReadAll(csv.NewSanitizingReader(r))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return string(data), nil
}

// handleHistory lists recent import runs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, runs)
}
