package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bankfeed-dev/bankfeed/internal/belfius"
	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

// maxUploadSize bounds statement uploads; exports of tens of thousands of
// rows stay well under this.
const maxUploadSize = 16 << 20

// importResponse is the success payload of POST /api/imports.
type importResponse struct {
	Success bool               `json:"success"`
	Summary *importer.Summary  `json:"summary"`
	Errors  []belfius.RowError `json:"errors"`
}

// handleCreateImport accepts a multipart statement upload and runs the
// import. The upload is staged to a temp file that is removed on every
// exit path.
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	staged, err := stageUpload(file)
	if err != nil {
		s.log.Error().Err(err).Msg("staging upload")
		writeError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	defer os.Remove(staged)

	content, err := os.ReadFile(staged)
	if err != nil {
		s.log.Error().Err(err).Msg("reading staged upload")
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	summary, err := s.imports.Import(r.Context(), content, header.Filename)
	if err != nil {
		var dup *importer.DuplicateFileError
		if errors.As(err, &dup) {
			writeError(w, http.StatusConflict, dup.Error())
			return
		}
		var parseErr *importer.ParseError
		if errors.As(err, &parseErr) {
			writeError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		s.log.Error().Err(err).Str("filename", header.Filename).Msg("import failed")
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	errs := summary.RowErrors
	if errs == nil {
		errs = []belfius.RowError{}
	}
	writeJSON(w, http.StatusOK, importResponse{
		Success: true,
		Summary: summary,
		Errors:  errs,
	})
}

// stageUpload copies an upload to a uniquely named temp file and returns
// its path. The caller owns removal.
func stageUpload(src io.Reader) (string, error) {
	path := filepath.Join(os.TempDir(), "bankfeed-upload-"+uuid.NewString()+".csv")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating staging file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing staging file: %w", err)
	}
	return path, nil
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.ListImportLogs(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("listing import logs")
		writeError(w, http.StatusInternalServerError, "failed to list imports")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imports": logs,
		"count":   len(logs),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TransactionFilter{
		Account: q.Get("account"),
		From:    q.Get("from"),
		To:      q.Get("to"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	txs, total, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		s.log.Error().Err(err).Msg("listing transactions")
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"total":        total,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("computing stats")
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.log.Error().Err(err).Uint64("id", id).Msg("deleting transaction")
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
