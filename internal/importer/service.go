package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/bankfeed-dev/bankfeed/internal/belfius"
	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// Typed persistence outcomes the Store must report. Anything else coming
// back from a row insert counts as a row error, not a batch failure.
var (
	// ErrDuplicateTransaction is a unique-key conflict on the transaction
	// dedup index: the row was already imported by an overlapping statement.
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	// ErrDuplicateImport is a unique-key conflict on the import log file
	// hash: another import of the same bytes got there first.
	ErrDuplicateImport = errors.New("duplicate import")
)

// Store is the persistence surface the import service needs.
type Store interface {
	FindImportLogByHash(ctx context.Context, hash string) (*model.ImportLog, error)
	CreateImportLog(ctx context.Context, log *model.ImportLog) error
	UpdateImportLog(ctx context.Context, log *model.ImportLog) error
	InsertTransaction(ctx context.Context, tx *model.Transaction) error
}

// DuplicateFileError reports a file whose exact bytes were imported before.
type DuplicateFileError struct {
	Filename   string
	ImportedAt time.Time
}

func (e *DuplicateFileError) Error() string {
	return fmt.Sprintf("file already imported as %q at %s", e.Filename, e.ImportedAt.Format(time.RFC3339))
}

// ParseError reports a file that could not be parsed at all. The import
// log, if one was created, has been marked failed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parsing statement file: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// Bounds on the row-error samples: the import log keeps the first
// logErrorSample serialized, the caller-facing summary the first
// summaryErrorSample.
const (
	logErrorSample     = 10
	summaryErrorSample = 5
)

// Summary is the caller-visible outcome of one statement import.
type Summary struct {
	ImportLogID  uint               `json:"importLogId"`
	Filename     string             `json:"filename"`
	TotalRecords int                `json:"totalRecords"`
	Imported     int                `json:"imported"`
	Skipped      int                `json:"skipped"`
	Errored      int                `json:"errors"`
	RowErrors    []belfius.RowError `json:"-"`
}

// Service runs statement imports: fingerprint, duplicate check, parse,
// per-row persistence, import log bookkeeping.
type Service struct {
	store  Store
	parser Parser
	log    zerolog.Logger
}

// NewService creates an import Service.
func NewService(store Store, parser Parser, log zerolog.Logger) *Service {
	return &Service{store: store, parser: parser, log: log}
}

// Import ingests one statement file. Row-level failures are folded into
// the summary; only a duplicate file or a file that cannot be parsed at
// all produce an error.
func (s *Service) Import(ctx context.Context, content []byte, filename string) (*Summary, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	prior, err := s.store.FindImportLogByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("looking up prior import: %w", err)
	}
	if prior != nil {
		return nil, &DuplicateFileError{Filename: prior.Filename, ImportedAt: prior.ImportedAt}
	}

	importLog := &model.ImportLog{
		FileHash:   hash,
		Filename:   filename,
		Status:     model.ImportStatusProcessing,
		ImportedAt: time.Now(),
	}
	if err := s.store.CreateImportLog(ctx, importLog); err != nil {
		if errors.Is(err, ErrDuplicateImport) {
			// Lost the check-then-insert race; treat it exactly like a
			// prior import.
			if prior, ferr := s.store.FindImportLogByHash(ctx, hash); ferr == nil && prior != nil {
				return nil, &DuplicateFileError{Filename: prior.Filename, ImportedAt: prior.ImportedAt}
			}
			return nil, &DuplicateFileError{Filename: filename, ImportedAt: time.Now()}
		}
		return nil, fmt.Errorf("creating import log: %w", err)
	}

	result, parseErr := s.parser.Parse(content)
	if parseErr != nil {
		s.failImport(ctx, importLog, parseErr)
		return nil, &ParseError{Err: parseErr}
	}

	rowErrors := append([]belfius.RowError(nil), result.RowErrors...)
	imported, skipped := 0, 0

	for i := range result.Rows {
		row := result.Rows[i]
		err := s.store.InsertTransaction(ctx, &row.Transaction)
		switch {
		case err == nil:
			imported++
		case errors.Is(err, ErrDuplicateTransaction):
			skipped++
		default:
			rowErrors = append(rowErrors, belfius.RowError{Row: row.Row, Message: err.Error()})
		}
	}
	sort.Slice(rowErrors, func(i, j int) bool { return rowErrors[i].Row < rowErrors[j].Row })

	now := time.Now()
	importLog.Status = model.ImportStatusCompleted
	importLog.TotalRecords = len(result.Rows) + len(result.RowErrors)
	importLog.ImportedRecords = imported
	importLog.SkippedRecords = skipped
	importLog.ErrorRecords = len(rowErrors)
	importLog.ErrorMessage = serializeErrors(rowErrors, logErrorSample)
	importLog.CompletedAt = &now

	if err := s.store.UpdateImportLog(ctx, importLog); err != nil {
		return nil, fmt.Errorf("finalizing import log: %w", err)
	}

	s.log.Info().
		Str("filename", filename).
		Str("file_hash", hash).
		Int("total", importLog.TotalRecords).
		Int("imported", imported).
		Int("skipped", skipped).
		Int("errors", len(rowErrors)).
		Int("structural_skips", result.SkippedRows).
		Msg("statement import completed")

	return &Summary{
		ImportLogID:  importLog.ID,
		Filename:     filename,
		TotalRecords: importLog.TotalRecords,
		Imported:     imported,
		Skipped:      skipped,
		Errored:      len(rowErrors),
		RowErrors:    truncateErrors(rowErrors, summaryErrorSample),
	}, nil
}

// ImportFile reads and imports a statement file from disk.
func (s *Service) ImportFile(ctx context.Context, path string) (*Summary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement file: %w", err)
	}
	return s.Import(ctx, content, filepath.Base(path))
}

// failImport marks the import log failed after a parse failure. No
// transaction rows exist at this point.
func (s *Service) failImport(ctx context.Context, importLog *model.ImportLog, cause error) {
	now := time.Now()
	msg := cause.Error()
	importLog.Status = model.ImportStatusFailed
	importLog.ErrorMessage = &msg
	importLog.CompletedAt = &now

	if err := s.store.UpdateImportLog(ctx, importLog); err != nil {
		s.log.Error().Err(err).Uint("import_log_id", importLog.ID).Msg("marking import failed")
	}
}

func serializeErrors(rowErrors []belfius.RowError, limit int) *string {
	if len(rowErrors) == 0 {
		return nil
	}
	data, err := json.Marshal(truncateErrors(rowErrors, limit))
	if err != nil {
		return nil
	}
	msg := string(data)
	return &msg
}

func truncateErrors(rowErrors []belfius.RowError, limit int) []belfius.RowError {
	if len(rowErrors) > limit {
		return rowErrors[:limit]
	}
	return rowErrors
}
