package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankfeed-dev/bankfeed/internal/belfius"
	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/logger"
	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

type fakeImports struct {
	summary  *importer.Summary
	err      error
	gotName  string
	gotBytes []byte
}

func (f *fakeImports) Import(_ context.Context, content []byte, filename string) (*importer.Summary, error) {
	f.gotBytes = content
	f.gotName = filename
	return f.summary, f.err
}

type fakeTxStore struct {
	txs       []model.Transaction
	total     int64
	logs      []model.ImportLog
	stats     *store.Stats
	deleteErr error
	gotFilter store.TransactionFilter
	deletedID uint
}

func (f *fakeTxStore) ListTransactions(_ context.Context, filter store.TransactionFilter) ([]model.Transaction, int64, error) {
	f.gotFilter = filter
	return f.txs, f.total, nil
}

func (f *fakeTxStore) DeleteTransaction(_ context.Context, id uint) error {
	f.deletedID = id
	return f.deleteErr
}

func (f *fakeTxStore) ListImportLogs(_ context.Context) ([]model.ImportLog, error) {
	return f.logs, nil
}

func (f *fakeTxStore) Stats(_ context.Context) (*store.Stats, error) {
	return f.stats, nil
}

func newTestServer(imports ImportService, st TransactionStore) *Server {
	return NewServer(imports, st, logger.Nop())
}

func uploadRequest(t *testing.T, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateImport_Success(t *testing.T) {
	imports := &fakeImports{summary: &importer.Summary{
		Filename:     "statement.csv",
		TotalRecords: 10,
		Imported:     8,
		Skipped:      0,
		Errored:      2,
		RowErrors: []belfius.RowError{
			{Row: 3, Message: `invalid amount "kapot"`},
			{Row: 7, Message: `invalid amount "kapot"`},
		},
	}}
	srv := newTestServer(imports, &fakeTxStore{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "Rekening;Bedrag\n"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "statement.csv", imports.gotName)

	var resp struct {
		Success bool `json:"success"`
		Summary struct {
			TotalRecords int `json:"totalRecords"`
			Imported     int `json:"imported"`
			Skipped      int `json:"skipped"`
			Errors       int `json:"errors"`
		} `json:"summary"`
		Errors []belfius.RowError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 10, resp.Summary.TotalRecords)
	assert.Equal(t, 8, resp.Summary.Imported)
	assert.Equal(t, 2, resp.Summary.Errors)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, 3, resp.Errors[0].Row)
}

func TestCreateImport_DuplicateFileIsConflict(t *testing.T) {
	imports := &fakeImports{err: &importer.DuplicateFileError{
		Filename:   "statement.csv",
		ImportedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}}
	srv := newTestServer(imports, &fakeTxStore{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "x"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "already imported")
	assert.Contains(t, resp["error"], "2024-01-15")
}

func TestCreateImport_ParseFailureIsBadRequest(t *testing.T) {
	imports := &fakeImports{err: &importer.ParseError{Err: belfius.ErrNoTransactions}}
	srv := newTestServer(imports, &fakeTxStore{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "garbage"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "no valid transactions")
}

func TestCreateImport_OtherErrorIsInternal(t *testing.T) {
	imports := &fakeImports{err: errors.New("db down")}
	srv := newTestServer(imports, &fakeTxStore{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "x"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateImport_MissingFile(t *testing.T) {
	srv := newTestServer(&fakeImports{}, &fakeTxStore{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTransactions_Filter(t *testing.T) {
	st := &fakeTxStore{
		txs: []model.Transaction{{
			AccountNumber: "BE68539007547034",
			BookingDate:   "2024-01-15",
			Amount:        decimal.RequireFromString("-125.50"),
			Currency:      "EUR",
		}},
		total: 1,
	}
	srv := newTestServer(&fakeImports{}, st)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/transactions?account=BE68539007547034&from=2024-01-01&to=2024-01-31&page=2&per_page=25", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BE68539007547034", st.gotFilter.Account)
	assert.Equal(t, "2024-01-01", st.gotFilter.From)
	assert.Equal(t, "2024-01-31", st.gotFilter.To)
	assert.Equal(t, 2, st.gotFilter.Page)
	assert.Equal(t, 25, st.gotFilter.PerPage)

	var resp struct {
		Transactions []model.Transaction `json:"transactions"`
		Total        int64               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "2024-01-15", resp.Transactions[0].BookingDate)
}

func TestListImports(t *testing.T) {
	st := &fakeTxStore{logs: []model.ImportLog{
		{Filename: "januari.csv", Status: model.ImportStatusCompleted},
	}}
	srv := newTestServer(&fakeImports{}, st)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Imports []model.ImportLog `json:"imports"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestStats(t *testing.T) {
	st := &fakeTxStore{stats: &store.Stats{
		TotalCount:  3,
		TotalCredit: decimal.RequireFromString("250.00"),
		TotalDebit:  decimal.RequireFromString("-193.90"),
	}}
	srv := newTestServer(&fakeImports{}, st)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp store.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.True(t, resp.TotalCredit.Equal(decimal.RequireFromString("250.00")))
}

func TestDeleteTransaction(t *testing.T) {
	st := &fakeTxStore{}
	srv := newTestServer(&fakeImports{}, st)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/42", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint(42), st.deletedID)
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	st := &fakeTxStore{deleteErr: store.ErrNotFound}
	srv := newTestServer(&fakeImports{}, st)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/42", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(&fakeImports{}, &fakeTxStore{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
