package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/smallnest/goequip"
	"github.com/smallnest/goequip/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyFixture(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "testdata", "enodeb_01.txt"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func newTestAPI(t *testing.T) (*WebAPI, string) {
	t.Helper()
	dir := t.TempDir()
	copyFixture(t, dir, "enodeb_01.txt")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ragged.txt"), []byte(
		"+++ NE_R 2024\nO&M #1\n%%LST CELL:;%%\nRETCODE = 0  Operation succeeded.\n\nCell Information\n---\n"+
			"Local Cell ID  Cell Name\n1  A  extra\n\n(Number of results = 1)\n---    END\n"), 0644))

	logger := zerolog.New(zerolog.NewTestWriter(t))
	return NewWebAPI(logger, Config{ReportsDir: dir}), dir
}

func do(t *testing.T, api *WebAPI, target string, v any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	if v != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
	}
	return rec.Code
}

func TestListReports(t *testing.T) {
	api, _ := newTestAPI(t)

	var got []ReportSummary
	require.Equal(t, http.StatusOK, do(t, api, "/api/v1/reports", &got))
	require.Len(t, got, 2)
	assert.Equal(t, ReportSummary{Name: "enodeb_01", Element: "ENODEB_01", Status: "Operation succeeded."}, got[0])
	assert.Equal(t, "NE_R", got[1].Element)
}

func TestGetReport(t *testing.T) {
	api, _ := newTestAPI(t)

	var got ReportSummary
	require.Equal(t, http.StatusOK, do(t, api, "/api/v1/reports/enodeb_01", &got))
	assert.Equal(t, "ENODEB_01", got.Element)

	require.Equal(t, http.StatusOK, do(t, api, "/api/v1/reports/enodeb_01.txt", &got))
	assert.Equal(t, "Operation succeeded.", got.Status)
}

func TestGetTable(t *testing.T) {
	api, _ := newTestAPI(t)

	var view render.View
	require.Equal(t, http.StatusOK, do(t, api, "/api/v1/reports/enodeb_01/table", &view))
	assert.Equal(t, []string{"1", "2", "3"}, view.Table.Keys)
	assert.Equal(t, goequip.Record{"Cell Name": "NodeB", "Column_2": "12", "Column_3": "qux"}, view.Table.Records["2"])
}

func TestGetColumn(t *testing.T) {
	api, _ := newTestAPI(t)

	var col ColumnResponse
	require.Equal(t, http.StatusOK, do(t, api, "/api/v1/reports/enodeb_01/columns/Cell%20Name", &col))
	assert.Equal(t, "Cell Name", col.Column)
	assert.Equal(t, []string{"NodeA", "NodeB", "NodeC"}, col.Values)

	col = ColumnResponse{}
	require.Equal(t, http.StatusOK, do(t, api, "/api/v1/reports/enodeb_01/columns/Column_3?key=1", &col))
	assert.Equal(t, "Column_3: id 1 -> bar", col.Cell)
}

func TestGetColumnStats(t *testing.T) {
	api, _ := newTestAPI(t)

	var cs goequip.ColumnStats
	require.Equal(t, http.StatusOK, do(t, api, "/api/v1/reports/enodeb_01/columns/Column_2/stats", &cs))
	assert.Equal(t, 2, cs.Count)
	assert.Equal(t, 21.0, cs.Mean)
}

func TestErrorStatus(t *testing.T) {
	api, _ := newTestAPI(t)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/v1/reports/missing", http.StatusNotFound},
		{"/api/v1/reports/enodeb_01/columns/Missing", http.StatusNotFound},
		{"/api/v1/reports/enodeb_01/columns/Column_3?key=999", http.StatusNotFound},
		{"/api/v1/reports/ragged/table", http.StatusUnprocessableEntity},
		{"/api/v1/reports/enodeb_01/columns/Cell%20Name/stats", http.StatusUnprocessableEntity},
		{"/api/v1/reports/.hidden", http.StatusBadRequest},
	}
	for _, tt := range tests {
		var resp errorResponse
		assert.Equal(t, tt.want, do(t, api, tt.target, &resp), tt.target)
		assert.NotEmpty(t, resp.Error, tt.target)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&goequip.NotFoundError{Path: "x.txt"}, http.StatusNotFound},
		{goequip.ErrColumnNotFound, http.StatusNotFound},
		{goequip.ErrDuplicateKey, http.StatusUnprocessableEntity},
		{goequip.ErrEmptyHeader, http.StatusUnprocessableEntity},
		{fmt.Errorf("stats: %w", goequip.ErrNoNumericValues), http.StatusUnprocessableEntity},
		{errBadName, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestHealthz(t *testing.T) {
	api, _ := newTestAPI(t)
	var got map[string]string
	require.Equal(t, http.StatusOK, do(t, api, "/healthz", &got))
	assert.Equal(t, "ok", got["status"])
}

func TestStartStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	api := NewWebAPI(zerolog.Nop(), Config{Addr: addr, ReportsDir: t.TempDir()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- api.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
