package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pbaille/gardenlog/internal/assistant"
	"github.com/pbaille/gardenlog/internal/catalog"
	"github.com/pbaille/gardenlog/internal/domain"
	"github.com/pbaille/gardenlog/internal/logbook"
	"github.com/pbaille/gardenlog/internal/store"
	"github.com/pbaille/gardenlog/internal/tagger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T, texts ...string) (*Server, *logbook.Book) {
	t.Helper()

	tg := tagger.New(catalog.Definitions())
	n := 0
	book, err := logbook.Open(store.NewMemory(), tg,
		logbook.WithClock(func() time.Time { return now }),
		logbook.WithIDGenerator(func() string {
			n++
			return "log-" + string(rune('a'+n-1))
		}))
	require.NoError(t, err)

	for _, text := range texts {
		_, err := book.AddLog(text)
		require.NoError(t, err)
	}

	a := assistant.New(book, tg, assistant.WithClock(func() time.Time { return now }))
	return New(book, a, "127.0.0.1:0"), book
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newServer(t)
	rec := do(t, s, http.MethodOptions, "/logs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestAddLog(t *testing.T) {
	s, book := newServer(t)

	rec := do(t, s, http.MethodPost, "/logs", `{"text": "  Regué el limonero  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decode[LogView](t, rec)
	assert.Equal(t, "log-a", got.ID)
	assert.Equal(t, "Regué el limonero", got.Text)
	assert.Equal(t, []string{"limon"}, got.TagIDs)
	assert.Equal(t, []string{"Lemon"}, got.Tags)
	assert.Equal(t, 1, book.Len())
}

func TestAddLog_Blank(t *testing.T) {
	s, book := newServer(t)

	rec := do(t, s, http.MethodPost, "/logs", `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"text is required"}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/logs", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, book.Len())
}

func TestListLogs(t *testing.T) {
	s, _ := newServer(t, "watered the lemon", "harvested corn", "pruned the lemon tree")

	rec := do(t, s, http.MethodGet, "/logs?tag=limon&lang=es", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[struct {
		Logs  []LogView `json:"logs"`
		Count int       `json:"count"`
	}](t, rec)
	assert.Equal(t, 2, got.Count)
	for _, l := range got.Logs {
		assert.Contains(t, l.Tags, "Limon")
	}

	rec = do(t, s, http.MethodGet, "/logs?limit=1", "")
	got = decode[struct {
		Logs  []LogView `json:"logs"`
		Count int       `json:"count"`
	}](t, rec)
	assert.Equal(t, 1, got.Count)
}

func TestGetLog(t *testing.T) {
	s, _ := newServer(t, "harvested corn")

	rec := do(t, s, http.MethodGet, "/logs/log-a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "harvested corn", decode[LogView](t, rec).Text)

	rec = do(t, s, http.MethodGet, "/logs/log-", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/logs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"log not found"}`, rec.Body.String())
}

func TestDeleteLog(t *testing.T) {
	s, book := newServer(t, "harvested corn")

	rec := do(t, s, http.MethodDelete, "/logs/log-a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, book.Len())

	rec = do(t, s, http.MethodDelete, "/logs/log-a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTags_AddAndRemove(t *testing.T) {
	s, book := newServer(t, "harvested corn")

	rec := do(t, s, http.MethodPost, "/logs/log-a/tags", `{"tag": " Ñandú "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cosecha", "maiz", "nandu"}, decode[LogView](t, rec).TagIDs)

	rec = do(t, s, http.MethodPost, "/logs/log-a/tags", `{"tag": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/logs/log-a/tags/maiz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	e, ok := book.Log("log-a")
	require.True(t, ok)
	assert.Equal(t, []string{"cosecha", "nandu"}, e.TagIDs)

	rec = do(t, s, http.MethodPost, "/logs/nope/tags", `{"tag": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateDate(t *testing.T) {
	s, book := newServer(t, "harvested corn")

	rec := do(t, s, http.MethodPut, "/logs/log-a/date", `{"createdAt": "2024-02-03T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	e, _ := book.Log("log-a")
	assert.Equal(t, time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC), e.CreatedAt.UTC())
	assert.JSONEq(t, `"2024-02-03T10:00:00Z"`, string(decode[map[string]json.RawMessage](t, rec)["createdAt"]))

	// request and response share the entry's key casing
	rec = do(t, s, http.MethodPut, "/logs/log-a/date", `{"created_at": "2023-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/logs/log-a/date", `{"createdAt": "yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/logs/log-a/date", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTags(t *testing.T) {
	s, _ := newServer(t, "harvested corn", "watered the lemon")

	rec := do(t, s, http.MethodGet, "/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Tags []TagView `json:"tags"`
	}](t, rec)
	assert.Equal(t, []TagView{
		{ID: "maiz", Name: "Corn"},
		{ID: "cosecha", Name: "Harvest"},
		{ID: "riego", Name: "Irrigation"},
		{ID: "limon", Name: "Lemon"},
	}, got.Tags)

	rec = do(t, s, http.MethodGet, "/tags?suggested=true&lang=es", "")
	got = decode[struct {
		Tags []TagView `json:"tags"`
	}](t, rec)
	assert.Len(t, got.Tags, len(catalog.IDs()))
	assert.Equal(t, TagView{ID: "abono", Name: "Abono"}, got.Tags[0])
}

func TestAsk(t *testing.T) {
	s, _ := newServer(t, "harvested corn")

	rec := do(t, s, http.MethodPost, "/ask", `{"question": "", "lang": "es"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"answer": "Hazme una pregunta sobre tus registros de actividad."},
		decode[map[string]string](t, rec))

	rec = do(t, s, http.MethodPost, "/ask", `{"question": "did I harvest corn?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(decode[map[string]string](t, rec)["answer"], "Yes, I found 1 matching log."))
}

func TestDefaultLanguage(t *testing.T) {
	s, _ := newServer(t)
	WithLanguage(domain.Spanish)(s)

	rec := do(t, s, http.MethodPost, "/ask", `{"question": " "}`)
	assert.Equal(t, "Hazme una pregunta sobre tus registros de actividad.", decode[map[string]string](t, rec)["answer"])
}

func TestRun_Shutdown(t *testing.T) {
	s, _ := newServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
