package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
	"github.com/goliatone/go-formdoc/pkg/renderers/text"
	"github.com/goliatone/go-formdoc/pkg/renderers/tui"
	"github.com/goliatone/go-formdoc/pkg/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	manager, err := storage.NewManager(store)
	require.NoError(t, err)
	_, err = manager.Load(context.Background())
	require.NoError(t, err)

	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	require.NoError(t, err)
	registry.MustRegister(htmlRenderer)
	registry.MustRegister(text.New())
	registry.MustRegister(text.New(text.WithFormat(text.FormatJSON)))
	prompter, err := tui.New()
	require.NoError(t, err)
	registry.MustRegister(prompter)

	srv, err := New(manager, registry, WithMetrics("/metrics"))
	require.NoError(t, err)
	return srv, store
}

func do(t *testing.T, h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, render.NewRegistry())
	require.Error(t, err)
}

func TestHealthzAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestConfigLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"templates"`)
	assert.NotContains(t, rec.Body.String(), `"template":`)
	assert.Contains(t, rec.Body.String(), "\n  \"form\"")

	rec = do(t, h, http.MethodPut, "/api/config", `{"form":{}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_FORMAT")

	imported := `{"form":{"sections":[{"name":"s","label":"S","fields":[{"name":"n","label":"N"}]}]},"templates":[{"label":"T","sections":[{"content":"Hi {{N}}"}]}]}`
	rec = do(t, h, http.MethodPut, "/api/config", imported)
	require.Equal(t, http.StatusOK, rec.Code)
	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(saved), `"templates"`)

	rec = do(t, h, http.MethodGet, "/api/config/normalized", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var normalized struct {
		Templates []struct {
			Label string `json:"label"`
		} `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &normalized))
	require.Len(t, normalized.Templates, 1)
	assert.Equal(t, "T", normalized.Templates[0].Label)

	rec = do(t, h, http.MethodPost, "/api/render?renderer=text", `{"values":{"n":"Ada"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi Ada", rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/state", `{"values":{"種別":"企業"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		State map[string]struct {
			Visible  bool `json:"visible"`
			Required bool `json:"required"`
		} `json:"state"`
		Visible []string `json:"visible"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.State["企業情報"].Visible)
	assert.False(t, resp.State["個人情報"].Visible)
	assert.False(t, resp.State["姓"].Required)
	assert.True(t, resp.State["会社名"].Required)
	assert.Contains(t, resp.Visible, "会社名")
	assert.NotContains(t, resp.Visible, "姓")

	rec = do(t, srv.Handler(), http.MethodPost, "/api/state", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/render", `{"values":{"種別":"個人","姓":"山田","名":"太郎"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var docs []struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Text, "お名前: 山田 太郎")
	assert.NotContains(t, docs[0].Text, "【企業情報】")

	rec = do(t, h, http.MethodPost, "/api/render?renderer=pdf", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/render?renderer=tui", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/render", `{"template":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "TEMPLATE_NOT_FOUND")
}

func TestValidateSchemaAndLint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/validate", `{"values":{"種別":"個人"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Valid  bool `json:"valid"`
		Issues []struct {
			Field string `json:"field"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	var fields []string
	for _, issue := range result.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "姓")
	assert.NotContains(t, fields, "会社名")

	rec = do(t, h, http.MethodGet, "/api/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"properties"`)

	rec = do(t, h, http.MethodGet, "/api/lint", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"issues"`)
}

func TestFormRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/form?"+url.Values{"種別": {"企業"}}.Encode(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `data-item="企業情報" data-visible="true"`)

	form := url.Values{}
	form.Set("種別", "個人")
	form.Set("_template", "名称未設定")
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "姓 is required")
	assert.Contains(t, body, `<input type="hidden" name="_template" value="名称未設定">`)

	form.Set("email", "a@example.com")
	form.Set("姓", "山田")
	form.Set("名", "太郎")
	form.Set("ご希望の連絡方法", "電話")
	req = httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "お名前: 山田 太郎")
}

func TestAssetsAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/assets/formdoc.css", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".formdoc-section")

	do(t, h, http.MethodGet, "/healthz", "")
	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "formdoc_api_latency_seconds")
}

func TestWebsocketSession(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var msg struct {
		Type      string          `json:"type"`
		RequestID string          `json:"request_id"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, MessageSession, msg.Type)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "ping", "id": "1"}))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessagePong, msg.Type)
	assert.Equal(t, "1", msg.RequestID)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{
		"type": "values", "id": "2", "data": map[string]any{"values": map[string]any{"種別": "個人"}},
	}))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessageState, msg.Type)
	assert.Contains(t, string(msg.Data), `"個人情報":{"kind":"section","visible":true`)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{
		"type": "submit", "id": "3", "data": map[string]any{"values": map[string]any{"種別": "個人", "姓": "山田"}},
	}))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessageDocuments, msg.Type)
	var docs DocumentsDataWire
	require.NoError(t, json.Unmarshal(msg.Data, &docs))
	require.Len(t, docs.Documents, 1)
	assert.Contains(t, docs.Documents[0].Text, "お名前: 山田 ")
	assert.False(t, docs.Validation.Valid)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "bogus", "id": "4"}))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessageError, msg.Type)

	rec := do(t, srv.Handler(), http.MethodDelete, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessageConfig, msg.Type)
}

// DocumentsDataWire mirrors DocumentsData for decoding in tests.
type DocumentsDataWire struct {
	Documents []struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	} `json:"documents"`
	Validation struct {
		Valid bool `json:"valid"`
	} `json:"validation"`
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
