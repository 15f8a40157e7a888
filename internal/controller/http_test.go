package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyskel.dev/pkg/pyskel/internal/adapter"
	"pyskel.dev/pkg/pyskel/internal/controller"
	"pyskel.dev/pkg/pyskel/internal/domain"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

type stubChatAdapter struct {
	resp m.ChatResponse
	err  error
}

func (s stubChatAdapter) Complete(context.Context, m.ChatRequest) (m.ChatResponse, error) {
	return s.resp, s.err
}

func newTestController(t *testing.T, chat adapter.ChatAdapter, fallbackOnError bool, maxBody int64) *controller.HTTPController {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pythonAdapter := adapter.NewLocalPythonFileAdapter()
	classifier := domain.NewClassifier(pythonAdapter)
	synthesizer := domain.NewSynthesizer(domain.NewAnalyzer(pythonAdapter, classifier))
	generator := domain.NewGenerator(chat, classifier, synthesizer, domain.GeneratorConfig{
		Model:           "test-model",
		MaxTokens:       64,
		FallbackOnError: fallbackOnError,
	})

	return controller.NewHTTPController(generator, classifier, synthesizer, controller.HTTPConfig{MaxBodyBytes: maxBody})
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestHTTP_Health(t *testing.T) {
	rec := doJSON(t, newTestController(t, nil, true, 0).Handler(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(controller.RequestIDHeader))
}

func TestHTTP_RequestIDIsEchoed(t *testing.T) {
	handler := newTestController(t, nil, true, 0).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(controller.RequestIDHeader, "abc-123")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(controller.RequestIDHeader))
}

func TestHTTP_GenerateTest(t *testing.T) {
	tests := []struct {
		name        string
		chat        adapter.ChatAdapter
		fallback    bool
		body        string
		wantStatus  int
		wantSource  string
		wantContain string
		wantWarning bool
	}{
		{
			name:        "offline synthesizes",
			body:        `{"code": "def a(): return 1"}`,
			wantStatus:  http.StatusOK,
			wantSource:  "fallback",
			wantContain: "def test_a_smoke_no_required_args():",
		},
		{
			name: "model output",
			chat: stubChatAdapter{resp: m.ChatResponse{Choices: []m.ChatChoice{{
				Message: &m.ChatChoiceMessage{Content: "def test_a():\n    assert a() == 1\n"},
			}}}},
			body:        `{"code": "def a(): return 1"}`,
			wantStatus:  http.StatusOK,
			wantSource:  "model",
			wantContain: "globals().update(ns)",
		},
		{
			name:        "upstream error with fallback",
			chat:        stubChatAdapter{err: &adapter.APIError{StatusCode: 500, Body: "down"}},
			fallback:    true,
			body:        `{"code": "x = 1"}`,
			wantStatus:  http.StatusOK,
			wantSource:  "fallback",
			wantContain: "def test_skeleton_no_functions():",
			wantWarning: true,
		},
		{
			name:       "upstream error without fallback",
			chat:       stubChatAdapter{err: &adapter.APIError{StatusCode: 500, Body: "down"}},
			body:       `{"code": "x = 1"}`,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "missing code",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"code": `,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestController(t, tt.chat, tt.fallback, 0).Handler()
			rec := doJSON(t, handler, http.MethodPost, "/generate-test", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decodeBody(t, rec)
			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, body["error"])
				return
			}

			assert.Equal(t, tt.wantSource, body["source"])
			assert.Contains(t, body["test_code"], tt.wantContain)

			_, hasWarning := body["warning"]
			assert.Equal(t, tt.wantWarning, hasWarning)
		})
	}
}

func TestHTTP_UpstreamErrorMessage(t *testing.T) {
	chat := stubChatAdapter{err: &adapter.APIError{StatusCode: 401, Body: "bad token"}}
	rec := doJSON(t, newTestController(t, chat, false, 0).Handler(), http.MethodPost, "/generate-test", `{"code": "x = 1"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "API Error: 401 bad token")
}

func TestHTTP_Synthesize(t *testing.T) {
	rec := doJSON(t, newTestController(t, nil, true, 0).Handler(), http.MethodPost, "/synthesize", `{"code": ""}`)

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "fallback", body["source"])
	assert.Contains(t, body["test_code"], "No user code provided.")
}

func TestHTTP_Classify(t *testing.T) {
	handler := newTestController(t, nil, true, 0).Handler()

	for text, want := range map[string]bool{
		"x = 1":           true,
		"def broken(x:":   false,
		"just some prose": false,
	} {
		payload, err := json.Marshal(map[string]string{"text": text})
		require.NoError(t, err)

		rec := doJSON(t, handler, http.MethodPost, "/classify", string(payload))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, decodeBody(t, rec)["is_code"], text)
	}
}

func TestHTTP_BodyLimit(t *testing.T) {
	handler := newTestController(t, nil, true, 64).Handler()

	payload, err := json.Marshal(map[string]string{"code": strings.Repeat("x = 1\n", 100)})
	require.NoError(t, err)

	rec := doJSON(t, handler, http.MethodPost, "/generate-test", string(payload))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHTTP_CORSPreflight(t *testing.T) {
	handler := newTestController(t, nil, true, 0).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/generate-test", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTP_ServeShutsDownOnCancel(t *testing.T) {
	api := newTestController(t, nil, true, 0)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- api.Serve(ctx, listener)
	}()

	url := "http://" + listener.Addr().String() + "/synthesize"
	require.Eventually(t, func() bool {
		resp, err := http.Post(url, "application/json", bytes.NewBufferString(`{"code": "x = 1"}`))
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
