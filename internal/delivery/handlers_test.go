package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_agent/internal/domain"
)

type fakePipeline struct {
	got   *domain.VoiceRequest
	res   *domain.VoiceResult
	err   error
	calls int
}

func (f *fakePipeline) Handle(_ context.Context, req domain.VoiceRequest) (*domain.VoiceResult, error) {
	f.calls++
	f.got = &req
	return f.res, f.err
}

type fakeContacts struct {
	got domain.ContactInput
	err error
}

func (f *fakeContacts) Submit(_ context.Context, in domain.ContactInput) (int64, error) {
	f.got = in
	return 1, f.err
}

func testLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

type testServer struct {
	router   http.Handler
	pipeline *fakePipeline
	contacts *fakeContacts
	static   string
}

func newTestServer(t *testing.T, opts RouterOptions) *testServer {
	t.Helper()
	ts := &testServer{
		pipeline: &fakePipeline{res: &domain.VoiceResult{
			Transcript:   "hello",
			ResponseText: "Hi! How can I help?",
			AudioURL:     "/static/generated_abc.mp3",
		}},
		contacts: &fakeContacts{},
	}
	if opts.StaticDir == "" {
		ts.static = t.TempDir()
		opts.StaticDir = ts.static
	}
	if opts.CORSOrigins == nil {
		opts.CORSOrigins = []string{"*"}
	}
	ts.router = NewRouter(opts,
		NewVoiceHandler(ts.pipeline, 1<<20, testLogger()),
		NewContactHandler(ts.contacts, testLogger()),
	)
	return ts
}

func voiceRequest(t *testing.T, audio []byte, language *string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if language != nil {
		require.NoError(t, w.WriteField("language", *language))
	}
	if audio != nil {
		part, err := w.CreateFormFile("audio", "clip.webm")
		require.NoError(t, err)
		_, _ = part.Write(audio)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/voice-agent", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func strPtr(s string) *string { return &s }

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out), res.Body.String())
	return out
}

func TestVoiceAgent_Success200(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	res := httptest.NewRecorder()
	ts.router.ServeHTTP(res, voiceRequest(t, []byte("webm-data"), strPtr(" PT_BR ")))

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))

	body := decodeBody(t, res)
	assert.Equal(t, "hello", body["transcript"])
	assert.Equal(t, "Hi! How can I help?", body["response_text"])
	assert.Equal(t, "/static/generated_abc.mp3", body["tts_audio_url"])

	require.NotNil(t, ts.pipeline.got)
	assert.Equal(t, "pt-br", ts.pipeline.got.Language)
	assert.Equal(t, []byte("webm-data"), ts.pipeline.got.Audio.Data)
	assert.Equal(t, "clip.webm", ts.pipeline.got.Audio.Filename)
}

func TestVoiceAgent_MissingFields400(t *testing.T) {
	cases := map[string]*http.Request{
		"no audio":       voiceRequest(t, nil, strPtr("en")),
		"empty audio":    voiceRequest(t, []byte{}, strPtr("en")),
		"no language":    voiceRequest(t, []byte("x"), nil),
		"blank language": voiceRequest(t, []byte("x"), strPtr("  ")),
		"not multipart":  httptest.NewRequest(http.MethodPost, "/voice-agent", strings.NewReader(`{"language":"en"}`)),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t, RouterOptions{})
			res := httptest.NewRecorder()
			ts.router.ServeHTTP(res, req)

			assert.Equal(t, http.StatusBadRequest, res.Code, res.Body.String())
			assert.NotEmpty(t, decodeBody(t, res)["error"])
			assert.Zero(t, ts.pipeline.calls)
		})
	}
}

func TestVoiceAgent_TooLarge400(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	res := httptest.NewRecorder()
	ts.router.ServeHTTP(res, voiceRequest(t, bytes.Repeat([]byte("a"), 2<<20), strPtr("en")))

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Zero(t, ts.pipeline.calls)
}

func TestVoiceAgent_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"upstream asr", &domain.StageError{Stage: domain.StageTranscribe, Err: errors.New("401")}, http.StatusBadGateway},
		{"upstream llm", &domain.StageError{Stage: domain.StageReply, Err: errors.New("quota")}, http.StatusBadGateway},
		{"upstream tts", &domain.StageError{Stage: domain.StageSynthesize, Err: errors.New("down")}, http.StatusBadGateway},
		{"storage", &domain.StageError{Stage: domain.StageStore, Err: errors.New("disk")}, http.StatusInternalServerError},
		{"silence", domain.ErrEmptyTranscript, http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, RouterOptions{})
			ts.pipeline.res, ts.pipeline.err = nil, tc.err

			res := httptest.NewRecorder()
			ts.router.ServeHTTP(res, voiceRequest(t, []byte("x"), strPtr("en")))

			assert.Equal(t, tc.code, res.Code)
			assert.NotEmpty(t, decodeBody(t, res)["error"])
		})
	}
}

func TestVoiceAgent_StorageErrorHidesDetails(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	ts.pipeline.err = &domain.StageError{Stage: domain.StageStore, Err: errors.New("/var/secret/path")}

	res := httptest.NewRecorder()
	ts.router.ServeHTTP(res, voiceRequest(t, []byte("x"), strPtr("en")))

	assert.NotContains(t, res.Body.String(), "/var/secret/path")
}

func contactRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestContact_Success(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	res := httptest.NewRecorder()
	ts.router.ServeHTTP(res, contactRequest(url.Values{
		"name":    {"Ann"},
		"email":   {"ann@example.com"},
		"plan":    {"pro"},
		"message": {"hi"},
	}))

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, map[string]string{"status": "ok", "detail": "Submission received"}, decodeBody(t, res))
	assert.Equal(t, domain.ContactInput{Name: "Ann", Email: "ann@example.com", Plan: "pro", Message: "hi"}, ts.contacts.got)
}

func TestContact_Errors(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	ts.contacts.err = errors.Join(domain.ErrInvalidContact, errors.New("name and email are required"))

	res := httptest.NewRecorder()
	ts.router.ServeHTTP(res, contactRequest(url.Values{"email": {"a@b.c"}}))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	ts.contacts.err = errors.New("db down")
	res = httptest.NewRecorder()
	ts.router.ServeHTTP(res, contactRequest(url.Values{"name": {"A"}, "email": {"a@b.c"}}))
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, res.Body.String(), "db down")
}

func TestRouter_PingAndStatic(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	require.NoError(t, os.WriteFile(filepath.Join(ts.static, "index.html"), []byte("<html>recorder</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ts.static, "generated_abc.mp3"), []byte("mp3"), 0o644))

	res := httptest.NewRecorder()
	ts.router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", res.Body.String())

	res = httptest.NewRecorder()
	ts.router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "recorder")

	res = httptest.NewRecorder()
	ts.router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/static/generated_abc.mp3", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "mp3", res.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	req := httptest.NewRequest(http.MethodOptions, "/voice-agent", nil)
	req.Header.Set("Origin", "https://brand.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res := httptest.NewRecorder()
	ts.router.ServeHTTP(res, req)

	assert.Equal(t, "*", res.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	ts := newTestServer(t, RouterOptions{RatePerMinute: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		res := httptest.NewRecorder()
		ts.router.ServeHTTP(res, voiceRequest(t, []byte("x"), strPtr("en")))
		codes = append(codes, res.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
