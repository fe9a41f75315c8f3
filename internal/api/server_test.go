package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/vidmind/internal/analyze"
	"github.com/dgallion1/vidmind/internal/chat"
	"github.com/dgallion1/vidmind/internal/config"
	"github.com/dgallion1/vidmind/internal/export"
	"github.com/dgallion1/vidmind/internal/media"
	"github.com/dgallion1/vidmind/internal/metrics"
	"github.com/dgallion1/vidmind/internal/parser"
	"github.com/dgallion1/vidmind/internal/render"
	"github.com/dgallion1/vidmind/internal/session"
	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv     *httptest.Server
	client  *http.Client
	videos  *media.Store
	exports billy.Filesystem
	metrics *metrics.Collector
}

type option func(*Deps, *config.Config)

func withExportFS(fs billy.Filesystem) option {
	return func(d *Deps, _ *config.Config) { d.Exports = fs }
}

func withLimiter(rps float64, burst int) option {
	return func(d *Deps, _ *config.Config) { d.Limiter = NewRateLimiter(rps, burst) }
}

func newTestEnv(t *testing.T, opts ...option) *testEnv {
	t.Helper()
	cfg := config.Config{
		MaxUploadBytes: 1024,
		FixedVideo:     "fixed.mp4",
		MaxTreeDepth:   64,
		SessionTTL:     time.Hour,
		SessionCookie:  "vidmind_session",
	}
	pages, err := render.New()
	require.NoError(t, err)

	videos := media.NewStore(memfs.New(), "uploads", cfg.MaxUploadBytes)
	deps := Deps{
		Videos:   videos,
		Exports:  memfs.New(),
		Sessions: session.NewMemoryStore(time.Hour),
		Analyzer: analyze.StubAnalyzer{},
		Chat:     chat.NewResponder(chat.DefaultRules(), nil),
		Pages:    pages,
		Metrics:  metrics.New(),
	}
	for _, opt := range opts {
		opt(&deps, &cfg)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewServer(deps, log, cfg))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, client: newClient(t), videos: videos, exports: deps.Exports, metrics: deps.Metrics}
}

// newClient returns a client with its own cookie jar, i.e. its own session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

var videoSrc = regexp.MustCompile(`src="(/video/[^"]+)"`)

// videoPath returns the session's video URL from the highlights page.
func (e *testEnv) videoPath(t *testing.T) string {
	t.Helper()
	resp, body := e.get(t, "/highlights")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := videoSrc.FindSubmatch(body)
	require.NotNil(t, m, "no video on highlights page")
	return string(m[1])
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (e *testEnv) post(t *testing.T, path, contentType string, body io.Reader) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.client.Post(e.srv.URL+path, contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) upload(t *testing.T, field, filename string, content []byte) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())
	return e.post(t, "/upload", mw.FormDataContentType(), &buf)
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out), "body %s", body)
	return out["error"]
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestUploadToDownloadFlow(t *testing.T) {
	env := newTestEnv(t)
	canned := analyze.CannedResult().Tree

	resp, body := env.upload(t, "video", "talk.mp4", []byte("frames"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"status":"success","redirect_url":"/result"}`, string(body))

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "vidmind_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "upload must set the session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.True(t, session.ValidID(cookie.Value))

	resp, body = env.get(t, "/result")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := string(body)
	assert.Contains(t, page, `<span class="topic">Video Content</span>`)
	assert.Contains(t, page, `<span class="topic">DL Concepts</span>`)
	assert.Contains(t, page, "Analysis of talk.mp4")
	assert.Contains(t, page, "/download-mindmap?format=xmind")

	resp, body = env.get(t, "/mindmap-data")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tree, err := topictree.DecodeJSON(bytes.NewReader(body))
	require.NoError(t, err)
	assert.True(t, topictree.Equal(canned, tree))

	resp, body = env.get(t, "/download-mindmap")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/vnd.xmind.workbook", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="video_mindmap.xmind"`, resp.Header.Get("Content-Disposition"))
	got, err := export.ReadXMind(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	assert.True(t, topictree.Equal(canned, got))

	resp, body = env.get(t, "/download-mindmap?format=docx")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, `attachment; filename="video_mindmap.docx"`, resp.Header.Get("Content-Disposition"))
	got, err = (&parser.DOCXParser{}).Parse(bytes.NewReader(body), "video_mindmap.docx")
	require.NoError(t, err)
	assert.True(t, topictree.Equal(canned, got))

	video := env.videoPath(t)
	assert.True(t, strings.HasSuffix(video, "_talk.mp4"), video)

	resp, body = env.get(t, video)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "video/mp4", resp.Header.Get("Content-Type"))
	assert.Equal(t, "frames", string(body))
}

func TestUpload_ReusesSessionAndOverwrites(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.upload(t, "video", "first.mp4", []byte("1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := resp.Cookies()[0].Value

	resp, _ = env.upload(t, "video", "second.mov", []byte("2"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first, resp.Cookies()[0].Value)

	video := env.videoPath(t)
	assert.True(t, strings.HasSuffix(video, "_second.mov"), video)

	resp, _ = env.get(t, video)
	assert.Equal(t, "video/quicktime", resp.Header.Get("Content-Type"))
}

func TestUpload_Errors(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.upload(t, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "no file uploaded", errorMessage(t, body))

	resp, body = env.upload(t, "video", "notes.txt", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorMessage(t, body), "unsupported file type")

	resp, body = env.upload(t, "video", "big.mp4", bytes.Repeat([]byte("x"), 2048))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Contains(t, errorMessage(t, body), "exceeds max size")

	resp, _ = env.post(t, "/upload", "text/plain", strings.NewReader("nope"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// None of the failures created a session.
	resp, _ = env.get(t, "/result")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestNoSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/result", "/highlights"} {
		resp, _ := env.get(t, path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/", resp.Header.Get("Location"), path)
	}

	resp, body := env.get(t, "/download-mindmap")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "mind map file not available", errorMessage(t, body))

	resp, _ = env.get(t, "/mindmap-data")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type noTempFS struct {
	billy.Filesystem
}

func (noTempFS) TempFile(string, string) (billy.File, error) {
	return nil, errors.New("read-only filesystem")
}

func TestFailedExportMeansDownloadUnavailable(t *testing.T) {
	env := newTestEnv(t, withExportFS(noTempFS{memfs.New()}))

	resp, body := env.upload(t, "video", "talk.mp4", []byte("frames"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = env.get(t, "/result")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/download-mindmap?format=xmind")

	resp, body = env.get(t, "/download-mindmap")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "mind map file not available", errorMessage(t, body))
}

func TestDownloadReexportsSweptFile(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.upload(t, "video", "talk.mp4", []byte("frames"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entries, err := env.exports.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, env.exports.Remove(entries[0].Name()))

	resp, body := env.get(t, "/download-mindmap")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	got, err := export.ReadXMind(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	assert.True(t, topictree.Equal(analyze.CannedResult().Tree, got))

	// The fresh file is remembered: a second download does not export again.
	entries, err = env.exports.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	resp, _ = env.get(t, "/download-mindmap")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	entries, err = env.exports.ReadDir(".")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpload_SameNameFromTwoSessions(t *testing.T) {
	env := newTestEnv(t)
	other := &testEnv{srv: env.srv, client: newClient(t)}

	resp, _ := env.upload(t, "video", "talk.mp4", []byte("mine"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = other.upload(t, "video", "talk.mp4", []byte("theirs"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	mine, theirs := env.videoPath(t), other.videoPath(t)
	assert.NotEqual(t, mine, theirs)

	_, body := env.get(t, mine)
	assert.Equal(t, "mine", string(body))
	_, body = other.get(t, theirs)
	assert.Equal(t, "theirs", string(body))
}

func TestExportAPI(t *testing.T) {
	env := newTestEnv(t)

	tree := `{"root":{"text":"Video Content","children":[{"text":"AI Intro","children":[{"text":"ML Basics"},{"text":"DL Concepts"}]}]}}`
	resp, body := env.post(t, "/api/export", "application/json", strings.NewReader(tree))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	got, err := export.ReadXMind(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	assert.Equal(t, "Video Content", got.Root.Label)
	assert.Equal(t, "DL Concepts", got.Root.Children[0].Children[1].Label)

	resp, _ = env.post(t, "/api/export?format=docx", "application/json", strings.NewReader(tree))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.FormatDOCX.ContentType(), resp.Header.Get("Content-Type"))

	tests := []struct {
		name string
		path string
		body string
	}{
		{"empty label", "/api/export", `{"root":{"text":"r","children":[{"text":""}]}}`},
		{"missing root", "/api/export", `{}`},
		{"malformed", "/api/export", `{"root":`},
		{"unknown format", "/api/export?format=pdf", tree},
	}
	for _, tt := range tests {
		resp, body := env.post(t, tt.path, "application/json", strings.NewReader(tt.body))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tt.name)
		assert.NotEmpty(t, errorMessage(t, body), tt.name)
	}
}

func TestExportAPI_StorageFailure(t *testing.T) {
	env := newTestEnv(t, withExportFS(noTempFS{memfs.New()}))
	resp, body := env.post(t, "/api/export", "application/json", strings.NewReader(`{"root":{"text":"r"}}`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "failed to write mind map", errorMessage(t, body))
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/chat", "application/json", strings.NewReader(`{"question":"Who is speaking?"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out["answer"], "Andrew Ng")

	resp, body = env.post(t, "/chat", "application/json", strings.NewReader(`{"question":"the intro music"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out["answer"], "the intro music")

	resp, _ = env.post(t, "/chat", "application/json", strings.NewReader(`not json`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTemplateData(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/template-data")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Status  string          `json:"status"`
		Summary string          `json:"summary"`
		MindMap *topictree.Tree `json:"mindmap"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "success", out.Status)
	assert.NotEmpty(t, out.Summary)
	assert.Equal(t, "Sample Mind Map", out.MindMap.Root.Label)
}

func TestVideoRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/video/missing.mp4")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "video not found", errorMessage(t, body))

	resp, _ = env.get(t, "/fixed-video")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, _, err := env.videos.Save("fixed.mp4", strings.NewReader("demo"))
	require.NoError(t, err)
	resp, body = env.get(t, "/fixed-video")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "video/mp4", resp.Header.Get("Content-Type"))
	assert.Equal(t, "demo", string(body))

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/fixed-video", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=1-2")
	rangeResp, err := env.client.Do(req)
	require.NoError(t, err)
	defer rangeResp.Body.Close()
	part, _ := io.ReadAll(rangeResp.Body)
	assert.Equal(t, http.StatusPartialContent, rangeResp.StatusCode)
	assert.Equal(t, "em", string(part))
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, withLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		resp, _ := env.post(t, "/chat", "application/json", strings.NewReader(`{"question":"hi"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := env.post(t, "/chat", "application/json", strings.NewReader(`{"question":"hi"}`))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too many requests", errorMessage(t, body))

	// Unthrottled routes are unaffected.
	resp, _ = env.get(t, "/template-data")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimiter_Sweep(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	now = now.Add(time.Minute)
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, l.Sweep(150*time.Second))
	assert.Equal(t, 0, l.Sweep(time.Hour))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, "video", "talk.mp4", []byte("frames"))

	resp, body := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `vidmind_uploads_total{outcome="ok"} 1`)
	assert.Contains(t, text, `vidmind_exports_total{format="xmind",outcome="ok"} 1`)
	assert.Contains(t, text, `route="/upload"`)
}
