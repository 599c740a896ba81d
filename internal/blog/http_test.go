package blog

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ivlev/scrollsite/internal/director"
	"github.com/ivlev/scrollsite/internal/metrics"
)

const aboutScene = `
page: About
viewport: {width: 1280, height: 800}
height: 3000
elements:
  - id: hero
    rect: {x: 0, y: 0, w: 1280, h: 800}
timelines:
  - name: hero-fade
    trigger: {target: hero, start: "top top", end: "bottom top"}
    bindings:
      - target: hero
        props: {opacity: {from: 1, to: 0}}
`

func newTestServer(t *testing.T, maxBytes int64) (*httptest.Server, *Store) {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := newTestStore(t)

	scenes := director.NewDirector(t.TempDir(), log)
	sc, err := director.ParseScene([]byte(aboutScene))
	require.NoError(t, err)
	require.NoError(t, scenes.Put(sc))

	up := &Uploads{Dir: t.TempDir()}
	h := NewHTTPHandler(store, up, scenes, metrics.New(), log, maxBytes)
	mux := http.NewServeMux()
	h.RegisterHTTPHandlers("/api/", mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	up.PublicURL = srv.URL
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHTTPBlogLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	api := srv.URL + "/api"

	resp := doJSON(t, http.MethodGet, api+"/blogs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Empty(t, list)

	resp = doJSON(t, http.MethodPost, api+"/blogs/create", Input{Title: "Hello", Content: "<p>x</p>"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/blogs/"+created.ID, resp.Header.Get("Location"))

	resp = doJSON(t, http.MethodPut, api+"/blogs/"+created.ID, Input{Title: "Hello again", Author: "Team"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, api+"/blogs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Hello again", got.Title)
	assert.Equal(t, "Team", got.Author)

	resp = doJSON(t, http.MethodGet, api+"/blogs/"+created.ID+"/qr", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	_, err := png.Decode(resp.Body)
	assert.NoError(t, err)

	resp = doJSON(t, http.MethodDelete, api+"/blogs/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, http.MethodGet, api+"/blogs/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPErrors(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	api := srv.URL + "/api"

	resp := doJSON(t, http.MethodPost, api+"/blogs/create", Input{Title: "x", Image: "blob:http://localhost/1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "invalid", e.Error)

	req, _ := http.NewRequest(http.MethodPost, api+"/blogs/create", strings.NewReader("{"))
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	resp = doJSON(t, http.MethodPut, api+"/blogs/missing", Input{Title: "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "cover.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHTTPUploadServesFile(t *testing.T) {
	srv, _ := newTestServer(t, 1<<20)

	body, ct := multipartBody(t, "image", pngBytes(t))
	resp, err := http.Post(srv.URL+"/api/upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var up UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	require.True(t, strings.HasPrefix(up.URL, srv.URL+"/uploads/"), up.URL)
	require.NotNil(t, up.Cover)
	assert.Equal(t, 4, up.Cover.Width)
	assert.NotEmpty(t, up.Cover.Tone)

	file, err := http.Get(up.URL)
	require.NoError(t, err)
	defer file.Body.Close()
	assert.Equal(t, http.StatusOK, file.StatusCode)
	data, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), data)
}

func TestHTTPUploadRejects(t *testing.T) {
	srv, _ := newTestServer(t, 512)

	body, ct := multipartBody(t, "file", pngBytes(t))
	resp, err := http.Post(srv.URL+"/api/upload", ct, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "wrong field name")

	body, ct = multipartBody(t, "image", bytes.Repeat([]byte{0xff}, 4096))
	resp, err = http.Post(srv.URL+"/api/upload", ct, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHTTPScenesAndOps(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/scenes", nil)
	var pages []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pages))
	assert.Equal(t, []string{"About"}, pages)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/scenes/about", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sc director.Scene
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sc))
	assert.Equal(t, "About", sc.Page)
	require.Len(t, sc.Timelines, 1)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/scenes/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "scrollsite_http_requests_total")
}
