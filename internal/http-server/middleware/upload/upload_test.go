package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"carvex/internal/config"
	"carvex/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type part struct {
	name    string
	content []byte
}

func multipartBody(t *testing.T, fields map[string]string, files []part) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	for _, f := range files {
		fw, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

func testConfig(dir string) config.Uploads {
	return config.Uploads{
		Dir:       dir,
		URLPrefix: "/uploads",
		Field:     "images",
		MaxFiles:  5,
		MaxMemory: 1 << 20,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"), "/uploads/")
	require.NoError(t, err)

	return store
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestUploadMiddleware(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		files          []part
		expectedStatus int
		expectedPaths  int
		expectedBody   string
	}{
		{
			name:           "No files",
			expectedStatus: http.StatusOK,
			expectedPaths:  0,
		},
		{
			name: "Two images",
			files: []part{
				{name: "front.PNG", content: pngHeader},
				{name: "back", content: pngHeader},
			},
			expectedStatus: http.StatusOK,
			expectedPaths:  2,
		},
		{
			name: "Five images",
			files: []part{
				{name: "1.png", content: pngHeader},
				{name: "2.png", content: pngHeader},
				{name: "3.png", content: pngHeader},
				{name: "4.png", content: pngHeader},
				{name: "5.png", content: pngHeader},
			},
			expectedStatus: http.StatusOK,
			expectedPaths:  5,
		},
		{
			name: "Too many images",
			files: []part{
				{name: "1.png", content: pngHeader},
				{name: "2.png", content: pngHeader},
				{name: "3.png", content: pngHeader},
				{name: "4.png", content: pngHeader},
				{name: "5.png", content: pngHeader},
				{name: "6.png", content: pngHeader},
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"too many files, at most 5 allowed"}`,
		},
		{
			name: "Not an image",
			files: []part{
				{name: "1.png", content: pngHeader},
				{name: "notes.png", content: []byte("just some plain text")},
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"only image uploads are allowed"}`,
		},
		{
			name: "SVG",
			files: []part{
				{name: "logo.svg", content: []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)},
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"only image uploads are allowed"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newTestStore(t)

			var gotPaths []string
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotPaths = PathsFromContext(r.Context())
				assert.Equal(t, "Civic", r.FormValue("carModel"))
				w.WriteHeader(http.StatusOK)
			})

			handler := New(logger, store, testConfig(store.Dir()))(next)

			body, contentType := multipartBody(t, map[string]string{"carModel": "Civic"}, tc.files)
			req := httptest.NewRequest("POST", "/cars", body)
			req.Header.Set("Content-Type", contentType)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
				assert.False(t, called)
				assert.Empty(t, dirEntries(t, store.Dir()))
				return
			}

			require.True(t, called)
			assert.NotNil(t, gotPaths)
			assert.Len(t, gotPaths, tc.expectedPaths)
			assert.Len(t, dirEntries(t, store.Dir()), tc.expectedPaths)

			for _, p := range gotPaths {
				assert.True(t, strings.HasPrefix(p, "/uploads/"), p)
				assert.Equal(t, ".png", filepath.Ext(p))
				assert.FileExists(t, filepath.Join(store.Dir(), filepath.Base(p)))
			}
		})
	}
}

func TestUploadExtensionFollowsContent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	var gotPaths []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = PathsFromContext(r.Context())
	})

	handler := New(slogdiscard.NewDiscardLogger(), store, testConfig(store.Dir()))(next)

	body, contentType := multipartBody(t, nil, []part{
		{name: "x.html", content: []byte("GIF89a<script>alert(1)</script>")},
	})
	req := httptest.NewRequest("POST", "/cars", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, gotPaths, 1)
	assert.Equal(t, ".gif", filepath.Ext(gotPaths[0]))

	entries := dirEntries(t, store.Dir())
	require.Len(t, entries, 1)
	assert.Equal(t, ".gif", filepath.Ext(entries[0]))
}

func TestUploadMiddlewarePassesThroughNonMultipart(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	var gotPaths []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = PathsFromContext(r.Context())
	})

	handler := New(slogdiscard.NewDiscardLogger(), store, testConfig(store.Dir()))(next)

	req := httptest.NewRequest("POST", "/cars", strings.NewReader("carModel=Civic"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, gotPaths)
	assert.Empty(t, gotPaths)
}

func TestUploadMiddlewareBrokenMultipart(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	})

	handler := New(slogdiscard.NewDiscardLogger(), store, testConfig(store.Dir()))(next)

	req := httptest.NewRequest("POST", "/cars", strings.NewReader("garbage"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"failed to parse multipart form"}`, rr.Body.String())
}

func TestStoreNameCollision(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	fixed := time.UnixMilli(1700000000000)
	store.now = func() time.Time { return fixed }

	body, contentType := multipartBody(t, nil, []part{{name: "a.png", content: pngHeader}})
	req := httptest.NewRequest("POST", "/cars", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(1<<20))
	fh := req.MultipartForm.File["images"][0]

	first, err := store.Save(fh, 0)
	require.NoError(t, err)
	second, err := store.Save(fh, 0)
	require.NoError(t, err)

	assert.Equal(t, "/uploads/1700000000000-0.png", first)
	assert.Equal(t, "/uploads/1700000000000-0-1.png", second)
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	name := filepath.Join(store.Dir(), "1700000000000-0.png")
	require.NoError(t, os.WriteFile(name, pngHeader, 0o644))

	err := store.Remove([]string{"/uploads/1700000000000-0.png", "/uploads/missing.png"})
	require.NoError(t, err)

	assert.NoFileExists(t, name)
}

func TestPathsFromContextEmpty(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)

	assert.Nil(t, PathsFromContext(req.Context()))
	assert.Equal(t, []string{"/uploads/a.png"}, PathsFromContext(WithPaths(req.Context(), []string{"/uploads/a.png"})))
}
