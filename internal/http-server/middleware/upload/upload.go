// Package upload stores multipart image uploads on disk and hands the
// resulting web paths to the next handler through the request context.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"carvex/internal/config"
	"carvex/internal/lib/api/response"
	"carvex/internal/lib/logger/sl"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/render"
)

var ErrNotImage = errors.New("uploaded file is not an image")

type ctxKey struct{}

// PathsFromContext returns the web paths of the files saved for this request.
func PathsFromContext(ctx context.Context) []string {
	paths, _ := ctx.Value(ctxKey{}).([]string)

	return paths
}

// WithPaths stores paths in ctx the same way the middleware does.
func WithPaths(ctx context.Context, paths []string) context.Context {
	return context.WithValue(ctx, ctxKey{}, paths)
}

// Store is the content directory uploads are written to.
type Store struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

func NewStore(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &Store{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes one uploaded image under a timestamp based name and returns its web path.
// The extension always follows the sniffed type; the client filename is ignored.
func (s *Store) Save(fh *multipart.FileHeader, index int) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type: %w", err)
	}

	// SVG is excluded: it is served from this origin and can carry script.
	ext := mtype.Extension()
	if !strings.HasPrefix(mtype.String(), "image/") || mtype.Is("image/svg+xml") || ext == "" {
		return "", fmt.Errorf("%s: %w", fh.Filename, ErrNotImage)
	}

	if _, err = src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	dst, name, err := s.create(index, ext)
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	if err = dst.Close(); err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// create opens a fresh file; a name already taken in the same millisecond gets a counter suffix.
func (s *Store) create(index int, ext string) (*os.File, string, error) {
	base := fmt.Sprintf("%d-%d", s.now().UnixMilli(), index)

	for attempt := 0; attempt < 100; attempt++ {
		name := base + ext
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d%s", base, attempt, ext)
		}

		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("failed to create upload file: %w", err)
		}
	}

	return nil, "", fmt.Errorf("failed to pick a free name for %s", base)
}

// Remove deletes previously saved uploads given their web paths.
func (s *Store) Remove(paths []string) error {
	var errs []error

	for _, p := range paths {
		name := path.Base(p)
		if name == "." || name == "/" {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// New returns middleware accepting at most cfg.MaxFiles images under cfg.Field.
// Requests that are not multipart pass through with no paths.
func New(log *slog.Logger, store *Store, cfg config.Uploads) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/upload"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if mediaType != "multipart/form-data" {
				next.ServeHTTP(w, r.WithContext(WithPaths(r.Context(), []string{})))
				return
			}

			if err := r.ParseMultipartForm(cfg.MaxMemory); err != nil {
				log.Error("failed to parse multipart form", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Message("failed to parse multipart form"))
				return
			}

			files := r.MultipartForm.File[cfg.Field]
			if len(files) > cfg.MaxFiles {
				log.Error("too many files", slog.Int("count", len(files)), slog.Int("max", cfg.MaxFiles))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Message(fmt.Sprintf("too many files, at most %d allowed", cfg.MaxFiles)))
				return
			}

			paths := make([]string, 0, len(files))
			for i, fh := range files {
				p, err := store.Save(fh, i)
				if err != nil {
					if rmErr := store.Remove(paths); rmErr != nil {
						log.Error("failed to remove partial uploads", sl.Err(rmErr))
					}

					log.Error("failed to save upload", sl.Err(err))

					if errors.Is(err, ErrNotImage) {
						render.Status(r, http.StatusBadRequest)
						render.JSON(w, r, response.Message("only image uploads are allowed"))
						return
					}

					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, response.Message("failed to store uploaded files"))
					return
				}
				paths = append(paths, p)
			}

			log.Debug("files uploaded", slog.Any("paths", paths))

			next.ServeHTTP(w, r.WithContext(WithPaths(r.Context(), paths)))
		}

		return http.HandlerFunc(fn)
	}
}
