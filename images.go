package blogapp

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/image/draw"
	"google.golang.org/api/option"
)

const (
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// imageKind describes how an uploaded image is normalized and where it goes.
type imageKind struct {
	dir      string
	maxWidth int
}

var (
	coverImage  = imageKind{dir: "covers", maxWidth: 1200}
	avatarImage = imageKind{dir: "avatars", maxWidth: 256}
)

// ImageUpload is an image file received from a client.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ImageStore persists processed images and returns a stable public URL.
type ImageStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// processImage decodes an image from src, resizes it down to maxWidth when
// wider, and encodes it as JPEG.
func processImage(src io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// storeImage normalizes up and hands it to the configured ImageStore.
// Bad image data is a validation failure; storage failures are upstream.
func (s *Service) storeImage(ctx context.Context, field string, kind imageKind, up *ImageUpload) (string, error) {
	if up.Size > maxUploadSize {
		return "", invalid(field, "file too large (max 10MB)")
	}
	data, err := processImage(up.Body, kind.maxWidth)
	if err != nil {
		return "", invalid(field, "not a supported image (jpeg, png or gif)")
	}
	name := kind.dir + "/" + newID() + ".jpg"
	u, err := s.images.Put(ctx, name, data, "image/jpeg")
	if err != nil {
		return "", upstream("upload image", err)
	}
	return u, nil
}

// DiskImageStore writes images below Dir and serves them from BaseURL.
type DiskImageStore struct {
	Dir     string
	BaseURL string
}

// NewDiskImageStore stores uploads under staticDir/uploads, served at
// /public/uploads.
func NewDiskImageStore(staticDir string) *DiskImageStore {
	return &DiskImageStore{
		Dir:     filepath.Join(staticDir, uploadsSubdir),
		BaseURL: "/public/" + uploadsSubdir,
	}
}

func (d *DiskImageStore) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	clean := path.Clean("/" + name)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	full := filepath.Join(d.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return strings.TrimRight(d.BaseURL, "/") + clean, nil
}

// GCSImageStore uploads images to a Google Cloud Storage bucket.
type GCSImageStore struct {
	client *storage.Client
	bucket string
}

// NewGCSImageStore connects to GCS. credentialsFile may be empty to use
// application default credentials.
func NewGCSImageStore(ctx context.Context, bucket, credentialsFile string) (*GCSImageStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSImageStore{client: client, bucket: bucket}, nil
}

func (g *GCSImageStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", name, err)
	}
	return "https://storage.googleapis.com/" + g.bucket + "/" + (&url.URL{Path: name}).EscapedPath(), nil
}

// Close releases the GCS client.
func (g *GCSImageStore) Close() error {
	return g.client.Close()
}
