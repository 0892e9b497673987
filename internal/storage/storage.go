// Package storage holds the object stores product images are uploaded to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
)

// Disk stores objects under Dir and serves them from BaseURL (the /media route).
type Disk struct {
	Dir     string
	BaseURL string
}

func NewDisk(dir, baseURL string) (*Disk, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Disk{Dir: abs, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Disk) full(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)[1:]
	if clean == "" || strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return filepath.Join(d.Dir, filepath.FromSlash(clean)), nil
}

func (d *Disk) Put(_ context.Context, objectPath, _ string, data []byte) (string, error) {
	full, err := d.full(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return d.PublicURL(objectPath), nil
}

func (d *Disk) Delete(_ context.Context, objectPath string) error {
	full, err := d.full(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Disk) PublicURL(objectPath string) string {
	return d.BaseURL + "/" + escapePath(objectPath)
}

// GCS stores objects in a bucket that is publicly readable.
type GCS struct {
	Client        *storage.Client
	Bucket        string
	PublicBaseURL string
}

func NewGCS(client *storage.Client, bucket, publicBaseURL string) (*GCS, error) {
	if client == nil {
		return nil, errors.New("gcs: storage client is nil")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("gcs: bucket is empty")
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com"
	}
	return &GCS{Client: client, Bucket: bucket, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (g *GCS) Put(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	w := g.Client.Bucket(g.Bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", objectPath, err)
	}
	return g.PublicURL(objectPath), nil
}

func (g *GCS) Delete(ctx context.Context, objectPath string) error {
	err := g.Client.Bucket(g.Bucket).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", objectPath, err)
	}
	return nil
}

func (g *GCS) PublicURL(objectPath string) string {
	return g.PublicBaseURL + "/" + g.Bucket + "/" + escapePath(objectPath)
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
