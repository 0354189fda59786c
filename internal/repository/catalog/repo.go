// Package catalog loads the precomputed similarity artifact into a domain catalog.
//
// The artifact is JSON of the form {"titles": [...], "similarity": [[...], ...]},
// optionally gzip-compressed. It lives either on disk or under a single key in
// Redis/Valkey.
package catalog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/kailas-cloud/cinematch/internal/db"
	"github.com/kailas-cloud/cinematch/internal/domain"
	domcat "github.com/kailas-cloud/cinematch/internal/domain/catalog"
)

var gzipMagic = []byte{0x1f, 0x8b}

// KVReader reads raw artifact bytes by key.
type KVReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// KVWriter stores raw artifact bytes by key.
type KVWriter interface {
	Set(ctx context.Context, key string, value []byte) error
}

// artifact is the persisted catalog layout.
type artifact struct {
	Titles     []string    `json:"titles"`
	Similarity [][]float64 `json:"similarity"`
}

// LoadFile reads a catalog artifact from disk.
func LoadFile(path string) (*domcat.Catalog, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	c, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// LoadRedis reads a catalog artifact stored under key.
func LoadRedis(ctx context.Context, store KVReader, key string) (*domcat.Catalog, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: key %q not found", domain.ErrInvalidCatalog, key)
		}
		return nil, fmt.Errorf("read catalog key %q: %w", key, err)
	}
	return Decode(data)
}

// Publish validates data as a catalog artifact and stores it under key.
func Publish(ctx context.Context, store KVWriter, key string, data []byte) (*domcat.Catalog, error) {
	c, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := store.Set(ctx, key, data); err != nil {
		return nil, fmt.Errorf("write catalog key %q: %w", key, err)
	}
	return c, nil
}

// Decode parses an in-memory artifact, plain or gzip-compressed.
func Decode(data []byte) (*domcat.Catalog, error) {
	return decode(bytes.NewReader(data))
}

func decode(r io.Reader) (*domcat.Catalog, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if head, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", domain.ErrInvalidCatalog, err)
		}
		defer func() { _ = zr.Close() }()
		src = zr
	}

	var a artifact
	if err := json.NewDecoder(src).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", domain.ErrInvalidCatalog, err)
	}
	return domcat.New(a.Titles, a.Similarity)
}
