package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"rsff-cap-mcp/internal/sheet"
)

// LatestSnapshot is the path, relative to Root, of the cached snapshot.
const LatestSnapshot = "snapshot/latest.json"

type JSONStore struct {
	Root   string // e.g. "data/cache"
	Pretty bool
}

func NewJSONStore(root string) *JSONStore {
	return &JSONStore{Root: root, Pretty: true}
}

func (s *JSONStore) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *JSONStore) Exists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

// WriteRaw writes body to rel atomically (temp file + rename).
func (s *JSONStore) WriteRaw(rel string, body []byte, pretty bool) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	if pretty {
		buf := &bytes.Buffer{}
		if err := json.Indent(buf, body, "", "  "); err == nil {
			buf.WriteByte('\n')
			body = buf.Bytes()
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *JSONStore) ReadRaw(rel string) ([]byte, error) {
	return os.ReadFile(s.Path(rel))
}

func (s *JSONStore) SaveSnapshot(_ context.Context, snap *sheet.Snapshot) error {
	b, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.WriteRaw(LatestSnapshot, b, s.Pretty); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *JSONStore) LoadSnapshot(_ context.Context) (*sheet.Snapshot, error) {
	b, err := s.ReadRaw(LatestSnapshot)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return sheet.Decode(b)
}
