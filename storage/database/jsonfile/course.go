package jsondb

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/courseflow/backend/core/course"
)

// courseStore keeps the ledger document in a single JSON file.
// Saves go through a temporary file and a rename, so readers never see a partial document.
type courseStore struct {
	mu   sync.Mutex
	path string
}

var _ course.Store = (*courseStore)(nil) // interface compliance check

func NewCourseStore(path string) *courseStore {
	return &courseStore{path: path}
}

// Load returns an empty document when the file does not exist yet.
func (s *courseStore) Load(ctx context.Context) (course.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := course.Document{NextCourseID: 1, NextAssessmentID: 1}
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return course.Document{}, errors.Wrap(err, "reading ledger file")
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return doc, nil
	}
	if err = json.Unmarshal(b, &doc); err != nil {
		return course.Document{}, errors.Wrap(err, "decoding ledger file")
	}
	return doc, nil
}

func (s *courseStore) Save(ctx context.Context, doc course.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding ledger")
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating ledger directory")
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temporary ledger file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing ledger file")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "syncing ledger file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing ledger file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replacing ledger file")
}
