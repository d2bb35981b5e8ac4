package inmemdb

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/courseflow/backend/core/course"
)

// courseStore keeps the ledger document in memory. Documents are deep-copied on the way in and out
// so callers can never alias the stored state.
type courseStore struct {
	mutex sync.RWMutex
	doc   []byte
	saves int

	loadErr error
	saveErr error
}

var _ course.Store = (*courseStore)(nil)

// NewCourseStore returns an empty store, or one holding doc when given.
func NewCourseStore(doc ...course.Document) *courseStore {
	store := &courseStore{}
	if len(doc) > 0 {
		_ = store.Save(context.Background(), doc[0])
		store.saves = 0
	}
	return store
}

func (store *courseStore) Load(_ context.Context) (course.Document, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	if store.loadErr != nil {
		return course.Document{}, store.loadErr
	}
	doc := course.Document{NextCourseID: 1, NextAssessmentID: 1}
	if store.doc == nil {
		return doc, nil
	}
	if err := json.Unmarshal(store.doc, &doc); err != nil {
		return course.Document{}, errors.Wrap(err, "decoding document")
	}
	return doc, nil
}

func (store *courseStore) Save(_ context.Context, doc course.Document) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	store.saves++
	if store.saveErr != nil {
		return store.saveErr
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	store.doc = data
	return nil
}

// Document returns the last saved document.
func (store *courseStore) Document() (course.Document, bool) {
	store.mutex.RLock()
	hasDoc := store.doc != nil
	store.mutex.RUnlock()
	if !hasDoc {
		return course.Document{}, false
	}
	doc, err := store.Load(context.Background())
	return doc, err == nil
}

func (store *courseStore) Saves() int {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return store.saves
}

// FailLoads makes every following Load fail with err (nil restores normal behaviour).
func (store *courseStore) FailLoads(err error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.loadErr = err
}

// FailSaves makes every following Save fail with err (nil restores normal behaviour).
func (store *courseStore) FailSaves(err error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.saveErr = err
}
