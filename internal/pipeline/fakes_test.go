package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonesrussell/lead-harvester/internal/domain"
)

var errStore = errors.New("store unavailable")

type fakeClient struct {
	triggerFunc func(keywords []string) (string, error)
	fetchFunc   func(snapshotID string) (json.RawMessage, error)

	triggered [][]string
	fetched   []string
}

func (f *fakeClient) Trigger(_ context.Context, keywords []string) (string, error) {
	f.triggered = append(f.triggered, keywords)
	if f.triggerFunc != nil {
		return f.triggerFunc(keywords)
	}
	return fmt.Sprintf("snap-%d", len(f.triggered)), nil
}

func (f *fakeClient) Fetch(_ context.Context, snapshotID string) (json.RawMessage, error) {
	f.fetched = append(f.fetched, snapshotID)
	if f.fetchFunc != nil {
		return f.fetchFunc(snapshotID)
	}
	return json.RawMessage(`[{"keyword":"x"}]`), nil
}

type fakeSnapshotStore struct {
	created     []*domain.Snapshot
	unprocessed []domain.Snapshot
	marked      []string
	submitted   []string

	createErr error
	listErr   error
	markErr   error
}

func (f *fakeSnapshotStore) Create(_ context.Context, snapshot *domain.Snapshot) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, snapshot)
	return nil
}

func (f *fakeSnapshotStore) ListUnprocessed(_ context.Context) ([]domain.Snapshot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.unprocessed, nil
}

func (f *fakeSnapshotStore) MarkProcessed(_ context.Context, snapshotID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, snapshotID)
	return nil
}

func (f *fakeSnapshotStore) ListSubmittedQueries(_ context.Context) ([]string, error) {
	return f.submitted, nil
}

type fakeResponseStore struct {
	created     map[string]json.RawMessage
	unextracted []domain.Response
	marked      []string

	existing   map[string]bool
	createErr  error
	listErr    error
	markErrFor map[string]error
}

func newFakeResponseStore() *fakeResponseStore {
	return &fakeResponseStore{
		created:    map[string]json.RawMessage{},
		existing:   map[string]bool{},
		markErrFor: map[string]error{},
	}
}

func (f *fakeResponseStore) Create(_ context.Context, snapshotID string, payload json.RawMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.existing[snapshotID] {
		return domain.ErrAlreadyExists
	}
	f.created[snapshotID] = payload
	f.existing[snapshotID] = true
	return nil
}

func (f *fakeResponseStore) ListUnextracted(_ context.Context, limit int) ([]domain.Response, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > len(f.unextracted) {
		limit = len(f.unextracted)
	}
	page := make([]domain.Response, limit)
	copy(page, f.unextracted[:limit])
	return page, nil
}

func (f *fakeResponseStore) CountUnextracted(_ context.Context) (int64, error) {
	return int64(len(f.unextracted)), nil
}

func (f *fakeResponseStore) MarkExtracted(_ context.Context, snapshotID string) error {
	if err := f.markErrFor[snapshotID]; err != nil {
		return err
	}
	for i := range f.unextracted {
		if f.unextracted[i].SnapshotID == snapshotID {
			f.unextracted = append(f.unextracted[:i], f.unextracted[i+1:]...)
			break
		}
	}
	f.marked = append(f.marked, snapshotID)
	return nil
}

type fakeEmailStore struct {
	saved  []string
	known  map[string]bool
	errFor map[string]error
}

func newFakeEmailStore() *fakeEmailStore {
	return &fakeEmailStore{
		known:  map[string]bool{},
		errFor: map[string]error{},
	}
}

func (f *fakeEmailStore) Create(_ context.Context, email string) error {
	if err := f.errFor[email]; err != nil {
		return err
	}
	if f.known[email] {
		return domain.ErrAlreadyExists
	}
	f.known[email] = true
	f.saved = append(f.saved, email)
	return nil
}
