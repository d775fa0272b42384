package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonesrussell/lead-harvester/internal/domain"
	"github.com/jonesrussell/lead-harvester/internal/logger"
	"github.com/jonesrussell/lead-harvester/internal/pipeline"
)

func newRetriever(client *fakeClient, snapshots *fakeSnapshotStore, responses *fakeResponseStore) *pipeline.Retriever {
	return pipeline.NewRetriever(client, snapshots, responses, pipeline.RetrieverConfig{
		Interval: time.Millisecond,
	}, logger.NewNop())
}

func pendingSnapshots(ids ...string) []domain.Snapshot {
	snapshots := make([]domain.Snapshot, len(ids))
	for i, id := range ids {
		snapshots[i] = domain.Snapshot{SnapshotID: id}
	}
	return snapshots
}

func TestRetriever_StoresValidPayloadAndMarksProcessed(t *testing.T) {
	client := &fakeClient{}
	snapshots := &fakeSnapshotStore{unprocessed: pendingSnapshots("s1")}
	responses := newFakeResponseStore()

	stats, err := newRetriever(client, snapshots, responses).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Successful != 1 || stats.Total != 1 {
		t.Errorf("stats = %+v, want 1 successful of 1", stats)
	}
	if _, stored := responses.created["s1"]; !stored {
		t.Error("payload for s1 was not stored")
	}
	if len(snapshots.marked) != 1 || snapshots.marked[0] != "s1" {
		t.Errorf("marked = %v, want [s1]", snapshots.marked)
	}
}

func TestRetriever_SecondRunIsDuplicateSafe(t *testing.T) {
	client := &fakeClient{}
	snapshots := &fakeSnapshotStore{unprocessed: pendingSnapshots("s1")}
	responses := newFakeResponseStore()
	// Simulate a crash after the response write but before the mark: the
	// payload already exists.
	responses.existing["s1"] = true

	stats, err := newRetriever(client, snapshots, responses).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Duplicate != 1 {
		t.Errorf("Duplicate = %d, want 1", stats.Duplicate)
	}
	// The duplicate still flips the processed flag, healing the crash.
	if len(snapshots.marked) != 1 || snapshots.marked[0] != "s1" {
		t.Errorf("marked = %v, want [s1]", snapshots.marked)
	}
}

func TestRetriever_OutcomesPerPayload(t *testing.T) {
	payloads := map[string]json.RawMessage{
		"ok":      json.RawMessage(`[{"keyword":"x","results":[1]}]`),
		"running": json.RawMessage(`{"status":"running"}`),
		"failed":  json.RawMessage(`{"error":"no results"}`),
		"empty":   json.RawMessage(`[]`),
	}

	client := &fakeClient{
		fetchFunc: func(snapshotID string) (json.RawMessage, error) {
			if snapshotID == "gone" {
				return nil, errors.New("connection refused")
			}
			return payloads[snapshotID], nil
		},
	}
	snapshots := &fakeSnapshotStore{
		unprocessed: pendingSnapshots("ok", "running", "failed", "empty", "gone"),
	}
	responses := newFakeResponseStore()

	stats, err := newRetriever(client, snapshots, responses).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if stats.Successful != 1 {
		t.Errorf("Successful = %d, want 1", stats.Successful)
	}
	if stats.Invalid != 2 { // running + error envelope
		t.Errorf("Invalid = %d, want 2", stats.Invalid)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}

	// Only the valid non-empty payload reaches the store and the mark.
	if len(responses.created) != 1 {
		t.Errorf("stored payloads = %d, want 1", len(responses.created))
	}
	if len(snapshots.marked) != 1 || snapshots.marked[0] != "ok" {
		t.Errorf("marked = %v, want [ok]", snapshots.marked)
	}
}

func TestRetriever_MarkFailureLeavesSnapshotForNextPass(t *testing.T) {
	client := &fakeClient{}
	snapshots := &fakeSnapshotStore{
		unprocessed: pendingSnapshots("s1"),
		markErr:     errStore,
	}
	responses := newFakeResponseStore()

	stats, err := newRetriever(client, snapshots, responses).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The write succeeded, so the pass counts it; the mark failure is left
	// for the duplicate path on the next pass.
	if stats.Successful != 1 {
		t.Errorf("Successful = %d, want 1", stats.Successful)
	}
	if _, stored := responses.created["s1"]; !stored {
		t.Error("payload must be stored despite mark failure")
	}
}

func TestRetriever_ListFailure(t *testing.T) {
	snapshots := &fakeSnapshotStore{listErr: errStore}
	responses := newFakeResponseStore()

	_, err := newRetriever(&fakeClient{}, snapshots, responses).Run(context.Background())
	if !errors.Is(err, errStore) {
		t.Errorf("Run() error = %v, want %v", err, errStore)
	}
}

func TestRetriever_NoPendingSnapshots(t *testing.T) {
	client := &fakeClient{}
	snapshots := &fakeSnapshotStore{}
	responses := newFakeResponseStore()

	stats, err := newRetriever(client, snapshots, responses).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Total != 0 || len(client.fetched) != 0 {
		t.Errorf("idle pass must not fetch, stats = %+v", stats)
	}
}
