package index

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

const (
	testFingerprintOne = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	testFingerprintTwo = "7d793037a0760186574b0282f2f435e73a2d9cdd1f05d3d1d9c9b2a0b2f2b2aa"
)

func testIndex(t *testing.T, store *fakeMFS) *Index {
	t.Helper()

	idx, err := New(Config{StoreURLs: []string{store.URL()}})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func publishParams(fingerprint string, txID string, timestamp time.Time) PublishParams {
	return PublishParams{
		FingerprintHex: fingerprint,
		ContentID:      "QmTestContent",
		TxID:           txID,
		Wallet:         "WALLETADDR",
		Timestamp:      timestamp,
		Kind:           "diploma",
		OwnerName:      "María  lópez",
	}
}

func TestPublishCreatesShardedLayout(t *testing.T) {
	store := newFakeMFS(t)
	idx := testIndex(t, store)

	when := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	cid, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", when))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if cid == "" {
		t.Error("Publish returned empty root CID")
	}

	entryPath := "/cert-index/by-hash/9f/" + testFingerprintOne + ".json"
	payload, ok := store.contents(entryPath)
	if !ok {
		t.Fatalf("entry not written; files = %v", store.fileNames())
	}
	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Fingerprint != testFingerprintOne || entry.TxID != "TX1" || entry.Owner != "MARIA LOPEZ" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Version != "v2" {
		t.Errorf("version = %q, want v2 for an owner-bearing entry", entry.Version)
	}
	if entry.Timestamp != "2026-03-14T12:00:00Z" {
		t.Errorf("timestamp = %q", entry.Timestamp)
	}

	ownerPath := "/cert-index/by-owner/M/MARIA LOPEZ.json"
	payload, ok = store.contents(ownerPath)
	if !ok {
		t.Fatalf("owner list not written; files = %v", store.fileNames())
	}
	var list OwnerList
	if err := json.Unmarshal(payload, &list); err != nil {
		t.Fatal(err)
	}
	if list.Owner != "MARIA LOPEZ" || len(list.Items) != 1 || list.Items[0].Fingerprint != testFingerprintOne {
		t.Errorf("owner list = %+v", list)
	}

	for _, name := range store.fileNames() {
		if strings.Contains(name, "/staging/") {
			t.Errorf("staging file %s left behind", name)
		}
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	store := newFakeMFS(t)
	idx := testIndex(t, store)
	when := time.Now().UTC()

	if _, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", when)); err != nil {
		t.Fatal(err)
	}
	filesAfterFirst := len(store.fileNames())

	if _, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", when)); err != nil {
		t.Fatal(err)
	}
	if got := len(store.fileNames()); got != filesAfterFirst {
		t.Errorf("file count changed from %d to %d on re-publish", filesAfterFirst, got)
	}

	list, err := idx.LookupByOwner(context.Background(), "MARIA LOPEZ")
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list.Items) != 1 {
		t.Errorf("owner list = %+v, want a single item", list)
	}
}

func TestOwnerListIsNewestFirst(t *testing.T) {
	store := newFakeMFS(t)
	idx := testIndex(t, store)

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", older)); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Publish(context.Background(), publishParams(testFingerprintTwo, "TX2", newer)); err != nil {
		t.Fatal(err)
	}

	list, err := idx.LookupByOwner(context.Background(), "MARIA LOPEZ")
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list.Items) != 2 {
		t.Fatalf("owner list = %+v, want two items", list)
	}
	if list.Items[0].Fingerprint != testFingerprintTwo {
		t.Errorf("first item = %s, want the newer fingerprint", list.Items[0].Fingerprint)
	}
}

func TestLookup(t *testing.T) {
	store := newFakeMFS(t)
	idx := testIndex(t, store)

	if _, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}

	entry, err := idx.Lookup(context.Background(), strings.ToUpper(testFingerprintOne))
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.TxID != "TX1" {
		t.Errorf("entry = %+v, want TX1", entry)
	}

	entry, err = idx.Lookup(context.Background(), testFingerprintTwo)
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil for unpublished fingerprint", entry)
	}
}

func TestLookupByOwnerIgnoresAccentsAndCase(t *testing.T) {
	store := newFakeMFS(t)
	idx := testIndex(t, store)

	if _, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}

	for _, variant := range []string{"maría  lópez", "MARIA LOPEZ", "Maria Lopez"} {
		list, err := idx.LookupByOwner(context.Background(), variant)
		if err != nil {
			t.Fatal(err)
		}
		if list == nil || len(list.Items) != 1 {
			t.Errorf("LookupByOwner(%q) = %+v, want one item", variant, list)
		}
	}

	list, err := idx.LookupByOwner(context.Background(), "SOMEBODY ELSE")
	if err != nil {
		t.Fatal(err)
	}
	if list != nil {
		t.Errorf("list = %+v, want nil for unknown owner", list)
	}
}

func TestWriterElectionSkipsDeadNode(t *testing.T) {
	store := newFakeMFS(t)

	idx, err := New(Config{StoreURLs: []string{"http://127.0.0.1:1", store.URL()}})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", time.Now().UTC())); err != nil {
		t.Fatalf("Publish with a dead first node returned error: %v", err)
	}
}

func TestPublishRepublishesStableName(t *testing.T) {
	store := newFakeMFS(t)

	idx, err := New(Config{StoreURLs: []string{store.URL()}, IPNSKey: "anchor-index"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}
	if store.publishCount() == 0 {
		t.Error("expected a stable-name publish after the index write")
	}
}

func TestRootCIDAdvancesWithPublishes(t *testing.T) {
	store := newFakeMFS(t)
	idx := testIndex(t, store)

	firstCID, err := idx.Publish(context.Background(), publishParams(testFingerprintOne, "TX1", time.Now().UTC()))
	if err != nil {
		t.Fatal(err)
	}
	secondCID, err := idx.Publish(context.Background(), publishParams(testFingerprintTwo, "TX2", time.Now().UTC()))
	if err != nil {
		t.Fatal(err)
	}
	if firstCID == secondCID {
		t.Error("root CID did not change after a new entry")
	}

	cached, err := idx.RootCID(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cached != secondCID {
		t.Errorf("RootCID = %s, want the latest %s", cached, secondCID)
	}
}

func TestPublishValidation(t *testing.T) {
	store := newFakeMFS(t)
	idx := testIndex(t, store)

	if _, err := idx.Publish(context.Background(), publishParams("not-hex", "TX1", time.Now().UTC())); err == nil {
		t.Error("expected error for malformed fingerprint")
	}

	params := publishParams(testFingerprintOne, "", time.Now().UTC())
	if _, err := idx.Publish(context.Background(), params); err == nil {
		t.Error("expected error for missing transaction ID")
	}
}
