package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kehm/eckochain-client/internal/domain"
)

func TestCacheRefreshCountsWrittenRows(t *testing.T) {
	ledger := &mockLedger{
		queryRes: `[
			{"datasetId":"RE-1","modified":"2021-01-01","status":"ACTIVE","policy":{"license":"CCBY40"},"fileInfo":{"fileName":"a.csv"},"contracts":["c-1"]},
			{"datasetId":"RE-2","modified":"2021-01-02","status":"ACTIVE"}
		]`,
	}
	datasets := &mockDatasetRepo{syncWrites: map[string]bool{"RE-1": true, "RE-2": false}}
	uc := NewCacheUsecase(ledger, datasets, &mockOrgRepo{org: domain.Organization{ID: 1}}, "ecko", 1)

	written, err := uc.Refresh(context.Background(), nil)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if written != 1 {
		t.Errorf("expected 1 written row, got %d", written)
	}
	if len(datasets.synced) != 2 {
		t.Fatalf("expected 2 synced records, got %d", len(datasets.synced))
	}

	rec := datasets.synced[0]
	if rec.ID != "RE-1" || rec.Rev != "2021-01-01" || rec.Status != "ACTIVE" {
		t.Errorf("unexpected record %+v", rec)
	}
	if string(rec.Policy) != `{"license":"CCBY40"}` {
		t.Errorf("expected policy split out, got %s", rec.Policy)
	}
	if string(rec.FileInfo) != `{"fileName":"a.csv"}` {
		t.Errorf("expected fileInfo split out, got %s", rec.FileInfo)
	}
	for _, field := range []string{"policy", "fileInfo", "contracts"} {
		if strings.Contains(string(rec.Metadata), `"`+field+`"`) {
			t.Errorf("expected %s stripped from metadata, got %s", field, rec.Metadata)
		}
	}
}

func TestCacheRefreshQueriesGivenIDs(t *testing.T) {
	ledger := &mockLedger{queryRes: `[]`}
	uc := NewCacheUsecase(ledger, &mockDatasetRepo{}, &mockOrgRepo{}, "ecko", 1)

	if _, err := uc.Refresh(context.Background(), []string{"RE-1", "RE-2"}); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(ledger.queries) != 1 {
		t.Fatalf("expected one query, got %d", len(ledger.queries))
	}
	selector := ledger.queries[0].Args[0]
	if !strings.Contains(selector, `"$in": ["RE-1","RE-2"]`) {
		t.Errorf("expected id selector, got %s", selector)
	}
}

func TestCacheRefreshIdempotentWhenUnchanged(t *testing.T) {
	ledger := &mockLedger{
		queryRes: `[{"datasetId":"RE-1","modified":"2021-01-01","status":"ACTIVE"}]`,
	}
	datasets := &mockDatasetRepo{syncWrites: map[string]bool{"RE-1": false}}
	uc := NewCacheUsecase(ledger, datasets, &mockOrgRepo{}, "ecko", 1)

	written, err := uc.Refresh(context.Background(), nil)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if written != 0 {
		t.Errorf("expected no writes against unchanged ledger data, got %d", written)
	}
}

func TestParseMetadataStringEncodedDocuments(t *testing.T) {
	doc, err := json.Marshal(`{"datasetId":"RE-1","modified":"2021-01-01","status":"ACTIVE"}`)
	if err != nil {
		t.Fatal(err)
	}

	records, err := parseMetadata(`[` + string(doc) + `]`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "RE-1" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestParseMetadataRejectsMalformedResult(t *testing.T) {
	if _, err := parseMetadata(`not json`); err == nil {
		t.Error("expected error for malformed result set")
	}
	if _, err := parseMetadata(`[{"modified":"2021-01-01"}]`); err == nil {
		t.Error("expected error for document without datasetId")
	}
}
