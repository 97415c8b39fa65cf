package chaincode

import (
	"strings"
	"testing"
)

func TestCreateContract(t *testing.T) {
	req := CreateContract("OS-2020-NO-123456", "please", "user-1")
	if req.Function != "createContract" {
		t.Fatalf("unexpected function %s", req.Function)
	}
	if len(req.Args) != 2 || req.Args[0] != "OS-2020-NO-123456" || req.Args[1] != "please" {
		t.Fatalf("unexpected args %v", req.Args)
	}
	if string(req.Transient["invokedBy"]) != "user-1" {
		t.Fatalf("unexpected transient %v", req.Transient)
	}
}

func TestResolveContract(t *testing.T) {
	req := ResolveContract("OS-2020-NO-123456", false, "owner-1", "abc123")
	if req.Function != "resolveContract" {
		t.Fatalf("unexpected function %s", req.Function)
	}
	if len(req.Args) != 2 || req.Args[1] != "false" {
		t.Fatalf("unexpected args %v", req.Args)
	}
	if string(req.Transient["contractId"]) != "abc123" {
		t.Fatalf("contract id missing from transient: %v", req.Transient)
	}
	if string(req.Transient["invokedBy"]) != "owner-1" {
		t.Fatalf("caller missing from transient: %v", req.Transient)
	}
}

func TestPutDatasetFileKeepsPayloadTransient(t *testing.T) {
	payload := []byte{0x1f, 0x8b, 0x00}
	req := PutDatasetFile("RE-2019-SE-000001", "user-1", payload)
	if len(req.Args) != 1 || req.Args[0] != "RE-2019-SE-000001" {
		t.Fatalf("unexpected args %v", req.Args)
	}
	if string(req.Transient["file"]) != string(payload) {
		t.Fatal("file payload must travel as transient data")
	}
}

func TestQueryMetadataAll(t *testing.T) {
	req := QueryMetadata(nil)
	if req.Function != "query" {
		t.Fatalf("unexpected function %s", req.Function)
	}
	if req.Transient != nil {
		t.Fatal("query must not carry transient data")
	}
	if !strings.Contains(req.Args[0], `"$gt": null`) {
		t.Fatalf("expected open selector, got %s", req.Args[0])
	}
	if !strings.Contains(req.Args[0], `"use_index": "indexDoc/indexId"`) {
		t.Fatalf("expected index hint, got %s", req.Args[0])
	}
}

func TestQueryMetadataByID(t *testing.T) {
	req := QueryMetadata([]string{"OS-2020-NO-123456", "CO-2020-NULL-654321"})
	if !strings.Contains(req.Args[0], `"$in": ["OS-2020-NO-123456","CO-2020-NULL-654321"]`) {
		t.Fatalf("unexpected selector: %s", req.Args[0])
	}
}
