// Package chaincode builds requests for the deployed chaincode surface. Each
// chaincode function gets its own constructor so argument order and transient
// payload shape are checked at compile time instead of assembled per call
// site. Function names and argument lists are the wire contract with the
// smart-contract layer and must not drift.
package chaincode

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Transient map keys recognized by the chaincode.
const (
	transientInvokedBy  = "invokedBy"
	transientFile       = "file"
	transientKey        = "key"
	transientContractID = "contractId"
)

// Request is a single chaincode invocation: function name, positional
// arguments and private (transient) payload.
type Request struct {
	Function  string
	Args      []string
	Transient map[string][]byte
}

// CreateContract proposes an access contract for a dataset. The caller's
// identity travels as private data.
func CreateContract(datasetID, proposal, invokedBy string) Request {
	return Request{
		Function:  "createContract",
		Args:      []string{datasetID, proposal},
		Transient: map[string][]byte{transientInvokedBy: []byte(invokedBy)},
	}
}

// ResolveContract accepts or rejects a pending contract. The deterministic
// contract identity travels as private data alongside the caller.
func ResolveContract(datasetID string, accept bool, invokedBy, contractID string) Request {
	return Request{
		Function: "resolveContract",
		Args:     []string{datasetID, strconv.FormatBool(accept)},
		Transient: map[string][]byte{
			transientInvokedBy:  []byte(invokedBy),
			transientContractID: []byte(contractID),
		},
	}
}

// PutDatasetFile stores the encrypted dataset payload. The payload itself is
// private data and never enters the shared ledger log.
func PutDatasetFile(datasetID, invokedBy string, file []byte) Request {
	return Request{
		Function: "putDatasetFile",
		Args:     []string{datasetID},
		Transient: map[string][]byte{
			transientInvokedBy: []byte(invokedBy),
			transientFile:      file,
		},
	}
}

// PutDatasetKey stores the dataset's symmetric key as private data.
func PutDatasetKey(datasetID, invokedBy, key string) Request {
	return Request{
		Function: "putDatasetKey",
		Args:     []string{datasetID},
		Transient: map[string][]byte{
			transientInvokedBy: []byte(invokedBy),
			transientKey:       []byte(key),
		},
	}
}

// CreateMetadata stores or replaces the dataset metadata document.
func CreateMetadata(metadata []byte, invokedBy string) Request {
	return Request{
		Function:  "createMetadata",
		Args:      []string{string(metadata)},
		Transient: map[string][]byte{transientInvokedBy: []byte(invokedBy)},
	}
}

// RemoveDataset removes the dataset file from world state. The ledger history
// is append-only and keeps the full record.
func RemoveDataset(datasetID, invokedBy string) Request {
	return Request{
		Function:  "removeDataset",
		Args:      []string{datasetID},
		Transient: map[string][]byte{transientInvokedBy: []byte(invokedBy)},
	}
}

// GetDatasetFile fetches the encrypted dataset payload.
func GetDatasetFile(datasetID, invokedBy string) Request {
	return Request{
		Function:  "getDatasetFile",
		Args:      []string{datasetID},
		Transient: map[string][]byte{transientInvokedBy: []byte(invokedBy)},
	}
}

// GetDatasetKey fetches the dataset's symmetric key.
func GetDatasetKey(datasetID, invokedBy string) Request {
	return Request{
		Function:  "getDatasetKey",
		Args:      []string{datasetID},
		Transient: map[string][]byte{transientInvokedBy: []byte(invokedBy)},
	}
}

// QueryMetadata evaluates a rich query for dataset metadata documents, either
// for the given IDs or for all documents when ids is empty. The selector
// shape matches the index deployed with the chaincode.
func QueryMetadata(ids []string) Request {
	selector := `"$gt": null`
	if len(ids) > 0 {
		quoted := make([]string, len(ids))
		for i, id := range ids {
			b, _ := json.Marshal(id)
			quoted[i] = string(b)
		}
		selector = `"$in": [` + strings.Join(quoted, ",") + `]`
	}
	queryString := "{\n" +
		"   \"use_index\": \"indexDoc/indexId\",\n" +
		"   \"selector\": {\n" +
		"      \"_id\": {\n" +
		"         " + selector + "\n" +
		"      }\n" +
		"   }\n" +
		"}"
	return Request{
		Function: "query",
		Args:     []string{queryString},
	}
}
