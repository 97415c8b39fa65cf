package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kehm/eckochain-client/internal/chaincode"
	"github.com/kehm/eckochain-client/internal/domain"
)

// CacheUsecase reconciles the local dataset cache with ledger state. The
// ledger is authoritative; cached rows are overwritten only when their
// revision differs from the ledger-reported one.
type CacheUsecase struct {
	ledger     Ledger
	datasets   DatasetRepository
	orgs       OrganizationRepository
	chaincode  string
	defaultOrg int
}

func NewCacheUsecase(
	ledger Ledger,
	datasets DatasetRepository,
	orgs OrganizationRepository,
	chaincodeName string,
	defaultOrg int,
) *CacheUsecase {
	return &CacheUsecase{
		ledger:     ledger,
		datasets:   datasets,
		orgs:       orgs,
		chaincode:  chaincodeName,
		defaultOrg: defaultOrg,
	}
}

// Refresh pulls metadata documents from the ledger, either for the given IDs
// or for all datasets when ids is empty, and upserts them into the cache.
// Returns the number of rows actually written: a second run against unchanged
// ledger data writes zero rows.
func (uc *CacheUsecase) Refresh(ctx context.Context, ids []string) (int, error) {
	org, err := uc.orgs.Get(ctx, uc.defaultOrg)
	if err != nil {
		return 0, err
	}

	raw, err := uc.ledger.Query(ctx, org, uc.chaincode, chaincode.QueryMetadata(ids))
	if err != nil {
		return 0, err
	}

	records, err := parseMetadata(raw)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, rec := range records {
		wrote, err := uc.datasets.Sync(ctx, rec)
		if err != nil {
			return written, err
		}
		if wrote {
			written++
		}
	}
	return written, nil
}

// parseMetadata decodes the query result into dataset records, splitting the
// policy/fileInfo/contracts sub-documents out of the general metadata blob.
// Elements may be JSON objects or JSON-encoded strings containing objects,
// depending on how the chaincode serialized the result set.
func parseMetadata(raw string) ([]domain.DatasetRecord, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return nil, fmt.Errorf("metadata query result: %w", err)
	}

	records := make([]domain.DatasetRecord, 0, len(elements))
	for _, element := range elements {
		doc := []byte(element)
		if len(doc) > 0 && doc[0] == '"' {
			var inner string
			if err := json.Unmarshal(doc, &inner); err != nil {
				return nil, fmt.Errorf("metadata document: %w", err)
			}
			doc = []byte(inner)
		}

		var blob map[string]json.RawMessage
		if err := json.Unmarshal(doc, &blob); err != nil {
			return nil, fmt.Errorf("metadata document: %w", err)
		}

		var rec domain.DatasetRecord
		if err := json.Unmarshal(blob["datasetId"], &rec.ID); err != nil {
			return nil, fmt.Errorf("metadata document missing datasetId: %w", err)
		}
		if raw, ok := blob["modified"]; ok {
			if err := json.Unmarshal(raw, &rec.Rev); err != nil {
				return nil, fmt.Errorf("metadata document %s: %w", rec.ID, err)
			}
		}
		if raw, ok := blob["status"]; ok {
			if err := json.Unmarshal(raw, &rec.Status); err != nil {
				return nil, fmt.Errorf("metadata document %s: %w", rec.ID, err)
			}
		}
		rec.Policy = blob["policy"]
		rec.FileInfo = blob["fileInfo"]

		delete(blob, "policy")
		delete(blob, "fileInfo")
		delete(blob, "contracts")
		metadata, err := json.Marshal(blob)
		if err != nil {
			return nil, err
		}
		rec.Metadata = metadata

		records = append(records, rec)
	}
	return records, nil
}
