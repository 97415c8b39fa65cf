package domain

import (
	"encoding/json"
	"time"
)

// Contract states. PENDING is the only non-terminal state.
const (
	ContractStatusPending   = "PENDING"
	ContractStatusAccepted  = "ACCEPTED"
	ContractStatusRejected  = "REJECTED"
	ContractStatusCancelled = "CANCELLED"
)

// Contract is a dataset access request. Its ID is the SHA-256 digest of
// userID + datasetID, so at most one contract exists per (user, dataset)
// pair. Policy is a snapshot taken at proposal time.
type Contract struct {
	ID        string          `json:"id"`
	DatasetID string          `json:"datasetId"`
	UserID    string          `json:"userId,omitempty"`
	Proposal  string          `json:"proposal,omitempty"`
	Response  string          `json:"response,omitempty"`
	Status    string          `json:"status"`
	Policy    json.RawMessage `json:"policy,omitempty"`
	Proposer  *User           `json:"eckoUser,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
