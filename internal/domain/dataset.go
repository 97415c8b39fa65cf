package domain

import (
	"encoding/json"
	"time"
)

const (
	DatasetStatusActive   = "ACTIVE"
	DatasetStatusInactive = "INACTIVE"
	DatasetStatusRemoved  = "REMOVED"
)

// Survey types accepted on submission.
const (
	SurveyOriginal    = "ORIGINAL"
	SurveyResurvey    = "RESURVEY"
	SurveyCombination = "COMBINATION"
)

// Dataset is the local mirror of a ledger-side dataset entry. The ledger is
// authoritative for Rev, Status, Metadata, Policy and FileInfo.
type Dataset struct {
	ID                    string          `json:"id"`
	Rev                   string          `json:"rev,omitempty"`
	Status                string          `json:"status"`
	BibliographicCitation string          `json:"bibliographicCitation,omitempty"`
	GeoReference          string          `json:"geoReference,omitempty"`
	Contributors          []string        `json:"contributors,omitempty"`
	UserID                string          `json:"userId,omitempty"`
	Metadata              json.RawMessage `json:"metadata,omitempty"`
	Policy                json.RawMessage `json:"policy,omitempty"`
	FileInfo              json.RawMessage `json:"fileInfo,omitempty"`
	ContractStatus        string          `json:"contractStatus,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// HasPolicy reports whether the dataset carries an access policy.
func (d Dataset) HasPolicy() bool {
	return len(d.Policy) > 0 && string(d.Policy) != "null"
}

// DatasetForm is the normalized submission form.
type DatasetForm struct {
	Survey                string   `json:"survey"`
	Description           string   `json:"description,omitempty"`
	Terms                 string   `json:"terms,omitempty"`
	License               string   `json:"license,omitempty"`
	EarliestYearCollected int      `json:"earliestYearCollected"`
	LatestYearCollected   int      `json:"latestYearCollected,omitempty"`
	Countries             []string `json:"countries,omitempty"`
	Contributors          []string `json:"contributors,omitempty"`
	Habitat               string   `json:"habitat,omitempty"`
	Taxa                  string   `json:"taxa,omitempty"`
	LocationRemarks       string   `json:"locationRemarks,omitempty"`
	GeoReference          string   `json:"geoReference,omitempty"`
}

// DatasetRecord is one metadata document as reported by the ledger, with the
// policy/fileInfo/contracts sub-documents already split out of the blob.
type DatasetRecord struct {
	ID       string
	Rev      string
	Status   string
	Metadata json.RawMessage
	Policy   json.RawMessage
	FileInfo json.RawMessage
}

// FileUpload carries an uploaded dataset file through submission.
type FileUpload struct {
	Name    string
	Type    string
	Content []byte
}
