package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/kehm/eckochain-client/envelope"
	"github.com/kehm/eckochain-client/internal/domain"
)

func newDatasetUsecase(
	ledger *mockLedger,
	datasets *mockDatasetRepo,
	contracts *mockContractRepo,
	users *mockUserRepo,
	granter *mockGranter,
) *DatasetUsecase {
	return NewDatasetUsecase(
		ledger, datasets, contracts,
		&mockOrgRepo{org: domain.Organization{ID: 1, FabricName: "Org1"}},
		users, granter, "ecko", 1, "https://ecko.example.com/datasets",
	)
}

func TestDatasetSubmit(t *testing.T) {
	ledger := &mockLedger{}
	datasets := &mockDatasetRepo{}
	users := &mockUserRepo{user: domain.User{ID: "user-1", Name: "Jane Doe"}}
	uc := newDatasetUsecase(ledger, datasets, &mockContractRepo{}, users, &mockGranter{})

	form := domain.DatasetForm{
		Survey:                domain.SurveyResurvey,
		EarliestYearCollected: 2020,
		LatestYearCollected:   2021,
		Countries:             []string{"NO"},
		Contributors:          []string{"Jane Marie Doe"},
		Description:           "  plots revisited\nafter 30 years  ",
	}
	file := domain.FileUpload{Name: "plots.csv", Type: "text/csv", Content: []byte("a,b,c")}

	datasetID, err := uc.Submit(context.Background(), form, file, "", "user-1", 0)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if !regexp.MustCompile(`^RE-2020-2021-NO-\d{6}$`).MatchString(datasetID) {
		t.Errorf("unexpected dataset id %s", datasetID)
	}
	for _, function := range []string{"putDatasetFile", "putDatasetKey", "createMetadata"} {
		if ledger.invoked(function) != 1 {
			t.Errorf("expected one %s invocation, got %d", function, ledger.invoked(function))
		}
	}
	if len(datasets.created) != 1 {
		t.Fatalf("expected one create, got %d", len(datasets.created))
	}
	created := datasets.created[0]
	if created.Status != domain.DatasetStatusInactive {
		t.Errorf("expected INACTIVE, got %s", created.Status)
	}

	var metadata map[string]any
	if err := json.Unmarshal(created.Metadata, &metadata); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if metadata["description"] != "plots revisitedafter 30 years" {
		t.Errorf("expected normalized description, got %q", metadata["description"])
	}
	if metadata["policyId"] == "" {
		t.Error("expected a policy id in the metadata document")
	}
	if metadata["fileName"] != "plots.csv" {
		t.Errorf("unexpected file name %v", metadata["fileName"])
	}

	// The file travels encrypted; the plaintext must not appear on the wire.
	for _, req := range ledger.invokes {
		if req.Function == "putDatasetFile" {
			if bytes.Contains(req.Transient["file"], file.Content) {
				t.Error("expected encrypted payload, found plaintext")
			}
		}
	}
}

func TestDatasetSubmitLinksMedia(t *testing.T) {
	datasets := &mockDatasetRepo{}
	users := &mockUserRepo{user: domain.User{ID: "user-1"}}
	uc := newDatasetUsecase(&mockLedger{}, datasets, &mockContractRepo{}, users, &mockGranter{})

	form := domain.DatasetForm{Survey: domain.SurveyOriginal, EarliestYearCollected: 1990}
	datasetID, err := uc.Submit(context.Background(), form, domain.FileUpload{Content: []byte("x")}, "media-1", "user-1", 0)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if datasets.linked[datasetID] != "media-1" {
		t.Errorf("expected media link, got %v", datasets.linked)
	}
}

func TestDatasetIDFormat(t *testing.T) {
	tests := []struct {
		name    string
		form    domain.DatasetForm
		pattern string
	}{
		{
			name: "resurvey with year range and country",
			form: domain.DatasetForm{
				Survey:                domain.SurveyResurvey,
				EarliestYearCollected: 2020,
				LatestYearCollected:   2021,
				Countries:             []string{"NO", "SE"},
			},
			pattern: `^RE-2020-2021-NO-\d{6}$`,
		},
		{
			name: "combination without country",
			form: domain.DatasetForm{
				Survey:                domain.SurveyCombination,
				EarliestYearCollected: 2020,
			},
			pattern: `^CO-2020-NULL-\d{6}$`,
		},
		{
			name: "original with equal years collapses the range",
			form: domain.DatasetForm{
				Survey:                domain.SurveyOriginal,
				EarliestYearCollected: 1985,
				LatestYearCollected:   1985,
				Countries:             []string{"DE"},
			},
			pattern: `^OS-1985-DE-\d{6}$`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := newDatasetID(tt.form)
			if err != nil {
				t.Fatalf("id generation failed: %v", err)
			}
			if !regexp.MustCompile(tt.pattern).MatchString(id) {
				t.Errorf("id %s does not match %s", id, tt.pattern)
			}
		})
	}
}

func TestDatasetCitation(t *testing.T) {
	uc := newDatasetUsecase(&mockLedger{}, &mockDatasetRepo{}, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	tests := []struct {
		name         string
		contributors []string
		submitter    string
		want         string
	}{
		{
			name:         "single contributor",
			contributors: []string{"Jane Marie Doe"},
			want:         "Doe, J. M. (2021), RE-1, ECKO Resurvey Data Consortium, https://ecko.example.com/datasets/RE-1",
		},
		{
			name:         "two contributors",
			contributors: []string{"Jane Doe", "John Smith"},
			want:         "Doe, J. & Smith, J. (2021), RE-1, ECKO Resurvey Data Consortium, https://ecko.example.com/datasets/RE-1",
		},
		{
			name:         "three contributors",
			contributors: []string{"Jane Doe", "John Smith", "Ada King"},
			want:         "Doe, J., Smith, J. & King, A. (2021), RE-1, ECKO Resurvey Data Consortium, https://ecko.example.com/datasets/RE-1",
		},
		{
			name:         "more than three get et al",
			contributors: []string{"Jane Doe", "John Smith", "Ada King", "Carl Linnaeus"},
			want:         "Doe, J., Smith, J., King, A. et al. (2021), RE-1, ECKO Resurvey Data Consortium, https://ecko.example.com/datasets/RE-1",
		},
		{
			name:      "falls back to submitter",
			submitter: "Jane Doe",
			want:      "Doe, J. (2021), RE-1, ECKO Resurvey Data Consortium, https://ecko.example.com/datasets/RE-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := uc.citation(tt.contributors, tt.submitter, "RE-1", 2021)
			if got != tt.want {
				t.Errorf("citation mismatch\n got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestDatasetRetrieveAsOwner(t *testing.T) {
	key, err := envelope.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	plaintext := []byte("a,b,c\n1,2,3")
	encrypted, err := envelope.Encrypt(key, plaintext)
	if err != nil {
		t.Fatal(err)
	}

	ledger := &mockLedger{
		results: map[string][]byte{
			"getDatasetFile": encrypted,
			"getDatasetKey":  []byte(key),
		},
	}
	datasets := &mockDatasetRepo{
		dataset: domain.Dataset{ID: "RE-1", Status: domain.DatasetStatusActive},
		owner:   domain.User{ID: "owner"},
	}
	granter := &mockGranter{}
	uc := newDatasetUsecase(ledger, datasets, &mockContractRepo{}, &mockUserRepo{}, granter)

	content, err := uc.Retrieve(context.Background(), "RE-1", "owner", 0)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if !bytes.Equal(content, plaintext) {
		t.Errorf("expected decrypted content, got %q", content)
	}
	if len(granter.granted) != 0 {
		t.Errorf("owner retrieval must not grant a contract, got %v", granter.granted)
	}
}

func TestDatasetRetrieveGrantsAccessInline(t *testing.T) {
	key, err := envelope.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	encrypted, err := envelope.Encrypt(key, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	ledger := &mockLedger{
		results: map[string][]byte{
			"getDatasetFile": encrypted,
			"getDatasetKey":  []byte(key),
		},
	}
	datasets := &mockDatasetRepo{
		dataset: domain.Dataset{ID: "RE-1", Status: domain.DatasetStatusActive, Policy: json.RawMessage(`{}`)},
		owner:   domain.User{ID: "owner"},
	}
	contracts := &mockContractRepo{accepted: false}
	granter := &mockGranter{}
	uc := newDatasetUsecase(ledger, datasets, contracts, &mockUserRepo{}, granter)

	if _, err := uc.Retrieve(context.Background(), "RE-1", "stranger", 0); err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(granter.granted) != 1 || granter.granted[0] != "RE-1" {
		t.Errorf("expected inline grant for RE-1, got %v", granter.granted)
	}
}

func TestDatasetRetrieveSkipsGrantWithAcceptedContract(t *testing.T) {
	key, err := envelope.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	encrypted, err := envelope.Encrypt(key, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	ledger := &mockLedger{
		results: map[string][]byte{
			"getDatasetFile": encrypted,
			"getDatasetKey":  []byte(key),
		},
	}
	datasets := &mockDatasetRepo{
		dataset: domain.Dataset{ID: "RE-1", Status: domain.DatasetStatusActive},
		owner:   domain.User{ID: "owner"},
	}
	contracts := &mockContractRepo{accepted: true}
	granter := &mockGranter{}
	uc := newDatasetUsecase(ledger, datasets, contracts, &mockUserRepo{}, granter)

	if _, err := uc.Retrieve(context.Background(), "RE-1", "stranger", 0); err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(granter.granted) != 0 {
		t.Errorf("expected no grant with an accepted contract, got %v", granter.granted)
	}
}

func TestDatasetRetrieveMissingFile(t *testing.T) {
	ledger := &mockLedger{}
	datasets := &mockDatasetRepo{
		dataset: domain.Dataset{ID: "RE-1"},
		owner:   domain.User{ID: "owner"},
	}
	uc := newDatasetUsecase(ledger, datasets, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	_, err := uc.Retrieve(context.Background(), "RE-1", "owner", 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDatasetRemove(t *testing.T) {
	ledger := &mockLedger{}
	datasets := &mockDatasetRepo{removedRows: 1}
	uc := newDatasetUsecase(ledger, datasets, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	if err := uc.Remove(context.Background(), "RE-1", "owner", 0); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if ledger.invoked("removeDataset") != 1 {
		t.Errorf("expected one removeDataset invocation")
	}
}

func TestDatasetRemoveNotOwned(t *testing.T) {
	datasets := &mockDatasetRepo{removedRows: 0}
	uc := newDatasetUsecase(&mockLedger{}, datasets, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	err := uc.Remove(context.Background(), "RE-1", "stranger", 0)
	if !errors.Is(err, domain.ErrStaleState) {
		t.Fatalf("expected stale state error, got %v", err)
	}
}

func TestDatasetUpdateMetadata(t *testing.T) {
	ledger := &mockLedger{}
	datasets := &mockDatasetRepo{
		dataset: domain.Dataset{
			ID:       "RE-1",
			Status:   domain.DatasetStatusActive,
			Metadata: json.RawMessage(`{"datasetId":"RE-1"}`),
			Policy:   json.RawMessage(`{"policyId":"p-1","license":"CCBY40"}`),
		},
		owner: domain.User{ID: "owner"},
	}
	uc := newDatasetUsecase(ledger, datasets, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	form := domain.DatasetForm{Survey: domain.SurveyResurvey, EarliestYearCollected: 2020, Description: "updated"}
	if err := uc.UpdateMetadata(context.Background(), "RE-1", form, "owner", 0); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if ledger.invoked("createMetadata") != 1 {
		t.Fatalf("expected one createMetadata invocation")
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(ledger.invokes[0].Args[0]), &doc); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if doc["policyId"] != "p-1" {
		t.Errorf("expected policy id carried over, got %v", doc["policyId"])
	}
	if doc["datasetId"] != "RE-1" {
		t.Errorf("expected dataset id in document, got %v", doc["datasetId"])
	}
}

func TestDatasetUpdateMetadataNotOwner(t *testing.T) {
	datasets := &mockDatasetRepo{
		dataset: domain.Dataset{ID: "RE-1", Status: domain.DatasetStatusActive, Metadata: json.RawMessage(`{}`), Policy: json.RawMessage(`{}`)},
		owner:   domain.User{ID: "owner"},
	}
	uc := newDatasetUsecase(&mockLedger{}, datasets, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	err := uc.UpdateMetadata(context.Background(), "RE-1", domain.DatasetForm{}, "stranger", 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDatasetUpdateMetadataInactive(t *testing.T) {
	datasets := &mockDatasetRepo{
		dataset: domain.Dataset{ID: "RE-1", Status: domain.DatasetStatusInactive, Metadata: json.RawMessage(`{}`), Policy: json.RawMessage(`{}`)},
		owner:   domain.User{ID: "owner"},
	}
	uc := newDatasetUsecase(&mockLedger{}, datasets, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	err := uc.UpdateMetadata(context.Background(), "RE-1", domain.DatasetForm{}, "owner", 0)
	if !errors.Is(err, domain.ErrStaleState) {
		t.Fatalf("expected stale state error, got %v", err)
	}
}

func TestDatasetListFlagsOwnRows(t *testing.T) {
	datasets := &mockDatasetRepo{
		active: []domain.Dataset{
			{ID: "RE-1", UserID: "user-1"},
			{ID: "RE-2", UserID: "user-2"},
		},
	}
	uc := newDatasetUsecase(&mockLedger{}, datasets, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	result, err := uc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result[0].ContractStatus != domain.ContractStatusAccepted {
		t.Errorf("expected own row flagged ACCEPTED, got %s", result[0].ContractStatus)
	}
	if result[1].ContractStatus != "" {
		t.Errorf("expected foreign row unflagged, got %s", result[1].ContractStatus)
	}
	for _, dataset := range result {
		if dataset.UserID != "" {
			t.Errorf("expected owner reference stripped, got %s", dataset.UserID)
		}
	}
}

func TestDatasetGetByIDInactive(t *testing.T) {
	datasets := &mockDatasetRepo{
		dataset: domain.Dataset{ID: "RE-1", Status: domain.DatasetStatusInactive},
		owner:   domain.User{ID: "owner"},
	}
	uc := newDatasetUsecase(&mockLedger{}, datasets, &mockContractRepo{}, &mockUserRepo{}, &mockGranter{})

	_, err := uc.GetByID(context.Background(), "RE-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestFormatContributor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "Doe, J."},
		{"Jane Marie Doe", "Doe, J. M."},
		{"Cher", "Cher"},
	}
	for _, tt := range tests {
		if got := formatContributor(tt.in); got != tt.want {
			t.Errorf("formatContributor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
