package usecase

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kehm/eckochain-client/envelope"
	"github.com/kehm/eckochain-client/internal/chaincode"
	"github.com/kehm/eckochain-client/internal/domain"
)

const consortiumName = "ECKO Resurvey Data Consortium"

// DatasetUsecase orchestrates encryption, ledger submission and contract
// bookkeeping for dataset submission, retrieval and removal.
type DatasetUsecase struct {
	ledger      Ledger
	datasets    DatasetRepository
	contracts   ContractRepository
	orgs        OrganizationRepository
	users       UserRepository
	granter     AccessGranter
	chaincode   string
	defaultOrg  int
	datasetLink string
}

func NewDatasetUsecase(
	ledger Ledger,
	datasets DatasetRepository,
	contracts ContractRepository,
	orgs OrganizationRepository,
	users UserRepository,
	granter AccessGranter,
	chaincodeName string,
	defaultOrg int,
	datasetLink string,
) *DatasetUsecase {
	return &DatasetUsecase{
		ledger:      ledger,
		datasets:    datasets,
		contracts:   contracts,
		orgs:        orgs,
		users:       users,
		granter:     granter,
		chaincode:   chaincodeName,
		defaultOrg:  defaultOrg,
		datasetLink: datasetLink,
	}
}

// Submit encrypts the uploaded file, submits file, key and metadata to the
// ledger and creates the local cache row. The dataset starts INACTIVE until
// ledger-side activation reaches the cache through the reconciler. Returns
// the generated dataset ID.
func (uc *DatasetUsecase) Submit(ctx context.Context, form domain.DatasetForm, file domain.FileUpload, mediaID, userID string, orgID int) (string, error) {
	org, err := uc.resolveOrg(ctx, orgID)
	if err != nil {
		return "", err
	}
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	normalizeForm(&form)
	datasetID, err := newDatasetID(form)
	if err != nil {
		return "", err
	}

	doc := struct {
		domain.DatasetForm
		DatasetID string `json:"datasetId"`
		PolicyID  string `json:"policyId"`
		FileName  string `json:"fileName"`
		FileType  string `json:"fileType"`
	}{form, datasetID, uuid.NewString(), file.Name, file.Type}
	metadata, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	key, err := envelope.GenerateKey()
	if err != nil {
		return "", err
	}
	encrypted, err := envelope.Encrypt(key, file.Content)
	if err != nil {
		return "", err
	}

	if _, err := uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.PutDatasetFile(datasetID, userID, encrypted)); err != nil {
		return "", err
	}
	if _, err := uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.PutDatasetKey(datasetID, userID, key)); err != nil {
		return "", err
	}
	if _, err := uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.CreateMetadata(metadata, userID)); err != nil {
		return "", err
	}

	err = uc.datasets.Create(ctx, domain.Dataset{
		ID:                    datasetID,
		Status:                domain.DatasetStatusInactive,
		BibliographicCitation: uc.citation(form.Contributors, user.Name, datasetID, time.Now().Year()),
		GeoReference:          form.GeoReference,
		Contributors:          form.Contributors,
		UserID:                userID,
		Metadata:              metadata,
	})
	if err != nil {
		return "", err
	}

	if mediaID != "" {
		if err := uc.datasets.LinkMedia(ctx, datasetID, mediaID); err != nil {
			return "", err
		}
	}
	return datasetID, nil
}

// Retrieve fetches and decrypts the dataset file. Non-owners without an
// accepted contract are granted one inline before the file is served.
func (uc *DatasetUsecase) Retrieve(ctx context.Context, datasetID, userID string, orgID int) ([]byte, error) {
	org, err := uc.resolveOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	dataset, owner, err := uc.datasets.GetWithOwner(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	if owner.ID != userID {
		accepted, err := uc.contracts.HasAccepted(ctx, datasetID, userID)
		if err != nil {
			return nil, err
		}
		if !accepted {
			if err := uc.granter.AutoGrant(ctx, datasetID, userID, org, dataset.Policy, owner); err != nil {
				return nil, err
			}
		}
	}

	file, err := uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.GetDatasetFile(datasetID, userID))
	if err != nil {
		return nil, err
	}
	if len(file) == 0 {
		return nil, domain.NotFoundError{Resource: "dataset file"}
	}
	key, err := uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.GetDatasetKey(datasetID, userID))
	if err != nil {
		return nil, err
	}
	return envelope.Decrypt(string(key), file)
}

// Remove submits the removal transaction and marks the cache row REMOVED,
// scoped to the owning user. The ledger entry itself is never deleted.
func (uc *DatasetUsecase) Remove(ctx context.Context, datasetID, userID string, orgID int) error {
	org, err := uc.resolveOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if _, err := uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.RemoveDataset(datasetID, userID)); err != nil {
		return err
	}
	matched, err := uc.datasets.MarkRemoved(ctx, datasetID, userID)
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.StaleStateError{Resource: "dataset"}
	}
	return nil
}

// UpdateMetadata replaces the ledger-side metadata document for an ACTIVE
// dataset. Owner only. The cache row is refreshed later by the reconciler.
func (uc *DatasetUsecase) UpdateMetadata(ctx context.Context, datasetID string, form domain.DatasetForm, userID string, orgID int) error {
	org, err := uc.resolveOrg(ctx, orgID)
	if err != nil {
		return err
	}

	dataset, owner, err := uc.datasets.GetWithOwner(ctx, datasetID)
	if err != nil {
		return err
	}
	if owner.ID != userID {
		return domain.NotFoundError{Resource: "dataset"}
	}
	if !dataset.HasPolicy() {
		return domain.PolicyMissingError{DatasetID: datasetID}
	}
	if dataset.Status != domain.DatasetStatusActive || len(dataset.Metadata) == 0 {
		return domain.StaleStateError{Resource: "dataset"}
	}

	var policy struct {
		PolicyID string `json:"policyId"`
	}
	if err := json.Unmarshal(dataset.Policy, &policy); err != nil {
		return err
	}

	normalizeForm(&form)
	doc := struct {
		domain.DatasetForm
		DatasetID string `json:"datasetId"`
		PolicyID  string `json:"policyId"`
	}{form, datasetID, policy.PolicyID}
	metadata, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.CreateMetadata(metadata, userID))
	return err
}

// List returns all ACTIVE datasets. Rows owned by the requester are flagged
// with an accepted contract status; owner references are stripped.
func (uc *DatasetUsecase) List(ctx context.Context, requesterID string) ([]domain.Dataset, error) {
	datasets, err := uc.datasets.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range datasets {
		if requesterID != "" && datasets[i].UserID == requesterID {
			datasets[i].ContractStatus = domain.ContractStatusAccepted
		}
		datasets[i].UserID = ""
	}
	return datasets, nil
}

// UserDatasets returns the ACTIVE datasets owned by the user.
func (uc *DatasetUsecase) UserDatasets(ctx context.Context, userID string) ([]domain.Dataset, error) {
	return uc.datasets.ListByOwner(ctx, userID)
}

// GetByID returns one ACTIVE dataset with a resolvable owner.
func (uc *DatasetUsecase) GetByID(ctx context.Context, datasetID string) (domain.Dataset, error) {
	dataset, owner, err := uc.datasets.GetWithOwner(ctx, datasetID)
	if err != nil {
		return domain.Dataset{}, err
	}
	if dataset.Status != domain.DatasetStatusActive || owner.ID == "" {
		return domain.Dataset{}, domain.NotFoundError{Resource: "dataset"}
	}
	return dataset, nil
}

func (uc *DatasetUsecase) resolveOrg(ctx context.Context, orgID int) (domain.Organization, error) {
	if orgID == 0 {
		orgID = uc.defaultOrg
	}
	return uc.orgs.Get(ctx, orgID)
}

// citation renders the bibliographic citation for a freshly submitted
// dataset, falling back to the submitter's own name when no contributors
// were given.
func (uc *DatasetUsecase) citation(contributors []string, submitter, datasetID string, year int) string {
	names := make([]string, 0, len(contributors))
	for _, contributor := range contributors {
		names = append(names, formatContributor(contributor))
	}
	if len(names) == 0 {
		names = []string{formatContributor(submitter)}
	}

	var joined string
	switch len(names) {
	case 1:
		joined = names[0]
	case 2:
		joined = names[0] + " & " + names[1]
	case 3:
		joined = names[0] + ", " + names[1] + " & " + names[2]
	default:
		joined = names[0] + ", " + names[1] + ", " + names[2] + " et al."
	}

	return fmt.Sprintf("%s (%d), %s, %s, %s/%s",
		joined, year, datasetID, consortiumName, uc.datasetLink, datasetID)
}

// formatContributor renders "First Middle Last" as "Last, F. M.". The last
// whitespace-delimited token is the surname; remaining tokens reduce to
// initials.
func formatContributor(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name
	}
	surname := fields[len(fields)-1]
	initials := make([]string, 0, len(fields)-1)
	for _, field := range fields[:len(fields)-1] {
		initials = append(initials, string([]rune(field)[0])+".")
	}
	return surname + ", " + strings.Join(initials, " ")
}

// newDatasetID derives the composite dataset ID: survey prefix, year range,
// first country code (or NULL) and a 6-digit random suffix. Collisions are
// accepted as negligible, not eliminated.
func newDatasetID(form domain.DatasetForm) (string, error) {
	var prefix string
	switch form.Survey {
	case domain.SurveyOriginal:
		prefix = "OS"
	case domain.SurveyResurvey:
		prefix = "RE"
	default:
		prefix = "CO"
	}

	years := strconv.Itoa(form.EarliestYearCollected)
	if form.LatestYearCollected != 0 && form.LatestYearCollected != form.EarliestYearCollected {
		years += "-" + strconv.Itoa(form.LatestYearCollected)
	}

	country := "NULL"
	if len(form.Countries) > 0 {
		country = form.Countries[0]
	}

	suffix, err := randomDigits(6)
	if err != nil {
		return "", err
	}
	return prefix + "-" + years + "-" + country + "-" + suffix, nil
}

func randomDigits(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		digit, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteString(digit.String())
	}
	return sb.String(), nil
}

// normalizeForm strips leading/trailing whitespace and embedded newlines from
// the free-text fields.
func normalizeForm(form *domain.DatasetForm) {
	form.Description = normalizeText(form.Description)
	form.Terms = normalizeText(form.Terms)
	form.LocationRemarks = normalizeText(form.LocationRemarks)
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.TrimSpace(s)
}
