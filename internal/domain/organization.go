package domain

const (
	OrganizationStatusActive   = "ACTIVE"
	OrganizationStatusInactive = "INACTIVE"
)

// Organization is a ledger network participant. ConnectionProfile and
// ClientIdentity select the network connection and wallet credential used for
// every ledger operation performed as this organization.
type Organization struct {
	ID                int    `json:"id"`
	FabricName        string `json:"fabricName"`
	MspID             string `json:"mspId"`
	Name              string `json:"name"`
	Abbreviation      string `json:"abbreviation,omitempty"`
	HomeURL           string `json:"homeUrl"`
	ConnectionProfile string `json:"-"`
	ClientIdentity    string `json:"-"`
	ClientSecret      string `json:"-"`
	Status            string `json:"status"`
	ContactEmail      string `json:"contactEmail"`
}

// License is a catalog entry used to enrich contract and dataset policies
// for display.
type License struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// User is the subset of the local user entity the core needs: ownership and
// notification targets.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Orcid         string `json:"orcid,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"-"`
}

// Requester identifies the current caller as supplied by the session
// provider. The core trusts this input.
type Requester struct {
	UserID         string
	OrganizationID int
	Role           string
	EmailVerified  bool
}
