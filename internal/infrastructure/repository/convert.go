package repository

import (
	"encoding/json"

	"github.com/kehm/eckochain-client/internal/domain"
	"github.com/kehm/eckochain-client/internal/infrastructure/database/models"
)

const emailStatusVerified = "VERIFIED"

func toDomainDataset(m models.Dataset) domain.Dataset {
	return domain.Dataset{
		ID:                    m.ID,
		Rev:                   strValue(m.Rev),
		Status:                m.Status,
		BibliographicCitation: strValue(m.BibliographicCitation),
		GeoReference:          strValue(m.GeoReference),
		Contributors:          m.Contributors,
		UserID:                strValue(m.UserID),
		Metadata:              jsonValue(m.Metadata),
		Policy:                jsonValue(m.Policy),
		FileInfo:              jsonValue(m.FileInfo),
		CreatedAt:             m.CreatedAt,
	}
}

func toDomainContract(m models.Contract) domain.Contract {
	contract := domain.Contract{
		ID:        m.ID,
		DatasetID: m.DatasetID,
		UserID:    strValue(m.UserID),
		Proposal:  strValue(m.Proposal),
		Response:  strValue(m.Response),
		Status:    m.Status,
		Policy:    jsonValue(m.Policy),
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		proposer := toDomainUser(*m.User)
		contract.Proposer = &proposer
	}
	return contract
}

func toDomainUser(m models.User) domain.User {
	user := domain.User{
		ID:    m.ID,
		Name:  m.Name,
		Orcid: strValue(m.Orcid),
	}
	if m.Email != nil {
		user.Email = m.Email.Email
		user.EmailVerified = m.Email.Status == emailStatusVerified
	}
	return user
}

func toDomainOrganization(m models.Organization) domain.Organization {
	return domain.Organization{
		ID:                m.ID,
		FabricName:        m.FabricName,
		MspID:             m.MspID,
		Name:              m.Name,
		Abbreviation:      strValue(m.Abbreviation),
		HomeURL:           m.HomeURL,
		ConnectionProfile: m.ConnectionProfile,
		ClientIdentity:    m.ClientIdentity,
		ClientSecret:      m.ClientSecret,
		Status:            m.Status,
		ContactEmail:      m.ContactEmail,
	}
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// jsonValue maps the jsonb column default to an absent document.
func jsonValue(s string) json.RawMessage {
	if s == "" || s == "null" {
		return nil
	}
	return json.RawMessage(s)
}

// jsonColumn maps an absent document to the jsonb column default.
func jsonColumn(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
