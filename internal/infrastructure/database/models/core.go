package models

import (
	"time"

	"github.com/lib/pq"
)

type Dataset struct {
	ID                    string         `json:"id" gorm:"primaryKey;column:dataset_id;type:varchar(255)"`
	Rev                   *string        `json:"rev,omitempty" gorm:"column:revision;type:varchar(255)"`
	Status                string         `json:"status" gorm:"column:dataset_status_name;type:varchar(30);not null"`
	BibliographicCitation *string        `json:"bibliographicCitation,omitempty" gorm:"column:bibliographic_citation;type:text"`
	GeoReference          *string        `json:"geoReference,omitempty" gorm:"column:geo_reference;type:text"`
	Contributors          pq.StringArray `json:"contributors,omitempty" gorm:"column:contributors;type:text[]"`
	UserID                *string        `json:"userId,omitempty" gorm:"column:ecko_user_id;type:uuid;index"`
	User                  *User          `json:"-" gorm:"foreignKey:UserID"`
	Metadata              string         `json:"metadata,omitempty" gorm:"column:metadata;type:jsonb;default:'null'"`
	Policy                string         `json:"policy,omitempty" gorm:"column:policy;type:jsonb;default:'null'"`
	FileInfo              string         `json:"fileInfo,omitempty" gorm:"column:file_info;type:jsonb;default:'null'"`
	CreatedAt             time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt             time.Time      `json:"updatedAt" gorm:"column:updated_at"`
}

type Contract struct {
	ID        string    `json:"id" gorm:"primaryKey;column:contract_id;type:varchar(255)"`
	DatasetID string    `json:"datasetId" gorm:"column:dataset_id;type:varchar(255);not null;index"`
	Dataset   *Dataset  `json:"-" gorm:"foreignKey:DatasetID"`
	UserID    *string   `json:"userId,omitempty" gorm:"column:ecko_user_id;type:uuid;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	Proposal  *string   `json:"proposal,omitempty" gorm:"column:proposal;type:text"`
	Response  *string   `json:"response,omitempty" gorm:"column:response;type:text"`
	Status    string    `json:"status" gorm:"column:contract_status_name;type:varchar(30);not null"`
	Policy    string    `json:"policy,omitempty" gorm:"column:policy;type:jsonb;default:'null'"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

type Organization struct {
	ID                int       `json:"id" gorm:"primaryKey;autoIncrement;column:organization_id"`
	FabricName        string    `json:"fabricName" gorm:"column:fabric_name;type:varchar(30);uniqueIndex;not null"`
	MspID             string    `json:"mspId" gorm:"column:msp_id;type:varchar(30);uniqueIndex;not null"`
	Name              string    `json:"name" gorm:"column:name;type:varchar(30);not null"`
	Abbreviation      *string   `json:"abbreviation,omitempty" gorm:"column:abbreviation;type:varchar(6)"`
	HomeURL           string    `json:"homeUrl" gorm:"column:home_url;type:varchar(60);not null"`
	ConnectionProfile string    `json:"-" gorm:"column:connection_profile;type:varchar(60);not null"`
	ClientIdentity    string    `json:"-" gorm:"column:client_identity;type:varchar(30);not null"`
	ClientSecret      string    `json:"-" gorm:"column:client_secret;type:varchar(60);not null"`
	Status            string    `json:"status" gorm:"column:organization_status_name;type:varchar(30);not null"`
	ContactEmail      string    `json:"contactEmail" gorm:"column:contact_email;type:varchar(60);not null"`
	CreatedAt         time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt         time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

type License struct {
	Code        string  `json:"code" gorm:"primaryKey;column:license_code;type:varchar(30)"`
	Name        string  `json:"name" gorm:"column:license_name;type:varchar(30);uniqueIndex;not null"`
	Description *string `json:"description,omitempty" gorm:"column:description;type:text"`
	URL         *string `json:"url,omitempty" gorm:"column:url;type:varchar(60)"`
	Icon        *string `json:"icon,omitempty" gorm:"column:icon;type:varchar(60)"`
}

type User struct {
	ID             string    `json:"id" gorm:"primaryKey;column:ecko_user_id;type:uuid"`
	Name           string    `json:"name" gorm:"column:name;type:varchar(60);not null"`
	Orcid          *string   `json:"orcid,omitempty" gorm:"column:orcid;type:varchar(60)"`
	OrganizationID *int      `json:"organizationId,omitempty" gorm:"column:organization_id"`
	Email          *Email    `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt      time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

type Email struct {
	ID     int    `json:"id" gorm:"primaryKey;autoIncrement;column:user_email_id"`
	UserID string `json:"userId" gorm:"column:ecko_user_id;type:uuid;index;not null"`
	Email  string `json:"email" gorm:"column:email;type:varchar(60);not null"`
	Status string `json:"status" gorm:"column:email_status_name;type:varchar(30);not null"`
}

type Media struct {
	ID        string    `json:"id" gorm:"primaryKey;column:media_id;type:uuid"`
	FileName  string    `json:"fileName" gorm:"column:file_name;type:varchar(255);not null"`
	Type      string    `json:"type" gorm:"column:media_type_name;type:varchar(30);not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
}

type DatasetMedia struct {
	DatasetID string `json:"datasetId" gorm:"primaryKey;column:dataset_id;type:varchar(255)"`
	MediaID   string `json:"mediaId" gorm:"primaryKey;column:media_id;type:uuid"`
}
