package graph

import "encoding/json"

// User is a directory user returned by SearchUsers. The common properties
// are decoded into fields; Raw keeps the full object so properties chosen
// with $select remain available.
type User struct {
	ID                string
	DisplayName       string
	Mail              string
	UserPrincipalName string
	MailNickname      string
	JobTitle          string
	CompanyName       string
	Raw               json.RawMessage
}

// Drive is a document library under a SharePoint site.
type Drive struct {
	ID   string
	Name string
}

// Item is one entry of a folder listing.
type Item struct {
	ID       string
	Name     string
	Size     int64
	WebURL   string
	IsFolder bool
	IsFile   bool
}

// Recipient is a Graph recipient object.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// EmailAddress is the address part of a Recipient.
type EmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}
