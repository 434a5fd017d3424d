package core

import "context"

// Credential is the persisted wallet connection profile. Stored as a
// single JSON blob; the field names are a storage compatibility
// contract.
type Credential struct {
	PrivateKey string `json:"privateKey"`
	WSNode     string `json:"wsNode"`
	HTTPNode   string `json:"httpNode"`
}

func (c *Credential) Valid() bool {
	return c != nil && c.PrivateKey != "" && c.HTTPNode != ""
}

// CredentialStore persists at most one credential profile,
// last-write-wins. Load reports a missing or malformed profile as
// (nil, nil), never as a failure.
type CredentialStore interface {
	Save(ctx context.Context, cred *Credential) error
	Load(ctx context.Context) (*Credential, error)
	Clear(ctx context.Context) error
}
