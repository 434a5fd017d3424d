package credential

import (
	"context"
	"encoding/json"

	"github.com/fee-less/feeless-wallet/core"
)

// propertyKey is the single fixed storage slot for the wallet
// connection profile.
const propertyKey = "wallet_credential"

func New(properties core.PropertyStore) core.CredentialStore {
	return &store{properties: properties}
}

type store struct {
	properties core.PropertyStore
}

func (s *store) Save(ctx context.Context, cred *core.Credential) error {
	return s.properties.Set(ctx, propertyKey, cred)
}

// Load returns the stored profile, or (nil, nil) when it is missing or
// does not decode into a usable credential. A corrupted blob is never
// fatal; the user simply appears logged out.
func (s *store) Load(ctx context.Context) (*core.Credential, error) {
	var raw json.RawMessage
	if err := s.properties.Get(ctx, propertyKey, &raw); err != nil || len(raw) == 0 {
		return nil, nil
	}

	var cred core.Credential
	if err := json.Unmarshal(raw, &cred); err != nil || !cred.Valid() {
		return nil, nil
	}

	return &cred, nil
}

func (s *store) Clear(ctx context.Context) error {
	return s.properties.Delete(ctx, propertyKey)
}
