package gcp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ServiceAccount is the subset of a Google service account key the Sheets reader needs.
type ServiceAccount struct {
	Email      string
	PrivateKey string
	TokenURI   string
}

func (s ServiceAccount) Configured() bool {
	return strings.TrimSpace(s.Email) != "" && strings.TrimSpace(s.PrivateKey) != ""
}

// ServiceAccountFromEnv prefers GOOGLE_SA_EMAIL/GOOGLE_SA_PRIVATE_KEY and falls back to a
// credentials document in GOOGLE_APPLICATION_CREDENTIALS_JSON (inline) or
// GOOGLE_APPLICATION_CREDENTIALS (inline JSON or file path). A zero value means nothing
// is configured.
func ServiceAccountFromEnv() (ServiceAccount, error) {
	sa := ServiceAccount{
		Email:      strings.TrimSpace(os.Getenv("GOOGLE_SA_EMAIL")),
		PrivateKey: os.Getenv("GOOGLE_SA_PRIVATE_KEY"),
		TokenURI:   strings.TrimSpace(os.Getenv("GOOGLE_TOKEN_URL")),
	}
	if sa.Configured() {
		return sa, nil
	}

	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return ServiceAccount{}, nil
	}
	raw := []byte(creds)
	if !strings.HasPrefix(creds, "{") {
		b, err := os.ReadFile(creds)
		if err != nil {
			return ServiceAccount{}, fmt.Errorf("read credentials file: %w", err)
		}
		raw = b
	}
	parsed, err := ParseServiceAccountJSON(raw)
	if err != nil {
		return ServiceAccount{}, err
	}
	if sa.TokenURI != "" {
		parsed.TokenURI = sa.TokenURI
	}
	return parsed, nil
}

func ParseServiceAccountJSON(raw []byte) (ServiceAccount, error) {
	var doc struct {
		Type        string `json:"type"`
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
		TokenURI    string `json:"token_uri"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ServiceAccount{}, fmt.Errorf("parse credentials json: %w", err)
	}
	if doc.Type != "" && doc.Type != "service_account" {
		return ServiceAccount{}, fmt.Errorf("credentials type %q is not a service account", doc.Type)
	}
	sa := ServiceAccount{Email: doc.ClientEmail, PrivateKey: doc.PrivateKey, TokenURI: doc.TokenURI}
	if !sa.Configured() {
		return ServiceAccount{}, fmt.Errorf("credentials json missing client_email or private_key")
	}
	return sa, nil
}
