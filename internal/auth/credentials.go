package auth

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/rdservicos/portal/internal/models"
)

// CookieConfig carries the session-token parameters stored alongside the
// credentials: token name, signing key and expiry in days.
type CookieConfig struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	ExpiryDays int    `yaml:"expiry_days"`
}

type credentialUser struct {
	Name     string `yaml:"name"`
	Password string `yaml:"password"` // bcrypt hash
}

type credentialFile struct {
	Credentials struct {
		Usernames map[string]credentialUser `yaml:"usernames"`
	} `yaml:"credentials"`
	Cookie        CookieConfig `yaml:"cookie"`
	Preauthorized struct {
		Emails []string `yaml:"emails"`
	} `yaml:"preauthorized"`
}

// Store is the credential store: usernames with bcrypt-hashed secrets
// plus the session-cookie parameters. Read-only after load.
type Store struct {
	users  map[string]credentialUser
	cookie CookieConfig
}

// LoadCredentials parses a credentials.yaml file:
//
//	credentials:
//	  usernames:
//	    alice:
//	      name: Alice Silva
//	      password: $2b$12$...
//	cookie:
//	  name: rd_portal
//	  key: change-me
//	  expiry_days: 30
func LoadCredentials(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var parsed credentialFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if len(parsed.Credentials.Usernames) == 0 {
		return nil, fmt.Errorf("credentials file %s declares no users", path)
	}
	return &Store{users: parsed.Credentials.Usernames, cookie: parsed.Cookie}, nil
}

// Verify reports whether secret matches the stored hash for username.
// Unknown usernames simply verify false.
func (s *Store) Verify(username, secret string) bool {
	u, ok := s.users[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(secret)) == nil
}

// PrincipalFor resolves a username into its principal.
func (s *Store) PrincipalFor(username string) (models.Principal, bool) {
	u, ok := s.users[username]
	if !ok {
		return models.Principal{}, false
	}
	return models.Principal{Username: username, DisplayName: u.Name}, true
}

// Cookie returns the session-token parameters from the credential file.
func (s *Store) Cookie() CookieConfig {
	return s.cookie
}

// HashPassword hashes a plaintext secret with bcrypt. Used by the user
// provisioning tooling, never on the login path.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
