package service

import (
	"errors"

	"github.com/rdservicos/portal/internal/auth"
	"github.com/rdservicos/portal/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("username and password are required")
)

// AuthService resolves credentials into principals. Verification itself
// is delegated to the credential store; this service only binds the
// outcome to a session token.
type AuthService struct {
	creds *auth.Store
}

func NewAuthService(creds *auth.Store) *AuthService {
	return &AuthService{creds: creds}
}

type AuthResult struct {
	Token string           `json:"token"`
	User  models.Principal `json:"user"`
}

// Authenticate checks the supplied credentials and returns the matching
// principal. Unknown users and wrong passwords are indistinguishable to
// the caller.
func (s *AuthService) Authenticate(username, password string) (models.Principal, error) {
	if username == "" || password == "" {
		return models.Principal{}, ErrMissingCredentials
	}
	if !s.creds.Verify(username, password) {
		return models.Principal{}, ErrInvalidCredentials
	}
	p, ok := s.creds.PrincipalFor(username)
	if !ok {
		return models.Principal{}, ErrInvalidCredentials
	}
	return p, nil
}

// Login authenticates and issues a signed session token using the
// cookie parameters from the credential file.
func (s *AuthService) Login(username, password string) (*AuthResult, error) {
	p, err := s.Authenticate(username, password)
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateToken(s.creds.Cookie(), p)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: p}, nil
}
