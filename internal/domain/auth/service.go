package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/pquerna/otp/totp"

	"peopledesk/internal/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"invalid email or password",
		http.StatusUnauthorized,
	)
	ErrMFARequired = apperror.New(
		apperror.CodeUnauthorized,
		"mfa code required",
		http.StatusUnauthorized,
	)
	ErrMFAInvalid = apperror.New(
		apperror.CodeUnauthorized,
		"invalid mfa code",
		http.StatusUnauthorized,
	)
)

// EmployeeResolver links a user account to its employee record.
type EmployeeResolver interface {
	EmployeeIDByUserID(ctx context.Context, userID string) (string, error)
}

type Service struct {
	store     *Store
	employees EmployeeResolver
	secret    string
	tokenTTL  time.Duration
	issuer    string
}

func NewService(store *Store, employees EmployeeResolver, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		store:     store,
		employees: employees,
		secret:    secret,
		tokenTTL:  tokenTTL,
		issuer:    "peopledesk",
	}
}

type LoginResult struct {
	Token      string `json:"token"`
	UserID     string `json:"userId"`
	EmployeeID string `json:"employeeId,omitempty"`
	RoleName   string `json:"role"`
}

func (s *Service) Login(ctx context.Context, email, password, mfaCode string) (LoginResult, error) {
	user, found, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if !found || !user.Active {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		if mfaCode == "" {
			return LoginResult{}, ErrMFARequired
		}
		if user.MFASecret == "" || !totp.Validate(mfaCode, user.MFASecret) {
			return LoginResult{}, ErrMFAInvalid
		}
	}

	employeeID, err := s.employees.EmployeeIDByUserID(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := GenerateToken(s.secret, Claims{
		UserID:     user.ID,
		EmployeeID: employeeID,
		RoleName:   user.RoleName,
	}, s.tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.store.CreateSession(ctx, user.ID, HashToken(token), time.Now().Add(s.tokenTTL)); err != nil {
		return LoginResult{}, err
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:      token,
		UserID:     user.ID,
		EmployeeID: employeeID,
		RoleName:   user.RoleName,
	}, nil
}

func (s *Service) Logout(ctx context.Context, userID, token string) error {
	return s.store.RevokeSession(ctx, userID, HashToken(token))
}

type MFASetupResult struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

func (s *Service) MFASetup(ctx context.Context, userID, email string) (MFASetupResult, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
	})
	if err != nil {
		return MFASetupResult{}, err
	}
	if err := s.store.UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return MFASetupResult{}, err
	}
	return MFASetupResult{Secret: key.Secret(), URL: key.URL()}, nil
}

func (s *Service) MFAVerify(ctx context.Context, userID, email, code string) error {
	user, found, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !found || user.ID != userID || user.MFASecret == "" {
		return ErrMFAInvalid
	}
	if !totp.Validate(code, user.MFASecret) {
		return ErrMFAInvalid
	}
	return s.store.SetMFAEnabled(ctx, userID, true)
}

// HashToken is the digest stored in the sessions table; the raw bearer token
// never touches the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
