package auth

import (
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
)

// JWTManager verifies HS256 access tokens issued by the identity provider.
// GenerateAccessToken exists for local development and tests.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	leeway    time.Duration
	now       func() time.Time
}

// phoneVerificationPurpose marks tokens minted after a phone OTP check.
// They carry no subject and are never accepted as access tokens.
const phoneVerificationPurpose = "phone_verification"

const phoneVerificationTTL = 10 * time.Minute

type tokenClaims struct {
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

type phoneClaims struct {
	Purpose     string `json:"purpose"`
	PhoneNumber string `json:"phone_number"`
	jwt.RegisteredClaims
}

// PhoneVerification is the proof that PhoneNumber passed an OTP check at
// VerifiedAt.
type PhoneVerification struct {
	PhoneNumber string
	VerifiedAt  time.Time
}

func NewJWTManager(secret, issuer string, accessTTL time.Duration) *JWTManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}

	return &JWTManager{
		secret:    []byte(secret),
		issuer:    strings.TrimSpace(issuer),
		accessTTL: accessTTL,
		leeway:    30 * time.Second,
		now:       time.Now,
	}
}

func (m *JWTManager) GenerateAccessToken(identity Identity) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("jwt secret is empty")
	}
	if strings.TrimSpace(identity.UserID) == "" {
		return "", time.Time{}, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.accessTTL)
	claims := tokenClaims{
		Role:  string(enums.ParseRole(string(identity.Role))),
		Name:  identity.Name,
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

func (m *JWTManager) ParseAccessToken(raw string) (Identity, error) {
	if strings.TrimSpace(raw) == "" || len(m.secret) == 0 {
		return Identity{}, ErrUnauthorized
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, m.keyFunc, m.parserOptions()...)
	if err != nil || token == nil || !token.Valid || claims.Purpose != "" {
		return Identity{}, ErrUnauthorized
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Identity{}, ErrUnauthorized
	}

	return Identity{
		UserID:    subject,
		Role:      enums.ParseRole(claims.Role),
		Name:      strings.TrimSpace(claims.Name),
		Email:     strings.TrimSpace(claims.Email),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// GeneratePhoneVerification mints a short lived proof for a phone number
// that just passed an OTP check.
func (m *JWTManager) GeneratePhoneVerification(phone string) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("jwt secret is empty")
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	}

	now := m.now().UTC()
	claims := phoneClaims{
		Purpose:     phoneVerificationPurpose,
		PhoneNumber: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(phoneVerificationTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign phone verification: %w", err)
	}
	return signed, nil
}

// ParsePhoneVerification accepts only phone verification tokens. A token
// issued more than ten minutes ago is rejected even if its expiry is later.
func (m *JWTManager) ParsePhoneVerification(raw string) (PhoneVerification, error) {
	if strings.TrimSpace(raw) == "" || len(m.secret) == 0 {
		return PhoneVerification{}, ErrUnauthorized
	}

	opts := append(m.parserOptions(), jwt.WithIssuedAt())
	claims := &phoneClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, m.keyFunc, opts...)
	if err != nil || token == nil || !token.Valid {
		return PhoneVerification{}, ErrUnauthorized
	}
	if claims.Purpose != phoneVerificationPurpose || claims.IssuedAt == nil {
		return PhoneVerification{}, ErrUnauthorized
	}

	phone := strings.TrimSpace(claims.PhoneNumber)
	issuedAt := claims.IssuedAt.Time.UTC()
	if phone == "" || m.now().Sub(issuedAt) > phoneVerificationTTL+m.leeway {
		return PhoneVerification{}, ErrUnauthorized
	}

	return PhoneVerification{PhoneNumber: phone, VerifiedAt: issuedAt}, nil
}

func (m *JWTManager) keyFunc(_ *jwt.Token) (interface{}, error) {
	return m.secret, nil
}

func (m *JWTManager) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	return opts
}
