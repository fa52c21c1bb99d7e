package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-server/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer   = "crm-server"
	audience = "crm-server"

	RoleOperator = "operator"
	RoleService  = "service"
)

var (
	ErrParseJWTToken   = errors.New("failed to parse token")
	ErrInvalidJWTToken = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
	ErrMissingTenant   = errors.New("token has no tenant")
	ErrFailedSignToken = errors.New("failed to sign token")
)

type AuthProcessor struct {
	secret []byte
	logger *observability.Logger
	now    func() time.Time
}

func New(jwtSecret string, logger *observability.Logger) AuthProcessor {
	return AuthProcessor{secret: []byte(jwtSecret), logger: logger, now: time.Now}
}

// BaseClaims are the claims carried by every bearer token. Operator tokens
// carry the tenant they act for; service tokens (the dispatch trigger) may not.
type BaseClaims struct {
	ExpirationTime *jwt.NumericDate `json:"exp"`
	IssuedAt       *jwt.NumericDate `json:"iat"`
	NotBefore      *jwt.NumericDate `json:"nbf,omitempty"`
	Issuer         string           `json:"iss"`
	Subject        string           `json:"sub"`
	Audience       jwt.ClaimStrings `json:"aud"`
	TenantID       string           `json:"tenant_id,omitempty"`
	Role           string           `json:"role"`
}

func (b *BaseClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return b.ExpirationTime, nil
}

func (b *BaseClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return b.IssuedAt, nil
}

func (b *BaseClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return b.NotBefore, nil
}

func (b *BaseClaims) GetIssuer() (string, error) {
	return b.Issuer, nil
}

func (b *BaseClaims) GetSubject() (string, error) {
	return b.Subject, nil
}

func (b *BaseClaims) GetAudience() (jwt.ClaimStrings, error) {
	return b.Audience, nil
}

// Tenant returns the tenant the token acts for
func (b *BaseClaims) Tenant() (uuid.UUID, error) {
	if b.TenantID == "" {
		return uuid.Nil, ErrMissingTenant
	}
	id, err := uuid.Parse(b.TenantID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("tenant_id %q: %w", b.TenantID, ErrInvalidJWTToken)
	}
	return id, nil
}

// GenerateJWTToken signs a token for subject. tenantID may be uuid.Nil for service tokens.
func (p *AuthProcessor) GenerateJWTToken(ctx context.Context, subject string, tenantID uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := &BaseClaims{
		ExpirationTime: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:       jwt.NewNumericDate(now),
		Issuer:         issuer,
		Subject:        subject,
		Audience:       jwt.ClaimStrings{audience},
		Role:           role,
	}
	if tenantID != uuid.Nil {
		claims.TenantID = tenantID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(p.secret)
	if err != nil {
		p.logger.Error(ctx, "failed to sign token", err)
		return "", ErrFailedSignToken
	}
	return tokenString, nil
}

func (p *AuthProcessor) ValidateJWTToken(ctx context.Context, token string) (BaseClaims, error) {
	var baseClaims BaseClaims
	t, err := jwt.ParseWithClaims(token, &baseClaims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			p.logger.InfoWithError(ctx, "token expired", err)
			return BaseClaims{}, ErrExpiredToken
		}

		p.logger.InfoWithError(ctx, "failed to parse token", err)
		return BaseClaims{}, ErrParseJWTToken
	}
	if !t.Valid {
		return BaseClaims{}, ErrInvalidJWTToken
	}

	claims, ok := t.Claims.(*BaseClaims)
	if !ok {
		return BaseClaims{}, ErrParseJWTToken
	}

	return *claims, nil
}
