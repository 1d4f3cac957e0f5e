package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SSOService valida las afirmaciones de login firmadas por el portal del
// colegio (HS256 con secreto compartido). El flujo OAuth completo vive en el
// portal; aca solo llega el resultado firmado.
type SSOService struct {
	secret []byte
	issuer string
}

type SSOClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
	SchoolID    string `json:"school_id,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrAssertionInvalid = errors.New("sso assertion invalid")
	ErrAssertionExpired = errors.New("sso assertion expired")
)

func NewSSOService(secret, issuer string) *SSOService {
	return &SSOService{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// VerifyAssertion valida firma, emisor y vigencia, y devuelve los claims.
func (s *SSOService) VerifyAssertion(token string) (SSOClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(token) == "" {
		return SSOClaims{}, ErrAssertionInvalid
	}

	var claims SSOClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAssertionInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SSOClaims{}, ErrAssertionExpired
		}
		return SSOClaims{}, ErrAssertionInvalid
	}
	if !parsed.Valid {
		return SSOClaims{}, ErrAssertionInvalid
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return SSOClaims{}, ErrAssertionInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return SSOClaims{}, ErrAssertionInvalid
	}
	return claims, nil
}

// SignAssertion emite una afirmacion de prueba; lo usan los tests y el seed.
func (s *SSOService) SignAssertion(claims SSOClaims, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrAssertionInvalid
	}
	now := time.Now().UTC()
	claims.Issuer = s.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
