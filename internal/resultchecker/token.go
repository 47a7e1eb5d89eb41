package resultchecker

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the self-contained credential handed to parents. The
// embedded pair is cross-checked against the request so a token cannot
// be replayed for a different student or class.
type TokenClaims struct {
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
	SchoolID  string `json:"school_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type SignerConfig struct {
	Key []byte
}

func NewSignerConfig() *SignerConfig {
	key := os.Getenv("RESULT_CHECKER_JWT_KEY")
	if key == "" {
		key = os.Getenv("JWT_KEY")
	}
	if key == "" {
		log.Fatal("JWT signing key not set")
	}
	return &SignerConfig{Key: []byte(key)}
}

// TokenSigner mints and checks result checker tokens. It is constructed
// with its key rather than reading a package-level variable so tests can
// build signers with throwaway keys.
type TokenSigner struct {
	key []byte
}

func NewTokenSigner(config *SignerConfig) *TokenSigner {
	return &TokenSigner{key: config.Key}
}

func (s *TokenSigner) Sign(studentID, classID, schoolID string, validity time.Duration) (string, error) {
	claims := &TokenClaims{
		StudentID: studentID,
		ClassID:   classID,
		SchoolID:  schoolID,
		TokenType: TokenTypeResultChecker,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Validate checks the signature and the token type claim. Registered
// claim validation is skipped: the stored record's expiry is
// authoritative so that a lapsed token reports as expired, not merely
// invalid.
func (s *TokenSigner) Validate(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeResultChecker {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
