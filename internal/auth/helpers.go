package auth

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type JWTClaims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`      // Needed for RBAC in protected endpoints
	SchoolID string `json:"school_id"` // Staff scope, empty for platform admins
	jwt.RegisteredClaims
}

// AuthConfig holds the login JWT key. It is injected rather than read
// from a package-level variable so middleware and tests share one
// explicit source.
type AuthConfig struct {
	JWTKey []byte
}

func NewAuthConfig() *AuthConfig {
	key := os.Getenv("JWT_KEY")
	if key == "" {
		log.Fatal("JWT_KEY not set")
	}
	return &AuthConfig{JWTKey: []byte(key)}
}

func GenerateJWT(key []byte, name, email, role, schoolID string, duration time.Duration) (string, error) {
	claims := &JWTClaims{
		Name:     name,
		Email:    email,
		Role:     role,
		SchoolID: schoolID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func ValidateJWT(key []byte, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
