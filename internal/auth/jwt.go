package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	jwtSecret       string
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 168 * time.Hour
)

type TokenPair struct {
	Access  string
	Refresh string
}

func InitJWTSecret() error {
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if minutes := os.Getenv("ACCESS_TOKEN_TTL_MINUTES"); minutes != "" {
		parsed, err := strconv.Atoi(minutes)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid ACCESS_TOKEN_TTL_MINUTES: %q", minutes)
		}
		accessTokenTTL = time.Duration(parsed) * time.Minute
	}

	if hours := os.Getenv("REFRESH_TOKEN_TTL_HOURS"); hours != "" {
		parsed, err := strconv.Atoi(hours)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid REFRESH_TOKEN_TTL_HOURS: %q", hours)
		}
		refreshTokenTTL = time.Duration(parsed) * time.Hour
	}

	return nil
}

func GenerateTokenPair(userID uint, username string) (TokenPair, error) {
	access, err := generateToken(userID, username, TokenTypeAccess, accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := generateToken(userID, username, TokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

func GenerateAccessToken(userID uint, username string) (string, error) {
	return generateToken(userID, username, TokenTypeAccess, accessTokenTTL)
}

func generateToken(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"type":     tokenType,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// VerifyJWT checks signature and expiry and requires the token to carry the
// expected type, so a refresh token cannot authenticate a request and an
// access token cannot mint new tokens.
func VerifyJWT(tokenString, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return nil, fmt.Errorf("invalid token type")
	}

	return claims, nil
}
