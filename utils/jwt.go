package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"outreachly/config"
	"outreachly/models"
)

type Claims struct {
	UserID       uint `json:"user_id"`
	TokenVersion int  `json:"token_version"`
	jwt.RegisteredClaims
}

func GenerateJWTToken(user *models.User) (string, string, error) {
	// Access token (15 minutes expiry)
	accessClaims := &Claims{
		UserID:       user.ID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(config.AppConfig.EncryptionKey))
	if err != nil {
		return "", "", err
	}

	// Refresh token (7 days expiry)
	refreshClaims := &Claims{
		UserID:       user.ID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(config.AppConfig.EncryptionKey))
	if err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}

func ParseJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.EncryptionKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// PersistRefreshToken records an issued refresh token so it can be
// checked and revoked later.
func PersistRefreshToken(userID uint, token, userAgent, ipAddress string) error {
	record := models.RefreshToken{
		UserID:    userID,
		Token:     token,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	return config.DB.Create(&record).Error
}

// RevokeRefreshTokens marks every outstanding refresh token for the
// user as revoked.
func RevokeRefreshTokens(userID uint) error {
	return config.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
}

// RefreshTokens exchanges a valid refresh token for a fresh pair. The
// presented token is revoked so it cannot be replayed.
func RefreshTokens(refreshToken string) (string, string, error) {
	claims, err := ParseJWTToken(refreshToken)
	if err != nil {
		return "", "", err
	}

	if time.Until(claims.ExpiresAt.Time) <= 0 {
		return "", "", errors.New("refresh token expired")
	}

	var record models.RefreshToken
	if err := config.DB.
		Where("user_id = ? AND token = ? AND revoked_at IS NULL AND expires_at > ?",
			claims.UserID, refreshToken, time.Now()).
		First(&record).Error; err != nil {
		return "", "", errors.New("refresh token not recognized")
	}

	var user models.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		return "", "", errors.New("user not found")
	}

	// Tokens issued before a password change are rejected.
	if claims.TokenVersion != user.TokenVersion {
		return "", "", errors.New("token has been revoked")
	}

	now := time.Now()
	if err := config.DB.Model(&record).Update("revoked_at", now).Error; err != nil {
		return "", "", err
	}

	accessToken, newRefreshToken, err := GenerateJWTToken(&user)
	if err != nil {
		return "", "", err
	}
	if err := PersistRefreshToken(user.ID, newRefreshToken, record.UserAgent, record.IPAddress); err != nil {
		return "", "", err
	}

	return accessToken, newRefreshToken, nil
}
