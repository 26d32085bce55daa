package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewmatch/config"
	"crewmatch/models"
	"gorm.io/gorm"
)

func TestGenerateAndParseJWTToken(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	user := &models.User{Model: gorm.Model{ID: 42}, TokenVersion: 3}
	access, refresh, err := GenerateJWTToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ParseJWTToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)

	claims, err = ParseJWTToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestParseJWTToken_WrongSecret(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	user := &models.User{Model: gorm.Model{ID: 1}}
	access, _, err := GenerateJWTToken(user)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "different-secret"
	_, err = ParseJWTToken(access)
	assert.Error(t, err)
}

func TestValidateStruct_Messages(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
		Score int    `validate:"min=1,max=5"`
	}

	err := ValidateStruct(form{Score: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "score must be at most 5")

	assert.NoError(t, ValidateStruct(form{Email: "a@b.co", Score: 3}))
}
