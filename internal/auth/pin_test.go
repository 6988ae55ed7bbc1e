package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyPINPlainSecret(t *testing.T) {
	assert.True(t, VerifyPIN("4321", "4321"))
	assert.False(t, VerifyPIN("4321", "1234"))
	assert.False(t, VerifyPIN("4321", ""))
}

func TestVerifyPINBcryptSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPIN(string(hash), "4321"))
	assert.False(t, VerifyPIN(string(hash), "1234"))
}

func TestVerifyPINEmptySecretFailsClosed(t *testing.T) {
	assert.False(t, VerifyPIN("", "anything"))
	assert.False(t, VerifyPIN("", ""))
}
