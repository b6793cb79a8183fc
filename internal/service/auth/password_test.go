package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier_HashAndCompare(t *testing.T) {
	t.Parallel()

	// MinCost keeps the test fast.
	v := NewBcryptVerifier(bcrypt.MinCost)

	hash, err := v.Hash(context.Background(), "correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, v.Compare(context.Background(), hash, "correct horse battery staple"))

	err = v.Compare(context.Background(), hash, "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewBcryptVerifier_DefaultCost(t *testing.T) {
	t.Parallel()

	v := NewBcryptVerifier(0)
	assert.Equal(t, bcrypt.DefaultCost, v.cost)
}
