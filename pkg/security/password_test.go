package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupay-labs/edupay-backend/pkg/config"
)

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     8,
	ArgonKeyLen:      16,
}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", fastArgon)
	require.NoError(t, err)

	ok, err := VerifyPassword("s3cret-pass", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("whatever", "not-an-argon-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := HashPassword("", fastArgon)
	assert.Error(t, err)
}
