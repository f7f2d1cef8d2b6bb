package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps the suite fast; production uses DefaultArgon2Params.
var cheapArgon2 = Argon2Params{Time: 1, Memory: 1024, Threads: 1}

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService(cheapArgon2)

	hash, err := svc.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := svc.Verify("s3cret-pass", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("s3cret-pasS", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2HashService_UniqueSalts(t *testing.T) {
	svc := NewArgon2HashService(cheapArgon2)

	a, err := svc.Hash("same")
	require.NoError(t, err)
	b, err := svc.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2HashService_VerifyUsesStoredParams(t *testing.T) {
	old := NewArgon2HashService(Argon2Params{Time: 2, Memory: 2048, Threads: 2})
	hash, err := old.Hash("pw")
	require.NoError(t, err)

	current := NewArgon2HashService(cheapArgon2)
	ok, err := current.Verify("pw", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2HashService_DefaultsFillZeroFields(t *testing.T) {
	svc := NewArgon2HashService(Argon2Params{})
	assert.Equal(t, DefaultArgon2Params(), svc.params)
}

func TestArgon2HashService_RejectsMalformed(t *testing.T) {
	svc := NewArgon2HashService(cheapArgon2)
	for name, hash := range map[string]string{
		"garbage":   "not-a-valid-hash",
		"bcrypt":    "$2a$10$abcdefghijklmnopqrstuv",
		"algorithm": "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"version":   "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5",
		"salt":      "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"empty key": "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify("pw", hash)
			assert.ErrorIs(t, err, errBadHash)
		})
	}
}
