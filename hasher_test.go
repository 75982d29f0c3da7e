package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/webafan/portfolio-auth"
)

func TestBcryptHasher(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	t.Run("round trip", func(t *testing.T) {
		hash, err := h.Hash("s3cret")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2"))
		assert.NotContains(t, hash, "s3cret")
		assert.True(t, h.Verify("s3cret", hash))
		assert.False(t, h.Verify("S3cret", hash))
	})

	t.Run("fresh salt per hash", func(t *testing.T) {
		h1, err := h.Hash("s3cret")
		require.NoError(t, err)
		h2, err := h.Hash("s3cret")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
		assert.True(t, h.Verify("s3cret", h1))
		assert.True(t, h.Verify("s3cret", h2))
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := h.Hash("")
		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
		assert.False(t, h.Verify("", "$2a$04$abc"))
	})

	t.Run("too long password", func(t *testing.T) {
		_, err := h.Hash(strings.Repeat("a", 73))
		assert.Error(t, err)
	})

	t.Run("malformed hash never panics", func(t *testing.T) {
		for _, v := range []string{"", "garbage", "$2a$", "$2a$99$xxxxxxxxxxxxxxxxxxxxxx", "$argon2id$nope"} {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("s3cret", v))
			}, v)
		}
	})

	t.Run("cost clamping", func(t *testing.T) {
		assert.Equal(t, bcrypt.MinCost, auth.NewBcryptHasher(1).Cost())
		assert.Equal(t, bcrypt.MaxCost, auth.NewBcryptHasher(99).Cost())
		assert.GreaterOrEqual(t, auth.NewBcryptHasher(0).Cost(), bcrypt.DefaultCost)
	})
}

func TestArgon2idHasher(t *testing.T) {
	h := auth.NewArgon2idHasher()

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	assert.True(t, h.Verify("correct horse", hash))
	assert.False(t, h.Verify("correct horse battery", hash))
	assert.False(t, h.Verify("", hash))

	other, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)

	_, err = h.Hash("")
	assert.ErrorIs(t, err, auth.ErrNoEmptyString)

	for _, v := range []string{
		"",
		"$argon2id$",
		"$argon2id$v=19$m=65536,t=1,p=4$$",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=999999999,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$aGFzaA",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
	} {
		assert.False(t, h.Verify("correct horse", v), v)
	}
}

func TestPrefixHasher(t *testing.T) {
	bcryptHash, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash("pw")
	require.NoError(t, err)
	argonHash, err := auth.NewArgon2idHasher().Hash("pw")
	require.NoError(t, err)

	t.Run("bcrypt primary verifies both", func(t *testing.T) {
		h, err := auth.NewHasher(auth.HasherBcrypt, bcrypt.MinCost)
		require.NoError(t, err)

		fresh, err := h.Hash("pw")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(fresh, "$2"))

		assert.True(t, h.Verify("pw", bcryptHash))
		assert.True(t, h.Verify("pw", argonHash))
		assert.False(t, h.Verify("pw", "plain-text-pw"))
	})

	t.Run("argon2id primary", func(t *testing.T) {
		h, err := auth.NewHasher("ARGON2ID", 0)
		require.NoError(t, err)

		fresh, err := h.Hash("pw")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(fresh, "$argon2id$"))
		assert.True(t, h.Verify("pw", bcryptHash))
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := auth.NewHasher("md5", 0)
		require.Error(t, err)
		assert.Equal(t, auth.KindConfig, auth.KindOf(err))
	})
}

func TestRandomPasswordHash(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)
	random, err := auth.RandomPasswordHash(h)
	require.NoError(t, err)
	assert.False(t, h.Verify("", random))
	assert.False(t, h.Verify("helper-pw", random))
}
