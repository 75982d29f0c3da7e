package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// BcryptHasher implements CredentialHasher with bcrypt
type BcryptHasher struct {
	cost int
}

var _ CredentialHasher = (*BcryptHasher)(nil)

// NewBcryptHasher returns a bcrypt hasher. A zero cost picks the build default,
// out of range costs are clamped.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = passwordHashCost()
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the work factor used for new hashes
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash will generate a salted password hash
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to hash password")
	}
	return string(out), nil
}

// Verify reports whether password matches hashedValue. Malformed hashes
// verify as false.
func (h *BcryptHasher) Verify(password, hashedValue string) bool {
	if password == "" || hashedValue == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedValue), []byte(password)) == nil
}

// PrefixHasher hashes with a primary algorithm and verifies with whichever
// algorithm the stored hash prefix names.
type PrefixHasher struct {
	primary CredentialHasher
	bcrypt  CredentialHasher
	argon2  CredentialHasher
}

var _ CredentialHasher = (*PrefixHasher)(nil)

// NewHasher builds the hasher named by algorithm. New hashes use that
// algorithm, existing bcrypt and argon2id hashes both keep verifying.
func NewHasher(algorithm string, bcryptCost int) (*PrefixHasher, error) {
	h := &PrefixHasher{
		bcrypt: NewBcryptHasher(bcryptCost),
		argon2: NewArgon2idHasher(),
	}

	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", HasherBcrypt:
		h.primary = h.bcrypt
	case HasherArgon2id:
		h.primary = h.argon2
	default:
		return nil, configError("unsupported password hasher " + algorithm)
	}

	return h, nil
}

func (h *PrefixHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h *PrefixHasher) Verify(password, hashedValue string) bool {
	switch {
	case strings.HasPrefix(hashedValue, argon2idPrefix):
		return h.argon2.Verify(password, hashedValue)
	case strings.HasPrefix(hashedValue, "$2"):
		return h.bcrypt.Verify(password, hashedValue)
	default:
		return false
	}
}

// RandomPasswordHash hashes a random password. The result never matches
// any input a user can submit.
func RandomPasswordHash(h CredentialHasher) (string, error) {
	if h == nil {
		h = NewBcryptHasher(0)
	}
	return h.Hash(uuid.New().String())
}
