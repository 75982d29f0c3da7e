//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// race builds are several times slower; hash at the library default instead
const defaultBcryptCost = bcrypt.DefaultCost

func passwordHashCost() int {
	return defaultBcryptCost
}
