//go:build !race

package auth

// defaultBcryptCost is used when a BcryptHasher is built with cost 0
const defaultBcryptCost = 12

func passwordHashCost() int {
	return defaultBcryptCost
}
