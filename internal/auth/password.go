package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes an agent password with bcrypt at the given cost.
// Out-of-range costs fall back to the bcrypt default rather than erroring,
// so a misconfigured AUTH_BCRYPT_COST cannot block agent seeding.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports whether the plaintext matches the stored hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
