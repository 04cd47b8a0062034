package revocation

import (
	"errors"

	"aquapulse/internal/jwtsigner"
)

var ErrMalformedToken = errors.New("revocation: malformed token")

const keyPrefix = "revoked:"

// key derives the denylist key from the token signature, which is unique per minted token.
func key(token string) (string, error) {
	sig := jwtsigner.Signature(token)
	if sig == "" {
		return "", ErrMalformedToken
	}
	return keyPrefix + sig, nil
}
