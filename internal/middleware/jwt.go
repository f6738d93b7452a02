package middleware

import (
	"errors"
	"strings"

	"github.com/vitrii/agenda/internal/utils"
)

var errMalformedBearer = errors.New("malformed authorization header")

// bearerUserID extracts and verifies a "Bearer <jwt>" header.  ok is false
// when the header is absent.
func bearerUserID(header, secret string) (id uint64, ok bool, err error) {
	if header == "" {
		return 0, false, nil
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return 0, true, errMalformedBearer
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	id, err = utils.ParseAccessToken(secret, raw)
	return id, true, err
}
