package maas

import (
	"fmt"
	"strings"
)

// APIKey is the three-part MAAS API key. MAAS hands it out as a single
// colon-separated string: consumer key, token, and shared secret.
type APIKey struct {
	ConsumerKey string
	Token       string
	Secret      string
}

// ParseAPIKey splits and validates a raw API key string. Validation is
// purely local; a malformed key never reaches the network.
func ParseAPIKey(raw string) (APIKey, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 3 {
		return APIKey{}, fmt.Errorf("malformed API key: expected consumer:token:secret, got %d segment(s)", len(parts))
	}
	for _, part := range parts {
		if part == "" {
			return APIKey{}, fmt.Errorf("malformed API key: empty segment")
		}
	}
	return APIKey{ConsumerKey: parts[0], Token: parts[1], Secret: parts[2]}, nil
}

// AuthorizationHeader builds the OAuth 1.0 PLAINTEXT Authorization value
// MAAS expects. The output is deterministic for a fixed timestamp and
// nonce, which keeps it testable.
func (k APIKey) AuthorizationHeader(timestamp, nonce string) string {
	return fmt.Sprintf(
		`OAuth oauth_version="1.0", oauth_signature_method="PLAINTEXT", oauth_consumer_key="%s", oauth_token="%s", oauth_signature="&%s", oauth_timestamp="%s", oauth_nonce="%s"`,
		k.ConsumerKey, k.Token, k.Secret, timestamp, nonce,
	)
}
