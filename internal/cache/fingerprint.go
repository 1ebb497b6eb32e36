package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/sentinela-labs/sentinela/internal/models"
)

// fingerprintPayload holds the normalized fields that identify a post.
// Fields are declared in alphabetical order so the marshaled form is
// canonical. Metadata (likes, shares, ...) is deliberately excluded: the
// same text reposted with different engagement is the same post.
type fingerprintPayload struct {
	ImageDescription string `json:"image_description"`
	SocialNetwork    string `json:"social_network"`
	Text             string `json:"text"`
	Trend            string `json:"trend"`
}

// Fingerprint returns the SHA-256 cache key for a post. Trend participates
// in the key: the same text analyzed under two trends is two cache rows.
func Fingerprint(post models.PostInput) string {
	payload := fingerprintPayload{
		ImageDescription: strings.ToLower(strings.TrimSpace(post.ImageDescription)),
		SocialNetwork:    post.SocialNetwork,
		Text:             strings.ToLower(strings.TrimSpace(post.Text)),
		Trend:            post.Trend,
	}

	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
