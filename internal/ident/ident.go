// Package ident generates human-readable random identifiers for new
// chats, in the adjective-noun-token style.
package ident

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

var adjectives = []string{
	"ancient", "autumn", "billowing", "bitter", "bold", "broken",
	"calm", "cold", "cool", "crimson", "damp", "dawn", "delicate",
	"divine", "dry", "empty", "falling", "floral", "fragrant", "frosty",
	"gentle", "green", "hidden", "holy", "icy", "late", "lingering",
	"little", "lively", "long", "misty", "morning", "muddy", "nameless",
	"old", "patient", "polished", "proud", "purple", "quiet", "rapid",
	"restless", "rough", "shy", "silent", "small", "snowy", "solitary",
	"sparkling", "spring", "still", "summer", "twilight", "wandering",
	"weathered", "white", "wild", "winter", "wispy", "withered", "young",
}

var nouns = []string{
	"bird", "breeze", "brook", "bush", "butterfly", "cherry", "cloud",
	"darkness", "dawn", "dew", "dream", "dust", "feather", "field",
	"fire", "firefly", "flower", "fog", "forest", "frog", "frost",
	"glade", "glitter", "grass", "haze", "hill", "lake", "leaf",
	"meadow", "moon", "morning", "mountain", "night", "paper", "pine",
	"pond", "rain", "resonance", "river", "sea", "shadow", "shape",
	"silence", "sky", "smoke", "snow", "snowflake", "sound", "star",
	"sun", "sunset", "surf", "thunder", "tree", "violet", "voice",
	"water", "waterfall", "wave", "wildflower", "wind", "wood",
}

// New returns a fresh, URL-safe identifier such as "misty-brook-7f3a".
// Collision probability is negligible within a single process; callers
// needing guaranteed uniqueness must check against their own state.
func New() string {
	adjective := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return fmt.Sprintf("%s-%s-%s", adjective, noun, token)
}
