// Package addressing allocates the storage identifiers used for generated outputs.
package addressing

import (
	"crypto/rand"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// suffixLen hex characters come from the leading random bytes of a v4 uuid.
const suffixLen = 12

// Identifiers are the values a caller needs to name a batch of outputs.
type Identifiers struct {
	DateFolder string `json:"date_folder"`
	Timestamp  string `json:"timestamp"`
	UID        string `json:"uid"`
}

// Addresser derives identifiers from a clock and a random source.
type Addresser struct {
	Now  func() time.Time
	Rand io.Reader
}

// New returns an Addresser using local time and crypto/rand.
func New() *Addresser {
	return &Addresser{Now: time.Now, Rand: rand.Reader}
}

// New returns fresh identifiers for the group and user pair.
func (a *Addresser) New(groupID, userID string) Identifiers {
	now := time.Now
	if a != nil && a.Now != nil {
		now = a.Now
	}
	var src io.Reader = rand.Reader
	if a != nil && a.Rand != nil {
		src = a.Rand
	}

	t := now()
	return Identifiers{
		DateFolder: t.Format("2006010215"),
		Timestamp:  t.Format("20060102150405"),
		UID:        groupID + "_" + userID + "_" + suffix(src),
	}
}

func suffix(src io.Reader) string {
	id, err := uuid.NewRandomFromReader(src)
	if err != nil {
		// A short read from an injected source falls back to the system generator.
		return hexPrefix(uuid.NewString())
	}
	return hexPrefix(id.String())
}

func hexPrefix(id string) string {
	return strings.ReplaceAll(id, "-", "")[:suffixLen]
}
