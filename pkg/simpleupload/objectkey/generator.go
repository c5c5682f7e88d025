package objectkey

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key for a file the client is about to upload
	GenerateKey(fileName string) string
}

// DefaultExtension is used when a file name carries no usable extension
const DefaultExtension = "bin"

const tokenLength = 13

// TimestampGenerator produces keys of the form
//
//	uploads/<epoch-millis>-<token>.<extension>
//
// Keys are not guaranteed unique; two clients in the same millisecond rely on
// the random token.
type TimestampGenerator struct {
	Prefix string

	now   func() time.Time
	token func() string
}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{
		Prefix: simpleupload.DefaultKeyPrefix,
		now:    time.Now,
		token:  randomToken,
	}
}

func (g *TimestampGenerator) GenerateKey(fileName string) string {
	return fmt.Sprintf("%s%d-%s.%s", g.Prefix, g.now().UnixMilli(), g.token(), Extension(fileName))
}

// Extension returns the sanitized extension of fileName, keeping only word
// characters so the key still matches the server's key pattern.
func Extension(fileName string) string {
	ext := strings.TrimPrefix(path.Ext(fileName), ".")

	var b strings.Builder
	for _, r := range ext {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return DefaultExtension
	}
	return b.String()
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLength]
}
