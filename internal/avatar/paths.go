package avatar

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/SergeySenin/user-service/internal/models"
)

// Object key variants, fixed by the key format consumed by downstream tooling
const (
	variantOriginal  = "original"
	variantThumbnail = "thumbnail"
	variantProfile   = "profile"
)

// PathGenerator derives object keys for one avatar generation.
// Every call uses a fresh 128-bit random identifier, so two generations can
// never collide in the store. That disjointness is what makes deleting the
// previous generation safe without any cross-request locking.
type PathGenerator struct {
	storageRoot string
}

// NewPathGenerator creates a generator rooted at the configured prefix
func NewPathGenerator(storageRoot string) *PathGenerator {
	return &PathGenerator{storageRoot: strings.Trim(storageRoot, "/")}
}

// GeneratePaths returns a new set of three keys shaped as
// {storageRoot}/{userId}/{randomId}/{variant}.{extension}.
func (g *PathGenerator) GeneratePaths(userID int64, extension string) models.AvatarPaths {
	id := uuid.NewString()

	return models.AvatarPaths{
		Original:  g.key(userID, id, variantOriginal, extension),
		Thumbnail: g.key(userID, id, variantThumbnail, extension),
		Profile:   g.key(userID, id, variantProfile, extension),
	}
}

func (g *PathGenerator) key(userID int64, id, variant, extension string) string {
	return fmt.Sprintf("%s/%d/%s/%s.%s", g.storageRoot, userID, id, variant, extension)
}

// contentTypeForExtension maps a canonical extension to the content type
// stored alongside the object
func contentTypeForExtension(extension string) string {
	switch extension {
	case "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
