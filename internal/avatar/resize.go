package avatar

import (
	"bytes"
	"strings"

	"github.com/disintegration/imaging"

	apperrors "github.com/SergeySenin/user-service/internal/errors"
)

// Resizer produces a re-encoded image scaled so neither dimension exceeds
// maxSide. Implementations must preserve aspect ratio and never upscale.
type Resizer interface {
	Resize(data []byte, maxSide int, format string) ([]byte, error)
}

// ImageResizer resizes avatars with Lanczos resampling
type ImageResizer struct {
	jpegQuality int
}

// NewImageResizer creates the default resizer
func NewImageResizer() *ImageResizer {
	return &ImageResizer{jpegQuality: 85}
}

// Resize decodes the source image, fits it within a maxSide square without
// upscaling, and re-encodes it in the requested format. All failures come
// back as upload-failed errors with the underlying cause attached.
func (r *ImageResizer) Resize(data []byte, maxSide int, format string) ([]byte, error) {
	if len(data) == 0 {
		return nil, apperrors.UploadFailed("cannot resize an empty image")
	}
	if maxSide <= 0 {
		return nil, apperrors.UploadFailed("resize target must be a positive pixel size")
	}

	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" {
		return nil, apperrors.UploadFailed("resize target format must not be blank")
	}

	encodeFormat, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, apperrors.UploadFailed("unsupported image format " + format).WithCause(err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.UploadFailed("failed to decode image").WithCause(err)
	}

	// Fit preserves aspect ratio but would upscale small images, so skip
	// scaling entirely when the source already fits the target square.
	bounds := img.Bounds()
	if bounds.Dx() > maxSide || bounds.Dy() > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, encodeFormat, imaging.JPEGQuality(r.jpegQuality)); err != nil {
		return nil, apperrors.UploadFailed("failed to encode resized image").WithCause(err)
	}

	return buf.Bytes(), nil
}
