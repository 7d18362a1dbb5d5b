package avatar

import (
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	apperrors "github.com/SergeySenin/user-service/internal/errors"
)

// extensionSynonyms folds interchangeable filename extensions onto the
// single canonical form used in object keys. Extensions outside this table
// are unsupported.
var extensionSynonyms = map[string]string{
	"jpg":  "jpg",
	"jpeg": "jpg",
	"png":  "png",
	"webp": "webp",
}

// mimeSubtypeExtensions maps an image MIME subtype to its canonical
// extension. Unmapped subtypes fall back to the literal subtype and go
// through the synonym table again.
var mimeSubtypeExtensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"webp": "webp",
}

// Validator checks uploaded avatar files against the configured MIME
// allow-list and resolves the canonical storage extension.
type Validator struct {
	allowedMIMETypes map[string]struct{}
}

// NewValidator builds a validator from the configured allow-list.
// An empty allow-list rejects every upload.
func NewValidator(allowedMIMETypes []string) *Validator {
	allowed := make(map[string]struct{}, len(allowedMIMETypes))
	for _, mt := range allowedMIMETypes {
		mt = strings.ToLower(strings.TrimSpace(mt))
		if mt != "" {
			allowed[mt] = struct{}{}
		}
	}
	return &Validator{allowedMIMETypes: allowed}
}

// Validate runs all checks against the uploaded file header and returns the
// canonical extension (jpg, png or webp). It never touches the file body and
// has no side effects, so a rejection leaves nothing to clean up.
func (v *Validator) Validate(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperrors.ValidationError("file", "file is required")
	}
	if file.Size <= 0 {
		return "", apperrors.ValidationError("file", "file must not be empty")
	}
	if strings.TrimSpace(file.Filename) == "" {
		return "", apperrors.ValidationError("file", "file must have a name")
	}

	contentType, err := declaredContentType(file)
	if err != nil {
		return "", err
	}

	if _, ok := v.allowedMIMETypes[contentType]; !ok {
		return "", apperrors.ValidationError("file", "content type "+contentType+" is not allowed")
	}

	fileExt, ok := extensionFromFilename(file.Filename)
	if !ok {
		return "", apperrors.ValidationError("file", "unsupported file extension")
	}

	mimeExt := extensionFromContentType(contentType)
	if mimeExt == "" || mimeExt != fileExt {
		return "", apperrors.ValidationError("file", "file extension does not match declared content type")
	}

	return fileExt, nil
}

// declaredContentType extracts and normalizes the declared content type,
// requiring the image/subtype shape.
func declaredContentType(file *multipart.FileHeader) (string, error) {
	raw := strings.TrimSpace(file.Header.Get("Content-Type"))
	if raw == "" {
		return "", apperrors.ValidationError("file", "content type is required")
	}

	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return "", apperrors.ValidationError("file", "content type is malformed")
	}

	mediaType = strings.ToLower(mediaType)
	mainType, subType, found := strings.Cut(mediaType, "/")
	if !found || mainType == "" || subType == "" {
		return "", apperrors.ValidationError("file", "content type is malformed")
	}
	if mainType != "image" {
		return "", apperrors.ValidationError("file", "only image uploads are accepted")
	}

	return mediaType, nil
}

// extensionFromFilename resolves the canonical extension carried by the
// filename, reporting false when the extension is missing or unsupported.
func extensionFromFilename(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", false
	}

	canonical, ok := extensionSynonyms[ext]
	return canonical, ok
}

// extensionFromContentType derives the canonical extension from the MIME
// subtype, independently of the filename. Returns "" for subtypes that do
// not normalize to a supported extension.
func extensionFromContentType(contentType string) string {
	_, subType, _ := strings.Cut(contentType, "/")

	ext, ok := mimeSubtypeExtensions[subType]
	if !ok {
		ext = subType
	}

	return extensionSynonyms[ext]
}
