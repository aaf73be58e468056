package uploads

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"docs-backend/internal/shared/util"
)

// Validation error codes surfaced to upload callers.
const (
	CodeInvalidFileType      = "INVALID_FILE_TYPE"
	CodeDocumentTooLarge     = "DOCUMENT_TOO_LARGE"
	CodeFileValidationFailed = "FILE_VALIDATION_FAILED"
)

// ValidationError is a typed, user-facing upload rejection.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is an upload validation error and
// returns it if so.
func IsValidationError(err error) (*ValidationError, bool) {
	ve, ok := err.(*ValidationError)
	return ve, ok
}

// deniedExtensions lists executable and script extensions rejected outright,
// regardless of declared MIME type.
var deniedExtensions = map[string]struct{}{
	".exe": {}, ".dll": {}, ".bat": {}, ".cmd": {}, ".sh": {}, ".ps1": {},
	".msi": {}, ".js": {}, ".jar": {}, ".com": {}, ".scr": {}, ".vbs": {},
}

// textDeclaredTypes are declared types accepted on their own word when the
// byte signature is not distinctive (text formats have no magic number).
var textDeclaredTypes = map[string]struct{}{
	"text/plain":    {},
	"text/markdown": {},
	"text/csv":      {},
}

// Validator decides, before any byte is persisted, whether an upload may
// proceed. It has no side effects.
type Validator struct {
	allowedTypes   map[string]struct{}
	maxUploadBytes int64
}

// NewValidator builds a validator for the given allowed MIME types and size
// ceiling.
func NewValidator(allowedTypes []string, maxUploadBytes int64) *Validator {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		if trimmed := normalizeMime(t); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	return &Validator{allowedTypes: allowed, maxUploadBytes: maxUploadBytes}
}

// Validate runs the full check sequence and returns the sanitized file name
// and validated MIME type, or a typed ValidationError.
func (v *Validator) Validate(data []byte, fileName, declaredMime string) (string, string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", "", &ValidationError{Code: CodeFileValidationFailed, Message: "invalid file name"}
	}

	ext := strings.ToLower(filepath.Ext(sanitized))
	if _, denied := deniedExtensions[ext]; denied {
		return "", "", &ValidationError{Code: CodeInvalidFileType, Message: fmt.Sprintf("file extension %s is not allowed", ext)}
	}

	validatedMime, err := v.sniff(data, declaredMime)
	if err != nil {
		return "", "", err
	}

	if _, ok := v.allowedTypes[validatedMime]; !ok {
		return "", "", &ValidationError{Code: CodeInvalidFileType, Message: fmt.Sprintf("file type %s is not allowed", validatedMime)}
	}

	if v.maxUploadBytes > 0 && int64(len(data)) > v.maxUploadBytes {
		return "", "", &ValidationError{Code: CodeDocumentTooLarge, Message: fmt.Sprintf("file exceeds maximum size of %d bytes", v.maxUploadBytes)}
	}

	return sanitized, validatedMime, nil
}

// sniff inspects the byte signature and reconciles it with the declared type.
func (v *Validator) sniff(data []byte, declaredMime string) (string, error) {
	declared := normalizeMime(declaredMime)
	sniffed := normalizeMime(http.DetectContentType(sniffWindow(data)))

	// Text formats carry no magic number; DetectContentType falls back to
	// text/plain or octet-stream for them.
	if sniffed == "text/plain" || sniffed == "application/octet-stream" {
		if _, ok := textDeclaredTypes[declared]; ok {
			return declared, nil
		}
		if declared == "" && sniffed == "text/plain" {
			return sniffed, nil
		}
		return "", &ValidationError{
			Code:    CodeFileValidationFailed,
			Message: fmt.Sprintf("content signature %s does not match declared type %s", sniffed, orUnknown(declared)),
		}
	}

	if declared != "" && declared != sniffed {
		return "", &ValidationError{
			Code:    CodeFileValidationFailed,
			Message: fmt.Sprintf("content signature %s does not match declared type %s", sniffed, declared),
		}
	}

	return sniffed, nil
}

func sniffWindow(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}

func normalizeMime(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
}

func orUnknown(mime string) string {
	if mime == "" {
		return "unknown"
	}
	return mime
}
