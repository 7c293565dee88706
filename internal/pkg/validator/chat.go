package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
)

// MaxMessageLength bounds the user message accepted by the chat endpoint
const MaxMessageLength = 32 * 1024

// Validator validates chat requests and file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// MaxUploadSize returns the multipart body limit
func (v *Validator) MaxUploadSize() int64 {
	return v.cfg.MaxUploadSize
}

// ValidateChat validates the textual part of a chat request. An empty message
// is valid: the pipeline answers it with an engagement prompt.
func (v *Validator) ValidateChat(req *entity.ChatRequest) error {
	if !utf8.ValidString(req.Message) {
		return fmt.Errorf("%w: message is not valid UTF-8", entity.ErrInvalidRequest)
	}
	if len(req.Message) > MaxMessageLength {
		return fmt.Errorf("%w: message is %d bytes (max %d)", entity.ErrPayloadTooLarge, len(req.Message), MaxMessageLength)
	}
	return nil
}

// ValidateUpload validates multiple file uploads. File types are not checked
// here: unsupported files are reported inline by the extractor.
func (v *Validator) ValidateUpload(files []*multipart.FileHeader) error {
	if len(files) > v.cfg.MaxFileCount {
		return fmt.Errorf("%w: maximum %d files allowed, got %d", entity.ErrTooManyFiles, v.cfg.MaxFileCount, len(files))
	}

	var totalSize int64
	for _, fh := range files {
		if fh.Size > v.cfg.MaxFileSize {
			return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
		}

		totalSize += fh.Size
	}

	if totalSize > v.cfg.MaxTotalSize {
		return fmt.Errorf("%w: total size is %d bytes (max %d)", entity.ErrTotalSizeTooLarge, totalSize, v.cfg.MaxTotalSize)
	}

	return nil
}

// SanitizeFilename sanitizes a filename for safe logging and prompting
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		"..", "_",
		"\n", "",
		"\r", "",
	)
	filename = replacer.Replace(filename)
	if filename == "" || filename == "." {
		return "unnamed"
	}
	return filename
}
