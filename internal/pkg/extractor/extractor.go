package extractor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
)

// Converter turns the raw bytes of one file format into plain text
type Converter interface {
	Convert(content []byte) (string, error)
	AcceptedExtensions() []string
	AcceptedMimeTypes() []string
}

// Extractor routes attachments to the converter that accepts their type
type Extractor struct {
	converters []Converter
}

// New creates an Extractor with every available converter registered
func New() *Extractor {
	e := &Extractor{}

	e.Register(NewTextConverter())
	e.Register(NewPDFConverter())
	e.Register(NewDOCXConverter())

	return e
}

// Register adds a converter. Converters registered first win ties.
func (e *Extractor) Register(c Converter) {
	e.converters = append(e.converters, c)
}

// UnsupportedPlaceholder is inlined for files no converter accepts
func UnsupportedPlaceholder(filename string) string {
	return fmt.Sprintf("[Unsupported file: %s]", filename)
}

// FailedPlaceholder is inlined for files whose conversion failed
func FailedPlaceholder(filename string) string {
	return fmt.Sprintf("[Could not read file: %s]", filename)
}

// Extract converts one attachment. It never fails: unsupported or corrupt
// files produce a placeholder and Failed=true.
func (e *Extractor) Extract(ctx context.Context, file entity.FileData) entity.Attachment {
	log := ctxzap.Extract(ctx).With(zap.String("filename", file.Filename))

	converter := e.find(file)
	if converter == nil {
		log.Info("unsupported attachment", zap.String("content_type", file.ContentType))
		return entity.Attachment{Filename: file.Filename, Text: UnsupportedPlaceholder(file.Filename), Failed: true}
	}

	text, err := convert(converter, file.Content)
	if err != nil {
		log.Warn("failed to extract attachment", zap.Error(err))
		return entity.Attachment{Filename: file.Filename, Text: FailedPlaceholder(file.Filename), Failed: true}
	}

	return entity.Attachment{Filename: file.Filename, Text: strings.TrimSpace(text)}
}

// ExtractAll converts every attachment independently, preserving order
func (e *Extractor) ExtractAll(ctx context.Context, files []entity.FileData) []entity.Attachment {
	attachments := make([]entity.Attachment, 0, len(files))
	for _, f := range files {
		attachments = append(attachments, e.Extract(ctx, f))
	}
	return attachments
}

// find trusts the filename extension when there is one and sniffs the
// content otherwise.
func (e *Extractor) find(file entity.FileData) Converter {
	if ext := strings.ToLower(extension(file.Filename)); ext != "" {
		for _, c := range e.converters {
			if slices.Contains(c.AcceptedExtensions(), ext) {
				return c
			}
		}
		return nil
	}

	mtype := mimetype.Detect(file.Content)
	for _, c := range e.converters {
		if accepts(mtype, c.AcceptedExtensions(), c.AcceptedMimeTypes()) {
			return c
		}
	}

	return nil
}

func accepts(mtype *mimetype.MIME, extensions, mtypes []string) bool {
	if slices.Contains(extensions, mtype.Extension()) {
		return true
	}

	return slices.ContainsFunc(mtypes, mtype.Is)
}

// convert shields the request from parser panics on malformed documents
func convert(c Converter, content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", entity.ErrExtractionFailed, r)
		}
	}()
	return c.Convert(content)
}

func extension(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return filename[idx:]
}
