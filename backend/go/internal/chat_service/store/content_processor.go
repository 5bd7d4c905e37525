package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/minio/minio-go/v7"

	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/logger"
)

// maxUploadBytes caps what a single upload may carry.
const maxUploadBytes = 25 << 20 // 25 MiB

// allowedMIMEPrefixes is the upload whitelist. Detection runs on content,
// not on the client-declared type or the file extension.
var allowedMIMEPrefixes = []string{
	"image/",
	"audio/",
	"video/",
	"text/",
	"application/pdf",
	"application/json",
}

// ContentProcessor stores uploaded files in MinIO and extracts whatever
// plain text it can, so attachments can join the model's context.
type ContentProcessor struct {
	minioClient *minio.Client
	bucket      string
	log         *logger.Logger
}

// NewContentProcessor creates a ContentProcessor writing to bucket.
func NewContentProcessor(minioClient *minio.Client, bucket string, log *logger.Logger) *ContentProcessor {
	return &ContentProcessor{minioClient: minioClient, bucket: bucket, log: log}
}

// ProcessUpload sniffs, validates and stores one uploaded file, returning a
// FileData suitable for embedding in a message part.
func (p *ContentProcessor) ProcessUpload(ctx context.Context, filename string, reader io.Reader) (*models.FileData, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("upload exceeds %d bytes", maxUploadBytes)
	}

	detected := mimetype.Detect(data)
	if !mimeAllowed(detected.String()) {
		return nil, fmt.Errorf("unsupported file type: %s", detected.String())
	}

	objectName := uuid.NewString() + filepath.Ext(filename)
	_, err = p.minioClient.PutObject(ctx, p.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: detected.String()},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	fileData := &models.FileData{
		MIMEType: detected.String(),
		FileURI:  objectName,
	}

	// Extraction failures are logged, not fatal: the file is already stored
	// and still usable as an opaque attachment.
	if text, err := extractText(detected, data); err != nil {
		p.log.WithError(models.ErrorInfo{Message: err.Error()}).
			WithPayload(map[string]interface{}{"object": objectName}).
			Warn("could not extract text from upload")
	} else {
		fileData.ExtractedText = text
	}

	return fileData, nil
}

// FetchObject streams a stored object back to the caller.
func (p *ContentProcessor) FetchObject(ctx context.Context, objectName string) (io.ReadCloser, error) {
	object, err := p.minioClient.GetObject(ctx, p.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object '%s': %w", objectName, err)
	}
	return object, nil
}

func mimeAllowed(mime string) bool {
	for _, prefix := range allowedMIMEPrefixes {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	return false
}

// extractText produces a plain-text rendition of supported formats: PDF
// pages, HTML converted to markdown, and raw text passed through. Binary
// media yields no text and no error.
func extractText(detected *mimetype.MIME, data []byte) (string, error) {
	switch {
	case detected.Is("application/pdf"):
		return extractPDFText(data)
	case detected.Is("text/html"):
		return htmltomarkdown.ConvertString(string(data))
	case strings.HasPrefix(detected.String(), "text/"), detected.Is("application/json"):
		return string(data), nil
	default:
		return "", nil
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}
