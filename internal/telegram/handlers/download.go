package handlers

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/jarvis-backend/internal/entity"
)

const (
	downloadTimeout = 30 * time.Second
	voiceFilename   = "voice.ogg"
)

func newDownloadClient() *http.Client {
	return &http.Client{
		Timeout: downloadTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// Downloader fetches documents and voice recordings users send
type Downloader struct {
	bot          BotAPI
	client       *http.Client
	maxSize      int64
	maxVoiceSize int64
}

func NewDownloader(bot BotAPI, maxSize int64) *Downloader {
	return &Downloader{bot: bot, client: newDownloadClient(), maxSize: maxSize, maxVoiceSize: maxSize}
}

// WithVoiceLimit sets a separate size limit for voice recordings
func (d *Downloader) WithVoiceLimit(maxSize int64) *Downloader {
	d.maxVoiceSize = maxSize
	return d
}

// Download returns the document content. Documents above the size limit are
// rejected before any byte is fetched.
func (d *Downloader) Download(ctx context.Context, doc *tgbotapi.Document) (entity.FileData, error) {
	data, err := d.fetch(ctx, doc.FileID, doc.FileName, doc.FileSize, d.maxSize)
	if err != nil {
		return entity.FileData{}, err
	}
	return entity.FileData{
		Filename:    doc.FileName,
		ContentType: doc.MimeType,
		Content:     data,
	}, nil
}

// DownloadVoice returns the raw OGG/Opus recording of a voice message
func (d *Downloader) DownloadVoice(ctx context.Context, voice *tgbotapi.Voice) ([]byte, error) {
	return d.fetch(ctx, voice.FileID, voiceFilename, voice.FileSize, d.maxVoiceSize)
}

func (d *Downloader) fetch(ctx context.Context, fileID, name string, size int, maxSize int64) ([]byte, error) {
	if maxSize > 0 && int64(size) > maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", entity.ErrFileTooLarge, name, size, maxSize)
	}

	fileURL, err := d.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	parsedURL, err := url.Parse(fileURL)
	if err != nil {
		return nil, fmt.Errorf("invalid file URL: %w", err)
	}
	if parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("insecure URL scheme: %s (expected https)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status code %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if maxSize > 0 {
		body = io.LimitReader(resp.Body, maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read file data: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", entity.ErrFileTooLarge, name, maxSize)
	}
	return data, nil
}
