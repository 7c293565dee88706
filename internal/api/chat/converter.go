package chat

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/pkg/validator"
)

func toChatTurn(req *entity.ChatRequest, files []entity.FileData) *entity.ChatTurn {
	return &entity.ChatTurn{
		UserMessage:    req.Message,
		HistorySnippet: req.ChatHistory,
		Files:          files,
	}
}

func readFiles(headers []*multipart.FileHeader) ([]entity.FileData, error) {
	files := make([]entity.FileData, 0, len(headers))
	for _, fh := range headers {
		data, err := readFile(fh)
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", fh.Filename, err)
		}
		files = append(files, entity.FileData{
			Filename:    validator.SanitizeFilename(fh.Filename),
			ContentType: fh.Header.Get("Content-Type"),
			Content:     data,
		})
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
