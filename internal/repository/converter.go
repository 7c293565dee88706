package repository

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/futig/jarvis-backend/internal/entity"
)

func toChromemDocument(rec entity.MemoryRecord) chromem.Document {
	return chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text(),
		Embedding: rec.Vector,
		Metadata:  maps.Clone(rec.Metadata),
	}
}

func fromChromemResult(res chromem.Result) entity.MemoryMatch {
	meta := maps.Clone(res.Metadata)
	if meta == nil {
		meta = make(map[string]string, 1)
	}
	if _, ok := meta[entity.MetadataText]; !ok {
		meta[entity.MetadataText] = res.Content
	}

	return entity.MemoryMatch{
		ID:       res.ID,
		Score:    res.Similarity,
		Metadata: meta,
	}
}

// encodeMetadata stores every key except text, which has its own column
func encodeMetadata(meta map[string]string) ([]byte, error) {
	rest := make(map[string]string, len(meta))
	for k, v := range meta {
		if k != entity.MetadataText {
			rest[k] = v
		}
	}

	data, err := json.Marshal(rest)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}

func decodeMetadata(text string, raw []byte) (map[string]string, error) {
	meta := make(map[string]string)
	if len(raw) > 0 {
		var values map[string]any
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		for k, v := range values {
			switch val := v.(type) {
			case string:
				meta[k] = val
			case float64:
				meta[k] = strconv.FormatFloat(val, 'f', -1, 64)
			default:
				meta[k] = fmt.Sprint(val)
			}
		}
	}
	meta[entity.MetadataText] = text
	return meta, nil
}
