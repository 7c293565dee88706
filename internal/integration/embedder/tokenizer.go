package embedder

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Special token ids of the bert-base-uncased vocabulary used by MiniLM
const (
	clsTokenID = 101
	sepTokenID = 102
	unkTokenID = 100
)

// WordPieceTokenizer is a lowercase BERT WordPiece tokenizer backed by the
// vocabulary of a HuggingFace tokenizer.json.
type WordPieceTokenizer struct {
	vocab map[string]int
}

// LoadTokenizer reads the vocabulary from a tokenizer.json file
func LoadTokenizer(path string) (*WordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer: %w", err)
	}

	var tokenizerData struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &tokenizerData); err != nil {
		return nil, fmt.Errorf("parse tokenizer: %w", err)
	}
	if len(tokenizerData.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer %s has an empty vocabulary", path)
	}

	return NewWordPieceTokenizer(tokenizerData.Model.Vocab), nil
}

func NewWordPieceTokenizer(vocab map[string]int) *WordPieceTokenizer {
	return &WordPieceTokenizer{vocab: vocab}
}

// Tokenize converts text to token ids without the [CLS]/[SEP] wrapping
func (t *WordPieceTokenizer) Tokenize(text string) []int64 {
	var tokens []int64

	for _, word := range splitWords(strings.ToLower(text)) {
		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}

		for _, piece := range t.wordPieces(word) {
			if id, ok := t.vocab[piece]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, unkTokenID)
			}
		}
	}

	return tokens
}

// Encode returns input ids and attention mask padded to maxLen, with [CLS]
// and [SEP] added and long inputs truncated.
func (t *WordPieceTokenizer) Encode(text string, maxLen int) (inputIDs, attentionMask []int64) {
	tokens := t.Tokenize(text)
	if len(tokens) > maxLen-2 {
		tokens = tokens[:maxLen-2]
	}

	inputIDs = make([]int64, maxLen)
	attentionMask = make([]int64, maxLen)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1
	for i, tok := range tokens {
		inputIDs[i+1] = tok
		attentionMask[i+1] = 1
	}
	inputIDs[len(tokens)+1] = sepTokenID
	attentionMask[len(tokens)+1] = 1

	return inputIDs, attentionMask
}

// wordPieces greedily splits a word into the longest known prefixes
func (t *WordPieceTokenizer) wordPieces(word string) []string {
	var pieces []string
	runes := []rune(word)
	start := 0

	for start < len(runes) {
		end := len(runes)
		found := false

		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				pieces = append(pieces, piece)
				start = end
				found = true
				break
			}
			end--
		}

		if !found {
			return []string{"[UNK]"}
		}
	}

	return pieces
}

// splitWords splits on whitespace and isolates punctuation as BERT's basic
// tokenizer does.
func splitWords(text string) []string {
	var words []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	return words
}
