package entity

// ChatRequest is the JSON body of POST /chat and of a websocket chat frame
type ChatRequest struct {
	Message     string `json:"message"`
	ChatHistory string `json:"chat_history"`
}

// ChatResponse is returned for every successfully handled chat turn
type ChatResponse struct {
	Response string `json:"response"`
}

// FileData is a raw uploaded attachment
type FileData struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Attachment is an uploaded file after text extraction. Text holds either the
// extracted content or an inline placeholder when extraction failed.
type Attachment struct {
	Filename string
	Text     string
	Failed   bool
}

// ChatTurn is one inbound exchange request. It lives for a single request only.
type ChatTurn struct {
	UserMessage    string
	HistorySnippet string
	Files          []FileData
}

// ChatResult is what the exchange pipeline produced for one turn
type ChatResult struct {
	Reply          string
	RecordID       string
	Degraded       bool
	ShortCircuited bool
	Persisted      bool
	ContextMatches int
}
