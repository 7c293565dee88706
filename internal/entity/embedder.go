package entity

// EmbedRequest is the body of a text-embeddings-inference /embed call
type EmbedRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
	Truncate  bool     `json:"truncate"`
}
