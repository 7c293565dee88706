package entity

// Pinecone REST payloads

type PineconeServerlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

type PineconeIndexSpec struct {
	Serverless *PineconeServerlessSpec `json:"serverless,omitempty"`
}

type PineconeCreateIndexRequest struct {
	Name      string            `json:"name"`
	Dimension int               `json:"dimension"`
	Metric    string            `json:"metric"`
	Spec      PineconeIndexSpec `json:"spec"`
}

type PineconeIndexStatus struct {
	Ready bool   `json:"ready"`
	State string `json:"state"`
}

type PineconeIndexDescription struct {
	Name      string              `json:"name"`
	Dimension int                 `json:"dimension"`
	Metric    string              `json:"metric"`
	Host      string              `json:"host"`
	Status    PineconeIndexStatus `json:"status"`
}

type PineconeQueryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type PineconeMatch struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type PineconeQueryResponse struct {
	Matches []PineconeMatch `json:"matches"`
}

type PineconeVector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type PineconeUpsertRequest struct {
	Vectors   []PineconeVector `json:"vectors"`
	Namespace string           `json:"namespace,omitempty"`
}

type PineconeUpsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}
