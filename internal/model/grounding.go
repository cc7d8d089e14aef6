package model

type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks"`
}

// StreamCallback receives the full response accumulated so far, never a delta.
type StreamCallback func(accumulated string, grounding *GroundingMetadata)
