package model

import "strings"

type AttachmentType string

const (
	AttachmentTypeImage          = AttachmentType("image")
	AttachmentTypeVideo          = AttachmentType("video")
	AttachmentTypeAudio          = AttachmentType("audio")
	AttachmentTypeFile           = AttachmentType("file")
	AttachmentTypeGeneratedImage = AttachmentType("generated_image")
	AttachmentTypeGeneratedVideo = AttachmentType("generated_video")
)

// Attachment is an opaque binary payload. Data holds base64-encoded bytes.
type Attachment struct {
	ID       string         `json:"id"`
	Type     AttachmentType `json:"type"`
	MIMEType string         `json:"mime_type"`
	Data     string         `json:"data"`
	URL      string         `json:"url,omitempty"`
	Prompt   string         `json:"prompt,omitempty"`
	Name     string         `json:"name,omitempty"`
}

// IsGenerated reports whether the attachment was produced by a model rather than uploaded.
func (a Attachment) IsGenerated() bool {
	return strings.HasPrefix(string(a.Type), "generated")
}
