package models

import "time"

// SpeakerRole identifies the producer of a message.
type SpeakerRole string

const (
	SpeakerUser      SpeakerRole = "user"
	SpeakerAssistant SpeakerRole = "assistant"
	SpeakerModel     SpeakerRole = "model"
	SpeakerSystem    SpeakerRole = "system"
)

// Content is a single message made up of one or more parts.
type Content struct {
	Parts []*Part     `json:"parts,omitempty" bson:"parts,omitempty"`
	Role  SpeakerRole `json:"role,omitempty" bson:"role,omitempty"`
}

// PlainText returns the concatenated text parts of the content, including any
// text extracted from attachments.
func (c Content) PlainText() string {
	var out string
	for _, part := range c.Parts {
		if part.Text != "" {
			if out != "" {
				out += "\n"
			}
			out += part.Text
		}
		if part.FileData != nil && part.FileData.ExtractedText != "" {
			if out != "" {
				out += "\n"
			}
			out += part.FileData.ExtractedText
		}
	}
	return out
}

// Part is one piece of a message: plain text, inline bytes, or a reference to
// an uploaded object.
type Part struct {
	Text       string    `json:"text,omitempty" bson:"text,omitempty"`
	InlineData *Blob     `json:"inlineData,omitempty" bson:"inline_data,omitempty"`
	FileData   *FileData `json:"fileData,omitempty" bson:"file_data,omitempty"`
}

// Blob holds raw inline bytes together with their MIME type.
type Blob struct {
	MIMEType string `json:"mimeType,omitempty" bson:"mime_type,omitempty"`
	Data     []byte `json:"data,omitempty" bson:"data,omitempty"`
}

// FileData references an uploaded object by URI instead of carrying bytes.
type FileData struct {
	MIMEType string `json:"mimeType,omitempty" bson:"mime_type,omitempty"`
	FileURI  string `json:"fileUri,omitempty" bson:"file_uri,omitempty"`
	// ExtractedText holds a plain-text rendition of the file, when one could
	// be produced, so the file's content can join the conversation context.
	ExtractedText string `json:"extractedText,omitempty" bson:"extracted_text,omitempty"`
}

// GenerateContentRequest is the provider-independent generation request.
type GenerateContentRequest struct {
	// Instructions is the system/developer prompt for this turn, already
	// augmented with memory context where applicable.
	Instructions string    `json:"instructions,omitempty"`
	Content      []Content `json:"content,omitempty"`
}

// GenerateContentResponse is the provider-independent generation response.
type GenerateContentResponse struct {
	Content      []Content `json:"content,omitempty"`
	CreateTime   time.Time `json:"createTime,omitempty"`
	ResponseID   string    `json:"responseId,omitempty"`
	ModelVersion string    `json:"modelVersion,omitempty"`
}

// Text returns the concatenated text of the first content entry, which is the
// assistant reply for single-candidate providers.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	var out string
	for _, part := range r.Content[0].Parts {
		out += part.Text
	}
	return out
}
