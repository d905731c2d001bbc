package llm

import (
	"context"
	"encoding/base64"
	"regexp"

	"google.golang.org/genai"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	Name() string
	GenerateResponse(ctx context.Context, req *Request) (string, error)
}

// Attachment is an inline image sent alongside the prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is one generation call. Providers that cannot honour a field
// (images, schema) ignore it.
type Request struct {
	SystemPrompt   string
	Prompt         string
	Images         []Attachment
	ResponseSchema *genai.Schema
	JSON           bool
	Model          string
	Temperature    *float32
}

var dataURIRe = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// ParseDataURI decodes a "data:<mime>;base64,<payload>" URI.
// ok is false for anything that does not have that exact shape.
func ParseDataURI(uri string) (Attachment, bool) {
	m := dataURIRe.FindStringSubmatch(uri)
	if m == nil {
		return Attachment{}, false
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil || len(data) == 0 {
		return Attachment{}, false
	}
	return Attachment{MIMEType: m[1], Data: data}, true
}

// AttachmentsFromDataURIs keeps the URIs that decode and silently drops the rest.
func AttachmentsFromDataURIs(uris []string) []Attachment {
	var out []Attachment
	for _, u := range uris {
		if a, ok := ParseDataURI(u); ok {
			out = append(out, a)
		}
	}
	return out
}
