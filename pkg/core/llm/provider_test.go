package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantOK   bool
		wantMIME string
		wantData string
	}{
		{"png", "data:image/png;base64,aGVsbG8=", true, "image/png", "hello"},
		{"jpeg", "data:image/jpeg;base64,AQID", true, "image/jpeg", "\x01\x02\x03"},
		{"not base64 encoded", "data:image/png,hello", false, "", ""},
		{"bad payload", "data:image/png;base64,!!!", false, "", ""},
		{"plain url", "https://example.com/a.png", false, "", ""},
		{"empty", "", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDataURI(tt.uri)
			if ok != tt.wantOK {
				t.Fatalf("ParseDataURI(%q) ok = %v, want %v", tt.uri, ok, tt.wantOK)
			}
			if got.MIMEType != tt.wantMIME || string(got.Data) != tt.wantData {
				t.Errorf("ParseDataURI(%q) = %s/%q, want %s/%q", tt.uri, got.MIMEType, got.Data, tt.wantMIME, tt.wantData)
			}
		})
	}
}

func TestAttachmentsFromDataURIs_DropsMalformed(t *testing.T) {
	got := AttachmentsFromDataURIs([]string{"data:image/png;base64,AQID", "garbage", "data:image/gif;base64,AA=="})
	if len(got) != 2 || got[0].MIMEType != "image/png" || got[1].MIMEType != "image/gif" {
		t.Errorf("AttachmentsFromDataURIs() = %+v", got)
	}
}

func TestDeepSeekProvider_GenerateResponse(t *testing.T) {
	var captured DeepSeekRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	p := &DeepSeekProvider{APIKey: "k", BaseURL: srv.URL}
	got, err := p.GenerateResponse(context.Background(), &Request{
		SystemPrompt: "sys",
		Prompt:       "hi",
		JSON:         true,
		Images:       []Attachment{{MIMEType: "image/png", Data: []byte{1}}},
	})
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if got != `{"ok":true}` {
		t.Errorf("response = %q", got)
	}
	if auth != "Bearer k" {
		t.Errorf("Authorization = %q", auth)
	}
	if captured.ResponseFormat.Type != "json_object" || captured.Model != "deepseek-chat" {
		t.Errorf("request = %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "1 screenshot(s)") {
		t.Errorf("user message should mention dropped images: %q", captured.Messages[1].Content)
	}
}

func TestDeepSeekProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := &DeepSeekProvider{APIKey: "k", BaseURL: srv.URL}
	_, err := p.GenerateResponse(context.Background(), &Request{Prompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Errorf("err = %v, want status=429", err)
	}
}

func TestQwenProvider_GenerateResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"choices", `{"output":{"choices":[{"message":{"content":"a"}}]}}`, "a", false},
		{"text", `{"output":{"text":"b"}}`, "b", false},
		{"api error", `{"code":"InvalidParameter","message":"bad"}`, "", true},
		{"empty", `{"output":{}}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := &QwenProvider{APIKey: "k", BaseURL: srv.URL}
			got, err := p.GenerateResponse(context.Background(), &Request{Prompt: "hi"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMockProvider(t *testing.T) {
	m := &MockProvider{}
	got, err := m.GenerateResponse(context.Background(), &Request{Prompt: "p"})
	if err != nil || got != DemoResponse {
		t.Errorf("default response = %q, %v", got, err)
	}

	boom := errors.New("boom")
	m.Err = boom
	if _, err := m.GenerateResponse(context.Background(), &Request{Prompt: "q"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if reqs := m.Requests(); len(reqs) != 2 || reqs[1].Prompt != "q" {
		t.Errorf("Requests() = %+v", reqs)
	}
}
