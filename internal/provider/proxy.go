package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// ProxyProvider implements Provider against a server-held-secret proxy. The
// proxy streams plain UTF-8 text back with no envelope or framing; fragments
// are decoded incrementally, holding back bytes of a split rune until the
// rest arrives.
type ProxyProvider struct {
	baseURL string
	client  *http.Client
	models  []types.Model
}

// ProxyConfig holds configuration for the proxy provider.
type ProxyConfig struct {
	BaseURL string
	Client  *http.Client
}

// proxyRequest is the wire format sent to the proxy endpoint.
type proxyRequest struct {
	Model    string         `json:"model"`
	Messages []proxyMessage `json:"messages"`
}

type proxyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewProxyProvider creates a provider that talks to a local generation proxy.
func NewProxyProvider(config *ProxyConfig) (*ProxyProvider, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("proxy base URL not set")
	}

	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}

	return &ProxyProvider{
		baseURL: config.BaseURL,
		client:  client,
		models:  proxyModels(),
	}, nil
}

// ID returns the provider identifier.
func (p *ProxyProvider) ID() string { return "proxy" }

// Name returns the human-readable provider name.
func (p *ProxyProvider) Name() string { return "Proxy" }

// Models returns the list of available models.
func (p *ProxyProvider) Models() []types.Model {
	return p.models
}

// Generate posts the request to the proxy and streams the response body.
func (p *ProxyProvider) Generate(ctx context.Context, req *Request) (Stream, error) {
	body, err := json.Marshal(&proxyRequest{
		Model:    req.Model,
		Messages: flattenMessages(req.Messages),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal proxy request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("proxy request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("proxy returned %d: %s", resp.StatusCode, string(detail))
	}

	return &proxyStream{body: resp.Body, buf: make([]byte, 4096)}, nil
}

// flattenMessages reduces the message array to role/content pairs; the proxy
// has no multipart support, so attachment parts are dropped.
func flattenMessages(messages []*schema.Message) []proxyMessage {
	result := make([]proxyMessage, 0, len(messages))
	for _, msg := range messages {
		content := msg.Content
		if content == "" && len(msg.MultiContent) > 0 {
			for _, part := range msg.MultiContent {
				if part.Type == schema.ChatMessagePartTypeText {
					content += part.Text
				}
			}
		}
		result = append(result, proxyMessage{
			Role:    string(msg.Role),
			Content: content,
		})
	}
	return result
}

// proxyStream decodes the raw response body into UTF-8-safe fragments.
type proxyStream struct {
	body io.ReadCloser
	buf  []byte
	rem  []byte
}

func (s *proxyStream) Recv() (string, error) {
	for {
		n, err := s.body.Read(s.buf)
		if n > 0 {
			data := append(s.rem, s.buf[:n]...)
			cut := completeUTF8Prefix(data)
			s.rem = append([]byte(nil), data[cut:]...)
			if cut > 0 {
				return string(data[:cut]), nil
			}
			continue
		}
		if err == io.EOF {
			// Flush any held-back bytes even if they never completed
			if len(s.rem) > 0 {
				text := string(s.rem)
				s.rem = nil
				return text, nil
			}
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
	}
}

func (s *proxyStream) Close() {
	s.body.Close()
}

// completeUTF8Prefix returns the length of the longest prefix of data that
// ends on a rune boundary.
func completeUTF8Prefix(data []byte) int {
	end := len(data)
	for i := 1; i <= utf8.UTFMax && i <= end; i++ {
		b := data[end-i]
		if b < utf8.RuneSelf {
			return end // trailing byte is ASCII, nothing split
		}
		if utf8.RuneStart(b) {
			if utf8.FullRune(data[end-i:]) {
				return end
			}
			return end - i
		}
	}
	return end
}

func proxyModels() []types.Model {
	return []types.Model{
		{
			ID:              "proxy-default",
			Name:            "Proxy Default",
			ProviderID:      "proxy",
			ContextLength:   128000,
			MaxOutputTokens: 16384,
		},
	}
}
