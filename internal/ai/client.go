package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-5-nano"
	requestTimeout = 60 * time.Second
)

// Client talks to the provider's responses endpoint. The endpoint keeps
// conversation state server-side; passing PreviousResponseID continues the
// prior dialogue.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string, model string, baseURL string) *Client {
	if model == "" {
		model = defaultModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return NewClient(apiKey, os.Getenv("OPENAI_MODEL"), ""), nil
}

func (c *Client) Model() string {
	return c.model
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request for the responses endpoint. Instructions and PreviousResponseID
// are mutually exclusive: a fresh conversation gets instructions, a
// resumed one gets the token.
type Request struct {
	Model              string    `json:"model"`
	Input              []Message `json:"input"`
	Instructions       string    `json:"instructions,omitempty"`
	PreviousResponseID string    `json:"previous_response_id,omitempty"`
}

type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type OutputItem struct {
	Type    string        `json:"type"`
	Content []ContentItem `json:"content"`
}

type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type Response struct {
	ID     string       `json:"id"`
	Output []OutputItem `json:"output"`
	Usage  Usage        `json:"usage"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateResponse performs one synchronous exchange. Transport failures and
// context cancellation surface as *NetworkError, non-2xx statuses as
// *ProviderError; nothing is retried here.
func (c *Client) CreateResponse(ctx context.Context, request Request) (*Response, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal AI request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build AI request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		message := "Unknown API error."
		var envelope errorEnvelope
		if err := json.Unmarshal(responseBody, &envelope); err == nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: message}
	}

	var parsed Response
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, &UnexpectedResponseError{Detail: "response body is not valid JSON"}
	}

	return &parsed, nil
}

// FirstMessageText extracts the text of the first message-type output
// block, the provider's canonical reply location.
func FirstMessageText(response *Response) (string, error) {
	for _, item := range response.Output {
		if item.Type != "message" {
			continue
		}
		if len(item.Content) > 0 && item.Content[0].Text != "" {
			return item.Content[0].Text, nil
		}
	}
	return "", &UnexpectedResponseError{Detail: "no message block with text in output"}
}
