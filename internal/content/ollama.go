package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ollama calls a local Ollama server's generate endpoint.
type Ollama struct {
	Host       string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewOllama creates a client with a default timeout.
func NewOllama(host, model string, timeout time.Duration) *Ollama {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Ollama{
		Host:       host,
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

// StatusError wraps non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama: status=%d body=%s", e.StatusCode, e.Body)
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Ping checks that the server answers.
func (o *Ollama) Ping(ctx context.Context) error {
	return o.do(ctx, http.MethodGet, "api/tags", nil, nil)
}

func (o *Ollama) Synthesize(ctx context.Context, req Request) (string, error) {
	prompt, opts, err := buildPrompt(req)
	if err != nil {
		return "", err
	}
	body := generateRequest{Model: o.Model, Prompt: prompt, Stream: false, Options: opts}
	var resp generateResponse
	if err := o.do(ctx, http.MethodPost, "api/generate", body, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

func buildPrompt(req Request) (string, generateOptions, error) {
	switch req.Kind {
	case TaskDescription:
		complexity := req.get("complexity", Short)
		instruction := "Keep it to 1-2 sentences. No formatting."
		opts := generateOptions{Temperature: 0.7, NumPredict: 100}
		if complexity == Detailed {
			instruction = "Include sections: Overview, Requirements (bullet points), Acceptance Criteria (checkboxes)."
			opts = generateOptions{Temperature: 0.8, NumPredict: 300}
		}
		prompt := fmt.Sprintf("You are writing a task description for a project management tool.\n\n"+
			"Task: %s\nProject Type: %s\nComplexity: %s\n\n"+
			"Write a professional task description. %s\n"+
			"Do not include the task name in your response. Just the description.",
			req.get("name", ""), req.get("archetype", "kanban"), complexity, instruction)
		return prompt, opts, nil
	case Comment:
		prompt := fmt.Sprintf("You are %s leaving a comment on a task in a project management tool.\n\n"+
			"Task: %s\n\n"+
			"Write a brief, natural work comment (1-2 sentences). Could be a progress update, question, or status note. "+
			"Be casual but professional. No greetings or signatures.",
			req.get("author", "a team member"), req.get("name", ""))
		return prompt, generateOptions{Temperature: 0.8, NumPredict: 80}, nil
	case StatusUpdate:
		status := strings.ReplaceAll(req.get("status", "on_track"), "_", " ")
		prompt := fmt.Sprintf("You are %s writing a project status update.\n\n"+
			"Project: %s\nStatus: %s\n\n"+
			"Write a brief status update (3-5 sentences) with:\n- Current state summary\n"+
			"- Key accomplishments or issues\n- Next steps\n\n"+
			"Use markdown formatting with emojis for status indicators.",
			req.get("author", "a team member"), req.get("project", ""), status)
		return prompt, generateOptions{Temperature: 0.7, NumPredict: 250}, nil
	case ProjectBrief:
		return "", generateOptions{}, ErrUnsupported
	}
	return "", generateOptions{}, ErrUnknownKind
}

func (o *Ollama) do(ctx context.Context, method, endpoint string, body any, out any) error {
	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimRight(o.Host, "/") + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
