package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrNoRecipient = errors.New("no phone number for recipient")

// WhatsAppClient habla con el gateway HTTP de WhatsApp (Basic Auth).
type WhatsAppClient struct {
	BaseURL    string
	Username   string
	Password   string
	Path       string
	HTTPClient *http.Client
}

type sendMessageRequest struct {
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	IsForwarded bool   `json:"is_forwarded"`
	Duration    int    `json:"duration"`
}

type sendMessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	} `json:"data"`
}

func NewWhatsAppClient(baseURL, username, password, path string) *WhatsAppClient {
	return &WhatsAppClient{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		Path:     strings.Trim(path, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *WhatsAppClient) Name() string { return "whatsapp" }

// normalizePhone pasa números locales de 10 dígitos (o con 0 adelante) a 91XXXXXXXXXX.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		return "91" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "91" + digits[1:]
	default:
		return digits
	}
}

func (c *WhatsAppClient) Send(ctx context.Context, msg Message) error {
	phone := normalizePhone(msg.Phone)
	if phone == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(sendMessageRequest{
		Phone:   phone + "@s.whatsapp.net",
		Message: msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/%s/send/message", c.BaseURL, c.Path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out sendMessageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("whatsapp gateway rejected message: %s", out.Message)
	}
	return nil
}
