// Package notify предоставляет клиент для внешнего сервиса уведомлений.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Типы уведомлений.
const (
	TypeLinkRequested      = "link_requested"
	TypeLinkStatusChanged  = "link_status_changed"
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
	TypeComplaintCreated   = "complaint_created"
	TypeComplaintUpdated   = "complaint_status_changed"
	TypeChatSessionCreated = "chat_session_created"
)

// Notification описывает одно уведомление пользователю.
type Notification struct {
	RecipientUserID int64  `json:"recipient_user_id"`
	Type            string `json:"type"`
	Message         string `json:"message"`
	EntityID        int64  `json:"entity_id,omitempty"`
}

// Client инкапсулирует HTTP-взаимодействие с сервисом уведомлений.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

// NewClient создаёт HTTP-клиент для сервиса уведомлений по указанному адресу.
// Ошибки соединения и ответы 5xx повторяются до двух раз.
func NewClient(baseURL string) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = 5 * time.Second

	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.RetryMax = 2
	rc.RetryWaitMin = 50 * time.Millisecond
	rc.RetryWaitMax = 500 * time.Millisecond
	rc.Logger = nil
	// После исчерпания попыток вернуть последний ответ, чтобы в ошибке был его статус.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc,
	}
}

// Notify отправляет уведомление. Любой ответ, кроме 2xx, считается ошибкой.
func (c *Client) Notify(ctx context.Context, n Notification) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("notify client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, base+"/api/notifications", body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
