package pushover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.pushover.net"
	DefaultMessage = "❌ Poop Monitor is offline!"
)

// Delivery describes the response Pushover gave to a message.
type Delivery struct {
	StatusCode int
	// Request is the request id Pushover assigns, if the body carried one.
	Request string
}

// Client posts messages to the Pushover messages API.
type Client struct {
	baseURL    string
	token      string
	user       string
	httpClient *http.Client
}

func NewClient(baseURL, token, user string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		user:    user,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send posts message to Pushover.
//
// Any HTTP response counts as delivered, whatever its status code. Only
// transport failures (DNS, connect, timeout, canceled context) return an
// error.
func (c *Client) Send(ctx context.Context, message string) (*Delivery, error) {
	form := url.Values{
		"token":   {c.token},
		"user":    {c.user},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/1/messages.json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post pushover message: %w", err)
	}
	defer resp.Body.Close()

	d := &Delivery{StatusCode: resp.StatusCode}

	var body struct {
		Request string `json:"request"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		d.Request = body.Request
	}
	return d, nil
}
