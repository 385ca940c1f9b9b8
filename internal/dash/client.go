package dash

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// recentMessage mirrors the wire shape of GET /api/messages.
type recentMessage struct {
	ID        int64  `json:"id"`
	Topic     string `json:"topic"`
	Payload   string `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// Client polls the telemetry HTTP API for dashboard data.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Summary() (model.Summary, error) {
	var out model.Summary
	err := c.getJSON("/api/stats/summary", &out)
	return out, err
}

func (c *Client) Messages() ([]recentMessage, error) {
	var out []recentMessage
	err := c.getJSON("/api/messages", &out)
	return out, err
}

func (c *Client) getJSON(path string, out any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
