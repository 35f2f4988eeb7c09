package pager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clubbrunch/brunch/internal/config"
	log "github.com/sirupsen/logrus"
)

// MaxTextLength is the longest message a pager displays.
const MaxTextLength = 80

// Call is a DAPNET call as accepted by POST /calls.
type Call struct {
	Text                  string   `json:"text"`
	CallSignNames         []string `json:"callSignNames"`
	TransmitterGroupNames []string `json:"transmitterGroupNames"`
	Emergency             bool     `json:"emergency"`
}

type Client interface {
	Page(ctx context.Context, text string) error
}

type ClientImpl struct {
	baseUrl           string
	user              string
	pass              string
	callSigns         []string
	transmitterGroups []string
	httpClient        *http.Client
}

func NewClient(cfg config.Pager) *ClientImpl {
	return &ClientImpl{
		baseUrl:           strings.TrimSuffix(cfg.Url, "/"),
		user:              cfg.User,
		pass:              cfg.Pass,
		callSigns:         cfg.CallSigns,
		transmitterGroups: cfg.TransmitterGroups,
		httpClient:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Page sends text to all configured call signs. Longer texts are cut to MaxTextLength.
func (c *ClientImpl) Page(ctx context.Context, text string) error {
	call := Call{
		Text:                  truncate(text, MaxTextLength),
		CallSignNames:         c.callSigns,
		TransmitterGroupNames: c.transmitterGroups,
	}
	body, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("failed to encode call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/calls", bytes.NewReader(body))
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.pass)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pager API returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	log.Debugf("Paged %v: %q", c.callSigns, call.Text)
	return nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
