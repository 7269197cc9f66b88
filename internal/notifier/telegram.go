package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/speedwagon-io/speedbot/internal/model"
	"github.com/speedwagon-io/speedbot/internal/report"
)

const DefaultAPIURL = "https://api.telegram.org"

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

type botUser struct {
	Username string `json:"username"`
}

// Telegram talks to the Bot API on behalf of one credential. Each call is
// a single attempt.
type Telegram struct {
	log     *slog.Logger
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegram binds a client to cred. A zero timeout leaves requests
// without a deadline beyond the caller's context.
func NewTelegram(log *slog.Logger, cred model.Credential, apiURL string, timeout time.Duration) *Telegram {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Telegram{
		log:     log,
		baseURL: fmt.Sprintf("%s/bot%s/", strings.TrimRight(apiURL, "/"), cred.Token),
		token:   cred.Token,
		chatID:  cred.ChatID,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (t *Telegram) Check(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"getMe", nil)
	if err != nil {
		return t.fail("bot check failed", "failed to create request: %s", t.redact(err))
	}

	status, resp, err := t.do(req)
	if err != nil {
		return t.fail("bot check failed", "%s", t.redact(err))
	}

	if status != http.StatusOK || !resp.OK || !hasPayload(resp.Result) {
		return t.fail("bot check failed", "status %d: ok=%t %s", status, resp.OK, resp.Description)
	}

	var user botUser
	if err := json.Unmarshal(resp.Result, &user); err != nil {
		return t.fail("bot check failed", "failed to decode bot identity: %v", err)
	}
	if user.Username == "" {
		return t.fail("bot check failed", "bot identity has no username")
	}

	t.log.Info("bot is active", slog.String("username", user.Username))
	return success(user.Username)
}

func (t *Telegram) Send(ctx context.Context, text string) Result {
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {text},
		"parse_mode": {report.ParseMode},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"sendMessage", strings.NewReader(form.Encode()))
	if err != nil {
		return t.fail("failed to send message", "failed to create request: %s", t.redact(err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, resp, err := t.do(req)
	if err != nil {
		return t.fail("failed to send message", "%s", t.redact(err))
	}

	if status != http.StatusOK || !resp.OK {
		return t.fail("failed to send message", "status %d: ok=%t %s", status, resp.OK, resp.Description)
	}

	t.log.Info("message sent successfully")
	return success("sent")
}

func (t *Telegram) do(req *http.Request) (int, apiResponse, error) {
	var out apiResponse

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, out, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, out, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return resp.StatusCode, out, fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	return resp.StatusCode, out, nil
}

func (t *Telegram) fail(event, format string, args ...any) Result {
	res := failure(format, args...)
	t.log.Error(event, slog.String("reason", res.Message))
	return res
}

// redact strips the bot token from transport errors, which embed the
// request URL.
func (t *Telegram) redact(err error) string {
	if t.token == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), t.token, "<token>")
}

func hasPayload(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
