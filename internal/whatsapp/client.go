// Package whatsapp talks to the Z-API style messaging provider. The
// instance credentials come from the per-company settings, so a single
// client instance serves whichever tenant the request context names.
package whatsapp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/jid"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// Credentials identifies one provider instance.
type Credentials struct {
	InstanceID  string
	Token       string
	ClientToken string
}

// Sender sends WhatsApp text messages.
type Sender interface {
	SendText(ctx context.Context, creds Credentials, chatID, text string) error
}

// Client is an HTTP client for the provider's send-text endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider client against the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendTextRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SendText delivers a text message to the chat. The chat identifier may
// be a raw phone or a full jid; only the phone part goes on the wire.
func (c *Client) SendText(ctx context.Context, creds Credentials, chatID, text string) error {
	if creds.InstanceID == "" || creds.Token == "" {
		return fmt.Errorf("%w: messaging credentials not configured", apperrors.ErrBadRequest)
	}

	phone := jid.PhonePart(jid.Normalize(chatID))
	if phone == "" {
		return fmt.Errorf("%w: chat id %q has no phone part", apperrors.ErrBadRequest, chatID)
	}

	url := fmt.Sprintf("%s/instances/%s/token/%s/send-text", c.baseURL, creds.InstanceID, creds.Token)
	payload := utils.MustMarshalJSON(sendTextRequest{Phone: phone, Message: text})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to build send request: %w", apperrors.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if creds.ClientToken != "" {
		req.Header.Set("Client-Token", creds.ClientToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewRetryable(fmt.Errorf("%w: %w", apperrors.ErrProvider, err), "send-text request failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		logger.FromContext(ctx).Debug("Message sent",
			zap.String("phone", phone),
			zap.Int("status", resp.StatusCode))
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: provider rejected credentials (status %d): %s", apperrors.ErrUnauthorized, resp.StatusCode, string(body))
	case resp.StatusCode >= 500:
		return apperrors.NewRetryable(
			fmt.Errorf("%w: provider error (status %d): %s", apperrors.ErrProvider, resp.StatusCode, string(body)),
			"send-text failed upstream")
	default:
		return fmt.Errorf("%w: send-text failed (status %d): %s", apperrors.ErrProvider, resp.StatusCode, string(body))
	}
}
