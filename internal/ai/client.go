// Package ai drafts reply suggestions for the inbox through a
// generateContent-style text model endpoint.
package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// Drafter produces message drafts: reply suggestions for the inbox and
// campaign bodies for the broadcast composer.
type Drafter interface {
	DraftReply(ctx context.Context, contactName string, history []model.ChatMessage) (string, error)
	DraftCampaign(ctx context.Context, campaignName, goal string) (string, error)
}

// Client calls the text-generation API.
type Client struct {
	baseURL    string
	apiKey     string
	modelName  string
	httpClient *http.Client
}

// NewClient creates a drafting client.
func NewClient(baseURL, apiKey, modelName string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		modelName:  modelName,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// historyWindow limits how much of the thread goes into the prompt.
const historyWindow = 15

// DraftReply asks the model for a short reply suggestion in the
// business's voice, given the recent thread history.
func (c *Client) DraftReply(ctx context.Context, contactName string, history []model.ChatMessage) (string, error) {
	draft, err := c.generate(ctx, buildPrompt(contactName, history))
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Debug("Reply drafted", zap.Int("history_len", len(history)), zap.Int("draft_len", len(draft)))
	return draft, nil
}

// DraftCampaign asks the model for a broadcast message body given the
// campaign name and its goal.
func (c *Client) DraftCampaign(ctx context.Context, campaignName, goal string) (string, error) {
	draft, err := c.generate(ctx, buildCampaignPrompt(campaignName, goal))
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Debug("Campaign message drafted", zap.String("campaign", campaignName), zap.Int("draft_len", len(draft)))
	return draft, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: ai api key not configured", apperrors.ErrBadRequest)
	}

	payload := utils.MustMarshalJSON(generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.modelName, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: failed to build generate request: %w", apperrors.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewRetryable(fmt.Errorf("%w: %w", apperrors.ErrProvider, err), "generate request failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", apperrors.NewRetryable(
				fmt.Errorf("%w: generate failed (status %d): %s", apperrors.ErrProvider, resp.StatusCode, string(body)),
				"model endpoint unavailable")
		}
		return "", fmt.Errorf("%w: generate failed (status %d): %s", apperrors.ErrProvider, resp.StatusCode, string(body))
	}

	var parsed generateResponse
	if err := utils.UnmarshalJSON(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed generate response: %w", apperrors.ErrProvider, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: generate response has no candidates", apperrors.ErrProvider)
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func buildCampaignPrompt(campaignName, goal string) string {
	if campaignName == "" {
		campaignName = "Nossa Campanha"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Crie uma mensagem de WhatsApp curta, amigável e profissional para uma campanha de marketing chamada %q.\n", campaignName)
	fmt.Fprintf(&b, "O objetivo da campanha é: %q.\n", goal)
	b.WriteString("A mensagem deve ser otimizada para conversão e incluir uma chamada para ação clara. ")
	b.WriteString("Não inclua saudações ou despedidas, apenas o corpo da mensagem. ")
	b.WriteString("Use emojis de forma moderada e relevante.")
	return b.String()
}

func buildPrompt(contactName string, history []model.ChatMessage) string {
	var b strings.Builder
	b.WriteString("Você é o assistente de atendimento de uma agência. ")
	b.WriteString("Escreva UMA resposta curta e cordial em português para a conversa abaixo, ")
	b.WriteString("sem saudações repetidas e sem assinatura.\n\n")
	fmt.Fprintf(&b, "Contato: %s\n\n", contactName)

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, msg := range history[start:] {
		who := contactName
		if msg.Sender == model.SenderMe {
			who = "Atendente"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, msg.Text)
	}
	b.WriteString("\nAtendente:")
	return b.String()
}
