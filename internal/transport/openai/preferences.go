package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain"
)

const preferencePrompt = `You help an event planner shortlist %s vendors.
Read the client's vision and extract only the soft preferences relevant to a %s:
style, theme, atmosphere, cuisine, tone. Ignore budget, guest counts, dates and locations.
Reply with a JSON object {"preference": "<one or two sentences>"}.
If nothing relevant is stated, reply {"preference": ""}.`

type preferenceReply struct {
	Preference string `json:"preference"`
}

// ExtractPreferences implements domain.PreferenceExtractor: one JSON-mode chat completion
// normalizes the vision for the category, then the normalized text is embedded.
// An empty preference yields an empty result without an embedding call.
func (p *Provider) ExtractPreferences(ctx context.Context, vision, category string) (domain.PreferenceResult, error) {
	req := openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(preferencePrompt, category, category)},
			{Role: openai.ChatMessageRoleUser, Content: vision},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
		User:        p.user,
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		p.recordError(p.chatModel, opExtract, "api_error")
		return domain.PreferenceResult{}, parseAPIError(err, domain.ErrPreferenceProviderError)
	}
	if len(resp.Choices) == 0 {
		p.recordError(p.chatModel, opExtract, "empty_response")
		return domain.PreferenceResult{}, fmt.Errorf("no response choices: %w", domain.ErrPreferenceProviderError)
	}

	text, err := parsePreference(resp.Choices[0].Message.Content)
	if err != nil {
		p.recordError(p.chatModel, opExtract, "malformed_response")
		return domain.PreferenceResult{}, err
	}
	p.recordSuccess(p.chatModel, opExtract, duration, resp.Usage.PromptTokens, resp.Usage.TotalTokens)

	result := domain.PreferenceResult{Text: text, TotalTokens: resp.Usage.TotalTokens}
	if text == "" {
		p.logger.Debug("No preference stated", zap.String("category", category))
		return result, nil
	}

	emb, err := p.Embed(ctx, p.instruction+text)
	if err != nil {
		return domain.PreferenceResult{}, fmt.Errorf("embed preference: %w", err)
	}
	result.Embedding = emb.Embedding
	result.TotalTokens += emb.TotalTokens
	return result, nil
}

// parsePreference decodes the JSON reply. Models occasionally wrap JSON in a code fence.
func parsePreference(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply preferenceReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		return "", fmt.Errorf("malformed preference reply: %w: %w", domain.ErrPreferenceProviderError, err)
	}
	return strings.TrimSpace(reply.Preference), nil
}
