// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Conversation roles, as the Gemini API names them.
const (
	RoleUser  = genai.RoleUser
	RoleModel = genai.RoleModel
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// BlockedReply is returned when the model answers without text.
const BlockedReply = "An error occurred or the response was blocked."

// Turn is one message of a conversation.
type Turn struct {
	Role string
	Text string
}

// ChatBackend produces the model's answer to a conversation whose last turn
// is the user's new message.
type ChatBackend interface {
	Reply(ctx context.Context, history []Turn) (string, error)
}

// GeminiBackend answers with the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini backend.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Reply sends history to the model.
func (g *GeminiBackend) Reply(ctx context.Context, history []Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return BlockedReply, nil
	}
	return text, nil
}
