package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wefun-ai/reddit-radar/deepseek"
	"github.com/wefun-ai/reddit-radar/gemini"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
)

// geminiProvider adapts the Gemini client, translating its quota rejections
// into repo.ErrQuotaExceeded so the classifier can retry and fail over.
type geminiProvider struct {
	client *gemini.Client
}

// NewGeminiProvider wraps a Gemini client as a classifier provider.
func NewGeminiProvider(client *gemini.Client) repo.ClassifierProvider {
	if client == nil {
		return nil
	}
	return &geminiProvider{client: client}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := p.client.Complete(ctx, prompt)
	if err != nil {
		var quota *gemini.QuotaError
		if errors.As(err, &quota) || strings.Contains(strings.ToLower(err.Error()), "quota") {
			return "", fmt.Errorf("%v: %w", err, repo.ErrQuotaExceeded)
		}
		return "", err
	}
	return text, nil
}

// deepseekProvider adapts the DeepSeek client.
type deepseekProvider struct {
	client *deepseek.Client
}

// NewDeepSeekProvider wraps a DeepSeek client as a classifier provider.
func NewDeepSeekProvider(client *deepseek.Client) repo.ClassifierProvider {
	if client == nil {
		return nil
	}
	return &deepseekProvider{client: client}
}

func (p *deepseekProvider) Name() string { return "deepseek" }

func (p *deepseekProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return p.client.Complete(ctx, prompt)
}
