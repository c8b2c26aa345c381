package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modlrn/go-backend/internal/cfg"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/jitter"
	"github.com/modlrn/go-backend/pkg/logger"
	"google.golang.org/genai"
)

const (
	baseBackoff = 1 * time.Second
	maxBackoff  = 10 * time.Second
)

// contentGenerator — часть *genai.Models, которой пользуется сервис.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIService генерирует текст через Gemini с повторами и экспоненциальной задержкой.
// Без API-ключа сервис выключен и сразу возвращает e.ErrGenAIUnavailable.
type GenAIService struct {
	models contentGenerator
	cfg    *cfg.GenAICfg
	logger logger.Logger
}

// NewGenAIService создает клиента Gemini. Пустой ключ дает выключенный сервис без ошибки.
func NewGenAIService(ctx context.Context, cfg *cfg.GenAICfg, logger logger.Logger) (*GenAIService, error) {
	const op = "GenAIService.New"

	s := &GenAIService{cfg: cfg, logger: logger}
	if !cfg.Enabled() {
		logger.Warnf("GEMINI_API_KEY is not set, generative features are disabled")
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	s.models = client.Models
	return s, nil
}

func (g *GenAIService) Enabled() bool {
	return g.models != nil
}

// Generate отправляет prompt и возвращает текст ответа модели.
func (g *GenAIService) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "GenAIService.Generate"

	if !g.Enabled() {
		return "", e.Wrap(op, e.ErrGenAIUnavailable)
	}

	attempts := max(g.cfg.MaxRetries, 1)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		text, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", e.Wrap(op, ctx.Err())
		}
		if attempt == attempts-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(baseBackoff, maxBackoff, attempt, jitter.DefaultJitter)
		g.logger.Warnf("generation failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return "", e.Wrap(op, ctx.Err())
		}
	}

	return "", e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr))
}

func (g *GenAIService) generateOnce(ctx context.Context, prompt string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), g.generationConfig())
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}

	return text, nil
}

func (g *GenAIService) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.cfg.Temperature),
		TopP:            genai.Ptr(g.cfg.TopP),
		TopK:            genai.Ptr(g.cfg.TopK),
		MaxOutputTokens: g.cfg.MaxOutputTokens,
	}
}
