// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/adapter"
	"notegraph-ai/internal/domain/ports/repository"
	"notegraph-ai/internal/infra/logging"
	"notegraph-ai/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// recentWindow is how many trailing messages travel upstream per send.
const recentWindow = 15

// systemPrompt primes every conversation; it counts as the caller-prepended
// system-style message the providers receive.
const systemPrompt = "You are an assistant inside a knowledge-graph note-taking tool. " +
	"Answer concisely and, when it helps, finish with a line like " +
	"\"Related to: Topic One, Topic Two.\" naming connected topics."

// failureNotice is the synthetic assistant reply appended when a provider
// call fails. Upstream failures never propagate past this use case.
const failureNotice = "Sorry, the AI service request failed. " +
	"Check the provider configuration and try again."

type ChatUseCase interface {
	StartSession(ctx context.Context, workspace, nodeID string) (*model.ChatSession, error)
	SendMessage(ctx context.Context, workspace, sessionID, text string) (*model.ChatMessage, error)
	EndSession(ctx context.Context, workspace, sessionID string) error
	History(ctx context.Context, workspace string) []*model.ChatSession
}

type chatUC struct {
	store      repository.StateStore
	dispatcher adapter.ChatDispatcher
	limiter    repository.RateLimiter
	rateLimit  int
	rateWindow time.Duration
	log        *zerolog.Logger
}

func NewChatUseCase(
	store repository.StateStore,
	dispatcher adapter.ChatDispatcher,
	limiter repository.RateLimiter,
	rateLimit int,
	rateWindow time.Duration,
	logger *zerolog.Logger,
) *chatUC {
	l := logger.With().Str("component", "ChatUC").Logger()
	return &chatUC{
		store:      store,
		dispatcher: dispatcher,
		limiter:    limiter,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
		log:        &l,
	}
}

func (c *chatUC) StartSession(ctx context.Context, workspace, nodeID string) (*model.ChatSession, error) {
	if nodeID != "" && !c.store.LoadGraph(ctx, workspace).HasNode(nodeID) {
		return nil, fmt.Errorf("%w: node %q", domain.ErrNotFound, nodeID)
	}
	s := model.NewChatSession(uuid.NewString(), nodeID)
	sessions := append(c.store.LoadSessions(ctx, workspace), s)
	c.store.SaveSessions(ctx, workspace, sessions)
	return s, nil
}

func (c *chatUC) SendMessage(ctx context.Context, workspace, sessionID, text string) (*model.ChatMessage, error) {
	defer logging.TraceDuration(c.log, "ChatUC.SendMessage")()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidArgument)
	}

	sessions := c.store.LoadSessions(ctx, workspace)
	s := findSession(sessions, sessionID)
	if s == nil {
		return nil, fmt.Errorf("%w: session %q", domain.ErrNotFound, sessionID)
	}
	if s.Status != model.ChatSessionActive {
		return nil, domain.ErrSessionFinished
	}

	if c.limiter != nil {
		ok, err := c.limiter.Allow(ctx, chatRateKey(workspace), c.rateLimit, c.rateWindow)
		if err != nil {
			c.log.Warn().Err(err).Msg("rate limiter unavailable; allowing send")
		} else if !ok {
			return nil, domain.ErrRateLimited
		}
	}

	cfg, err := c.pickService(ctx, workspace)
	if err != nil {
		return nil, err
	}

	// Persist the user message before the round trip so a provider failure
	// never loses what the user typed.
	s.AddMessage("user", text, nil)
	c.store.SaveSessions(ctx, workspace, sessions)

	msgs := make([]adapter.Message, 0, recentWindow+1)
	msgs = append(msgs, adapter.Message{Role: "system", Content: systemPrompt})
	for _, m := range s.GetRecentMessages(recentWindow) {
		msgs = append(msgs, adapter.Message{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.dispatcher.Dispatch(ctx, cfg, msgs)
	elapsed := int(time.Since(start).Milliseconds())
	metrics.ObserveChatCall(string(cfg.Provider), cfg.Model, elapsed, err == nil)

	if err != nil {
		// Malformed configs and arguments are the caller's to fix.
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidAPIKey) {
			return nil, err
		}
		// Upstream, unsupported-service, and transport failures become a
		// synthetic assistant notice; the session keeps working.
		c.log.Error().Err(err).
			Str("provider", string(cfg.Provider)).
			Bool("upstream", domain.IsUpstream(err)).
			Msg("chat dispatch failed")
		metrics.IncFailureNotice(string(cfg.Provider))
		notice := s.AddMessage("assistant", failureNotice, nil)
		c.store.SaveSessions(ctx, workspace, sessions)
		return notice, nil
	}

	metrics.AddTopicsExtracted(string(cfg.Provider), len(resp.RelatedTopics))
	reply := s.AddMessage("assistant", resp.Content, resp.RelatedTopics)
	c.store.SaveSessions(ctx, workspace, sessions)
	return reply, nil
}

func (c *chatUC) EndSession(ctx context.Context, workspace, sessionID string) error {
	sessions := c.store.LoadSessions(ctx, workspace)
	s := findSession(sessions, sessionID)
	if s == nil {
		return fmt.Errorf("%w: session %q", domain.ErrNotFound, sessionID)
	}
	s.Status = model.ChatSessionFinished
	s.UpdatedAt = time.Now()
	c.store.SaveSessions(ctx, workspace, sessions)
	return nil
}

func (c *chatUC) History(ctx context.Context, workspace string) []*model.ChatSession {
	return c.store.LoadSessions(ctx, workspace)
}

// pickService returns the enabled config for the workspace's default
// provider, falling back to any enabled config.
func (c *chatUC) pickService(ctx context.Context, workspace string) (model.AIServiceConfig, error) {
	settings := c.store.LoadSettings(ctx, workspace)
	services := c.store.LoadServices(ctx, workspace)

	var fallback *model.AIServiceConfig
	for i := range services {
		if !services[i].Enabled {
			continue
		}
		if services[i].Provider == settings.DefaultProvider {
			return services[i], nil
		}
		if fallback == nil {
			fallback = &services[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return model.AIServiceConfig{}, domain.ErrNoServiceConfigured
}

// chatRateKey is the per-workspace send window. The format is owned here;
// the limiter treats keys as opaque.
func chatRateKey(workspace string) string {
	return fmt.Sprintf("rate_limit:%s:chat", workspace)
}

func findSession(sessions []*model.ChatSession, id string) *model.ChatSession {
	for _, s := range sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}
