package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/repository"
)

var _ GraphUseCase = (*graphUC)(nil)

type GraphUseCase interface {
	Load(ctx context.Context, workspace string) *model.Graph
	AddNode(ctx context.Context, workspace, title, content string, tags []string) (*model.Node, error)
	Connect(ctx context.Context, workspace, sourceID, targetID, label string) error
	// CreateNodesFromTopics turns extracted related-topic strings into
	// nodes linked to the origin node. Topics matching an existing node
	// title link to that node instead of creating a duplicate.
	CreateNodesFromTopics(ctx context.Context, workspace, originID string, topicList []string) ([]model.Node, error)
}

type graphUC struct {
	store repository.GraphStore
	log   *zerolog.Logger
}

func NewGraphUseCase(store repository.GraphStore, logger *zerolog.Logger) *graphUC {
	l := logger.With().Str("component", "GraphUC").Logger()
	return &graphUC{store: store, log: &l}
}

func (g *graphUC) Load(ctx context.Context, workspace string) *model.Graph {
	return g.store.LoadGraph(ctx, workspace)
}

func (g *graphUC) AddNode(ctx context.Context, workspace, title, content string, tags []string) (*model.Node, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty node title", domain.ErrInvalidArgument)
	}
	graph := g.store.LoadGraph(ctx, workspace)
	node := model.Node{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: time.Now(),
	}
	graph.AddNode(node)
	g.store.SaveGraph(ctx, workspace, graph)
	return &node, nil
}

func (g *graphUC) Connect(ctx context.Context, workspace, sourceID, targetID, label string) error {
	graph := g.store.LoadGraph(ctx, workspace)
	if !graph.HasNode(sourceID) {
		return fmt.Errorf("%w: node %q", domain.ErrNotFound, sourceID)
	}
	if !graph.HasNode(targetID) {
		return fmt.Errorf("%w: node %q", domain.ErrNotFound, targetID)
	}
	graph.Connect(sourceID, targetID, label)
	g.store.SaveGraph(ctx, workspace, graph)
	return nil
}

func (g *graphUC) CreateNodesFromTopics(ctx context.Context, workspace, originID string, topicList []string) ([]model.Node, error) {
	graph := g.store.LoadGraph(ctx, workspace)
	if !graph.HasNode(originID) {
		return nil, fmt.Errorf("%w: node %q", domain.ErrNotFound, originID)
	}

	created := make([]model.Node, 0, len(topicList))
	for _, topic := range topicList {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if existing := graph.FindByTitle(topic); existing != nil {
			graph.Connect(originID, existing.ID, "related")
			continue
		}
		node := model.Node{
			ID:        uuid.NewString(),
			Title:     topic,
			CreatedAt: time.Now(),
		}
		graph.AddNode(node)
		graph.Connect(originID, node.ID, "related")
		created = append(created, node)
	}

	g.store.SaveGraph(ctx, workspace, graph)
	if len(created) > 0 {
		g.log.Debug().Int("count", len(created)).Str("origin", originID).Msg("nodes created from topics")
	}
	return created, nil
}
