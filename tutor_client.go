package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
	"github.com/trigtutor/tutor/embedding"
	"github.com/trigtutor/tutor/knowledge"
	"github.com/trigtutor/tutor/orchestrator"
)

// TutorClient owns everything a running tutor needs: the question encoder,
// the published knowledge base, the solver and the optional file watcher.
type TutorClient struct {
	config  *config.Config
	encoder embedding.Encoder
	holder  *knowledge.Holder
	solver  *orchestrator.Solver
	watcher *knowledge.Watcher
}

// NewTutorClient loads the knowledge base and wires the solver. A knowledge
// base that cannot be loaded is fatal.
func NewTutorClient(ctx context.Context, cfg *config.Config) (*TutorClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	client := &TutorClient{config: cfg}

	enc, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create encoder failed, err: %w", err)
	}
	client.encoder = enc

	base, err := client.load(ctx)
	if err != nil {
		return nil, err
	}
	client.holder = knowledge.NewHolder(base)

	solver, err := orchestrator.NewFromConfig(cfg, client.holder, enc)
	if err != nil {
		return nil, fmt.Errorf("create solver failed, err: %w", err)
	}
	client.solver = solver

	if cfg.Knowledge.Watch {
		w, err := knowledge.NewWatcher(cfg.Knowledge.Path, client.holder, client.load)
		if err != nil {
			logger.Warnf("tutor: knowledge watch disabled: %v", err)
		} else {
			client.watcher = w
			go func() {
				if err := w.Run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warnf("tutor: knowledge watcher stopped: %v", err)
				}
			}()
		}
	}
	return client, nil
}

func (c *TutorClient) load(ctx context.Context) (*knowledge.Base, error) {
	return knowledge.LoadFile(ctx, c.config.Knowledge.Path, knowledge.LoadOptions{
		Encoder:      c.encoder,
		EmbedMissing: c.config.Knowledge.EmbedMissing,
		Concurrency:  c.config.Knowledge.EmbedConcurrency,
		Threshold:    c.config.Pipeline.Retrieval.SimilarityThreshold,
	})
}

// Solve answers one question in a session.
func (c *TutorClient) Solve(ctx context.Context, question, sessionID string) orchestrator.AnswerResponse {
	return c.solver.Solve(ctx, question, sessionID)
}

// ResetSession forgets a session's conversation.
func (c *TutorClient) ResetSession(ctx context.Context, sessionID string) error {
	return c.solver.Reset(ctx, sessionID)
}

func (c *TutorClient) Solver() *orchestrator.Solver { return c.solver }

func (c *TutorClient) Knowledge() *knowledge.Holder { return c.holder }

func (c *TutorClient) Config() *config.Config { return c.config }

// Close stops the knowledge watcher.
func (c *TutorClient) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}
