package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
	"github.com/yourusername/media-fetch-go/internal/infrastructure"
)

// Dispatcher routes one decoded task invocation to its handler. Handlers
// report failures as result values; the dispatcher guarantees the process
// always emits a well-formed envelope.
type Dispatcher struct {
	config     *domain.Config
	store      *infrastructure.ResultStore
	fetcher    *infrastructure.DirectFetcher
	downloader *infrastructure.YTDLPDownloader
	classifier *domain.URLClassifier
	logger     *zap.Logger
}

// NewDispatcher wires the task handlers against a loaded configuration.
func NewDispatcher(config *domain.Config, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		config:     config,
		store:      infrastructure.NewResultStore(config.Results.Dir, logger),
		fetcher:    infrastructure.NewDirectFetcher(&config.Direct, logger),
		downloader: infrastructure.NewYTDLPDownloader(&config.Tool, logger),
		classifier: domain.NewURLClassifier(config.Direct.Extensions, config.Direct.Markers),
		logger:     logger,
	}
}

// Dispatch executes one task by name and returns its result. Unknown task
// names and handler panics both come back as failed results, never as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, selector string, args map[string]interface{}) (result domain.TaskResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("task handler panicked",
				zap.String("task", selector),
				zap.Any("panic", r))
			result = domain.Fail(fmt.Sprintf("Internal error: %v", r))
		}
	}()

	kind, ok := domain.ParseTaskKind(selector)
	if !ok {
		return domain.Fail(fmt.Sprintf("Unknown task: %s", selector))
	}

	d.logger.Info("dispatching task", zap.String("task", selector))

	switch kind {
	case domain.TaskDownload:
		return d.handleDownload(ctx, args)
	case domain.TaskExtractMetadata:
		return d.handleExtractMetadata(ctx, args)
	case domain.TaskReadResult:
		return d.handleReadResult(args)
	case domain.TaskCleanupResult:
		return d.handleCleanupResult(args)
	case domain.TaskCheckTool:
		return d.handleCheckTool(ctx)
	case domain.TaskTestProxy:
		return d.handleTestProxy(ctx, args)
	case domain.TaskHistory:
		return d.handleHistory(args)
	default:
		return domain.Fail(fmt.Sprintf("Unknown task: %s", selector))
	}
}

// Run reads one task document from r, executes it, and writes the result
// envelope to w. The returned exit code is zero for every handled outcome,
// including task failures, which are reported inside the envelope instead.
func (d *Dispatcher) Run(ctx context.Context, r io.Reader, w io.Writer) int {
	input, err := ReadInput(r)
	if err != nil {
		d.logger.Error("failed to read task input", zap.Error(err))
		if writeErr := WriteEnvelope(w, domain.Fail(err.Error())); writeErr != nil {
			d.logger.Error("failed to write envelope", zap.Error(writeErr))
		}
		return 0
	}

	result := d.Dispatch(ctx, input.Selector, input.Args)

	if err := WriteEnvelope(w, result); err != nil {
		d.logger.Error("failed to write envelope", zap.Error(err))
	}
	return 0
}

// historyRepo opens the ledger on demand so tasks that never touch it do not
// pay the database cost.
func (d *Dispatcher) historyRepo() (domain.HistoryRepository, error) {
	if !d.config.History.Enabled {
		return nil, nil
	}
	return infrastructure.NewSQLiteHistoryRepository(d.config.History.DatabasePath)
}
