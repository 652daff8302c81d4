package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/tokenizer"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/heritage-rag/internal/connectors"
	"github.com/custodia-labs/heritage-rag/internal/connectors/wikidata"
	"github.com/custodia-labs/heritage-rag/internal/connectors/wikipedia"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/services"
	"github.com/custodia-labs/heritage-rag/internal/logger"
	"github.com/custodia-labs/heritage-rag/internal/postprocessors/chunker"
)

// bootstrap builds the services for validated settings.
func bootstrap(ctx context.Context, settings *domain.Settings) (*cli.Services, error) {
	spec := settings.CollectionSpec()

	logger.Section("Startup")
	logger.Debug("Index: %s, collection %q", settings.Index.Backend, spec.Name)

	backend, err := storage.Open(ctx, settings.Index)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	embedder, err := ai.CreateEmbeddingService(settings.Embedding, settings.Index.Dimension)
	if err != nil {
		backend.Close()
		return nil, err
	}
	if err := ai.Ping(ctx, embedder); err != nil {
		logger.Warn("Embedding service %s is not reachable: %v", embedder.ModelName(), err)
	}

	llm, err := ai.CreateLLMService(settings.LLM)
	if err != nil {
		embedder.Close()
		backend.Close()
		return nil, err
	}

	closeAll := func() error {
		return errors.Join(llm.Close(), embedder.Close(), backend.Close())
	}

	retriever := services.NewRetrieverService(spec, backend.Index, embedder, settings.Retrieval.TopK)
	if err := retriever.Open(ctx); err != nil {
		closeAll()
		return nil, err
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		closeAll()
		return nil, err
	}
	answers := services.NewAnswerService(retriever, services.NewAssembler(prompts), llm)
	answers.SetTokenCounter(tokenizer.New(""))

	client := connectors.NewClient(settings.Fetch.UserAgent, 0)
	indexer := services.NewIndexingService(
		spec,
		backend.Index,
		wikidata.New(wikidata.Config{Client: client}),
		wikipedia.New(wikipedia.Config{Client: client, Language: settings.Fetch.Language}),
		chunker.New(chunker.WithChunkSize(settings.Chunking.Size), chunker.WithOverlap(settings.Chunking.Overlap)),
		embedder,
	)
	indexer.SetRunStore(backend.Runs)
	indexer.SetFetchInterval(settings.Fetch.Interval)

	svc := &cli.Services{
		Indexing:  indexer,
		Retriever: retriever,
		Answer:    answers,
		Countries: services.NewCountryService(backend.Index),
		Close:     closeAll,
	}

	if settings.Index.RefreshInterval > 0 {
		svc.Scheduler = services.NewScheduler(indexer, backend.Runs, spec, settings.Index.RefreshInterval,
			domain.IndexOptions{Recreate: true, SiteLimit: settings.Fetch.SiteLimit})
	}

	return svc, nil
}
