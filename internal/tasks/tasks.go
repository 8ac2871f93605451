// package tasks implements the enrichment pipeline behind title lookups and recommendations.
//
// The core abstraction is Pipeline, a sequential composition of the metadata, web search and
// language model providers. Lookups emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/services"
	"github.com/desertthunder/reel/internal/shared"
)

// TitleLister returns the titles a user has saved, in insertion order.
//
// Implemented by repositories.WatchlistRepository.
type TitleLister interface {
	Titles(username string) ([]string, error)
}

// Enricher defines the operations the session layer needs from the pipeline.
type Enricher interface {
	// LookupTitle builds an [models.EnrichedRecord] for title, or returns nil when no metadata matches.
	LookupTitle(ctx context.Context, progress chan<- ProgressUpdate, title string) (*models.EnrichedRecord, error)

	// ResolveAvailability lists the platforms where title can be watched.
	ResolveAvailability(ctx context.Context, title string) ([]string, error)

	// RecommendByGenre asks the model for titles matching genre.
	RecommendByGenre(ctx context.Context, genre string) ([]string, error)

	// RecommendByHistory asks the model for titles based on username's watchlist.
	RecommendByHistory(ctx context.Context, username string) ([]string, error)
}

// Pipeline implements [Enricher].
type Pipeline struct {
	metadata  services.MetadataProvider
	search    services.WebSearcher
	model     services.LanguageModel
	watchlist TitleLister
	logger    *log.Logger
}

// NewPipeline creates a new Pipeline with the provided providers and watchlist source.
func NewPipeline(metadata services.MetadataProvider, search services.WebSearcher, model services.LanguageModel, watchlist TitleLister, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{
		metadata:  metadata,
		search:    search,
		model:     model,
		watchlist: watchlist,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (p *Pipeline) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// providerError wraps err with [shared.ErrAPIRequest] unless it already carries it.
func providerError(stage string, err error) error {
	if errors.Is(err, shared.ErrAPIRequest) {
		return fmt.Errorf("%s: %w", stage, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, stage, err)
}

// LookupTitle searches movies first and falls back to TV series. A miss in both returns nil, nil.
//
// Availability is resolved with the caller's title, not the provider's canonical title.
func (p *Pipeline) LookupTitle(ctx context.Context, progress chan<- ProgressUpdate, title string) (*models.EnrichedRecord, error) {
	if p.metadata == nil {
		return nil, fmt.Errorf("%w: metadata provider not configured", shared.ErrServiceUnavailable)
	}

	var match *models.TitleMatch
	for _, media := range []models.MediaType{models.MediaMovie, models.MediaTV} {
		p.sendProgress(progress, searchMetadataUpdate(title, string(media)))

		m, err := p.metadata.SearchTitle(ctx, title, media)
		if err != nil {
			return nil, providerError("metadata search", err)
		}
		if m != nil {
			match = m
			break
		}
	}

	if match == nil {
		p.logger.Debug("no metadata match", "title", title)
		return nil, nil
	}

	p.sendProgress(progress, fetchDetailsUpdate(match.Title, match))
	details, err := p.metadata.TitleDetails(ctx, *match)
	if err != nil {
		return nil, providerError("metadata details", err)
	}

	record := &models.EnrichedRecord{
		Title:       title,
		Summary:     details.Overview,
		Rating:      formatRating(details.Rating),
		PosterURL:   p.metadata.PosterURL(details.PosterPath),
		Genres:      details.Genres,
		MediaType:   match.MediaType,
		ProviderID:  match.ID,
		ReleaseDate: details.ReleaseDate,
	}
	if details.Title != "" {
		record.Title = details.Title
	}
	if strings.TrimSpace(record.Summary) == "" {
		record.Summary = models.NoSummary
	}
	if record.Genres == nil {
		record.Genres = []string{}
	}
	if record.ReleaseDate == "" {
		record.ReleaseDate = match.ReleaseDate
	}

	p.sendProgress(progress, fetchSimilarUpdate(record.Title))
	similar, err := p.metadata.SimilarTitles(ctx, *match, SimilarLimit)
	if err != nil {
		return nil, providerError("similar titles", err)
	}
	if len(similar) > SimilarLimit {
		similar = similar[:SimilarLimit]
	}
	record.SimilarTitles = append([]string{}, similar...)

	available, err := p.resolveAvailability(ctx, progress, title)
	if err != nil {
		return nil, err
	}
	record.AvailableOn = available

	p.logger.Info("title enriched", "query", title, "title", record.Title, "media", record.MediaType, "platforms", len(available))
	return record, nil
}

// ResolveAvailability asks the web for where title streams and has the model reduce the
// snippets to platform names.
func (p *Pipeline) ResolveAvailability(ctx context.Context, title string) ([]string, error) {
	return p.resolveAvailability(ctx, nil, title)
}

func (p *Pipeline) resolveAvailability(ctx context.Context, progress chan<- ProgressUpdate, title string) ([]string, error) {
	if p.search == nil || p.model == nil {
		return nil, fmt.Errorf("%w: web search or language model not configured", shared.ErrServiceUnavailable)
	}

	query := availabilityQuery(title)
	p.sendProgress(progress, searchWebUpdate(query))

	results, err := p.search.Search(ctx, query)
	if err != nil {
		return nil, providerError("web search", err)
	}

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		if s := strings.TrimSpace(r.Snippet); s != "" {
			snippets = append(snippets, s)
		}
	}

	block := NoSearchResults
	if len(snippets) > 0 {
		block = strings.Join(snippets, "\n")
	}

	p.sendProgress(progress, askModelUpdate(len(snippets)))
	return p.ask(ctx, "availability", availabilityPrompt(title, block))
}

// RecommendByGenre returns the model's suggestions for genre. The count is not enforced.
func (p *Pipeline) RecommendByGenre(ctx context.Context, genre string) ([]string, error) {
	if p.model == nil {
		return nil, fmt.Errorf("%w: language model not configured", shared.ErrServiceUnavailable)
	}
	return p.ask(ctx, "genre recommendations", genrePrompt(genre))
}

// RecommendByHistory returns suggestions based on username's watchlist. An empty watchlist
// returns an empty slice without calling the model.
func (p *Pipeline) RecommendByHistory(ctx context.Context, username string) ([]string, error) {
	if p.watchlist == nil {
		return nil, fmt.Errorf("%w: watchlist store not configured", shared.ErrServiceUnavailable)
	}

	titles, err := p.watchlist.Titles(username)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	if len(titles) == 0 {
		return []string{}, nil
	}

	if p.model == nil {
		return nil, fmt.Errorf("%w: language model not configured", shared.ErrServiceUnavailable)
	}
	return p.ask(ctx, "personal recommendations", historyPrompt(titles))
}

func (p *Pipeline) ask(ctx context.Context, stage, prompt string) ([]string, error) {
	reply, err := p.model.Complete(ctx, models.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return nil, providerError(stage, err)
	}

	items := ParseList(reply)
	p.logger.Debug("model replied", "stage", stage, "items", len(items))
	return items, nil
}

// formatRating renders a provider score the way it is stored: "7.8", "8.0", or "N/A" when absent.
func formatRating(v *float64) string {
	if v == nil {
		return models.NoRating
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
