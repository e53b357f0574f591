package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/ai/assemble"
	"github.com/hrygo/tutormind/ai/knowledge"
	"github.com/hrygo/tutormind/ai/knowledge/extract"
	"github.com/hrygo/tutormind/ai/retrieval"
	"github.com/hrygo/tutormind/internal/profile"
	"github.com/hrygo/tutormind/store"
)

// APIV1Service bundles the REST surface: fact management, assembly
// preview, and source indexing.
type APIV1Service struct {
	Profile   *profile.Profile
	Store     *store.Store
	Knowledge *knowledge.Service
	Assembler *assemble.Assembler

	// Retriever and Extractor are nil when AI is not configured; their
	// endpoints degrade accordingly.
	Retriever *retrieval.StoreRetriever
	Extractor extract.Extractor
}

func NewAPIV1Service(_ context.Context, instanceProfile *profile.Profile, storeInstance *store.Store) (*APIV1Service, error) {
	service := &APIV1Service{
		Profile:   instanceProfile,
		Store:     storeInstance,
		Knowledge: knowledge.NewService(storeInstance),
		Assembler: assemble.NewAssembler(nil),
	}

	// Vector retrieval needs an embedding provider and a driver with
	// vector search; extraction only needs the LLM.
	if instanceProfile.IsAIEnabled() {
		service.Extractor = extract.NewLLMExtractor(extract.Config{
			APIKey:            instanceProfile.LLMAPIKey,
			BaseURL:           instanceProfile.LLMBaseURL,
			Model:             instanceProfile.LLMModel,
			RequestsPerSecond: instanceProfile.ExtractionRPS,
		})

		if instanceProfile.Driver == "postgres" {
			embedder := retrieval.NewEmbedder(retrieval.EmbedderConfig{
				APIKey:     instanceProfile.EmbeddingAPIKey,
				BaseURL:    instanceProfile.EmbeddingBaseURL,
				Model:      instanceProfile.EmbeddingModel,
				Dimensions: instanceProfile.EmbeddingDimensions,
			})
			service.Retriever = retrieval.NewStoreRetriever(storeInstance, embedder)
		}
	} else {
		slog.Info("AI features disabled", "driver", instanceProfile.Driver)
	}

	return service, nil
}

// Register mounts all v1 routes.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")

	// Fact lifecycle.
	g.POST("/facts", s.CreateFact)
	g.GET("/facts/:id", s.GetFact)
	g.PATCH("/facts/:id", s.UpdateFact)
	g.DELETE("/facts/:id", s.DeleteFact)
	g.PUT("/facts/:id/tags", s.SetFactTags)

	// Consolidation and querying.
	g.POST("/facts/extract", s.ExtractFacts)
	g.POST("/facts/resolve", s.ResolveFact)
	g.POST("/facts/batch", s.ImportFactBatch)
	g.POST("/facts/search", s.SearchFacts)
	g.GET("/facts/relevant", s.RelevantFacts)

	// Per-user views.
	g.GET("/users/:userId/tags", s.ListUserTags)
	g.GET("/users/:userId/gaps", s.DetectGaps)
	g.GET("/users/:userId/summary", s.ProfileSummary)
	g.GET("/users/:userId/patterns", s.AnalyzePatterns)
	g.GET("/users/:userId/export", s.ExportFacts)
	g.POST("/users/:userId/import", s.ImportFacts)

	// Prompt assembly preview.
	g.POST("/assemble", s.AssemblePreview)

	// Source index.
	g.POST("/sources", s.IndexSource)
	g.DELETE("/sources/:id", s.DeleteSource)
	g.GET("/sources/search", s.SearchSources)
}

// httpError maps domain errors onto HTTP status codes.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, knowledge.ErrUnknownStrategy):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
