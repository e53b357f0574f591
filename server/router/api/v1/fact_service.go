package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/tutormind/ai/knowledge"
	"github.com/hrygo/tutormind/store"
)

// CreateFactRequest inserts a fact directly, without conflict
// resolution.
type CreateFactRequest struct {
	UserID int32 `json:"userId"`
	knowledge.Candidate
}

func (s *APIV1Service) CreateFact(c echo.Context) error {
	var req CreateFactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	fact, err := s.Knowledge.CreateFact(c.Request().Context(), req.UserID, req.Candidate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, fact)
}

func (s *APIV1Service) GetFact(c echo.Context) error {
	fact, err := s.Knowledge.GetFact(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fact)
}

// UpdateFactRequest is a partial update; absent fields stay unchanged.
type UpdateFactRequest struct {
	Subject    *string   `json:"subject"`
	Details    *string   `json:"details"`
	Confidence *float64  `json:"confidence"`
	Active     *bool     `json:"active"`
	Tags       *[]string `json:"tags"`
}

func (s *APIV1Service) UpdateFact(c echo.Context) error {
	var req UpdateFactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	fact, err := s.Knowledge.UpdateFact(c.Request().Context(), knowledge.UpdateRequest{
		ID:         c.Param("id"),
		Subject:    req.Subject,
		Details:    req.Details,
		Confidence: req.Confidence,
		Active:     req.Active,
		Tags:       req.Tags,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fact)
}

// DeleteFact soft-deletes by default; ?hard=true removes the row.
func (s *APIV1Service) DeleteFact(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if c.QueryParam("hard") == "true" {
		if err := s.Knowledge.HardDeleteFact(ctx, id); err != nil {
			return httpError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	fact, err := s.Knowledge.DeactivateFact(ctx, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fact)
}

type SetTagsRequest struct {
	Tags []string `json:"tags"`
}

func (s *APIV1Service) SetFactTags(c echo.Context) error {
	var req SetTagsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	fact, err := s.Knowledge.SetTags(c.Request().Context(), c.Param("id"), req.Tags)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fact)
}

// ResolveFactRequest folds one candidate into the knowledge base under
// a conflict strategy.
type ResolveFactRequest struct {
	UserID   int32              `json:"userId"`
	Strategy knowledge.Strategy `json:"strategy"`
	knowledge.Candidate
}

func (s *APIV1Service) ResolveFact(c echo.Context) error {
	var req ResolveFactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	outcome, err := s.Knowledge.Resolve(c.Request().Context(), req.UserID, req.Candidate, req.Strategy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, outcome)
}

type ImportBatchRequest struct {
	UserID     int32                 `json:"userId"`
	Strategy   knowledge.Strategy    `json:"strategy"`
	Candidates []knowledge.Candidate `json:"candidates"`
}

func (s *APIV1Service) ImportFactBatch(c echo.Context) error {
	var req ImportBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	result, err := s.Knowledge.ImportBatch(c.Request().Context(), req.UserID, req.Candidates, req.Strategy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *APIV1Service) SearchFacts(c echo.Context) error {
	var req knowledge.SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	result, err := s.Knowledge.SearchFacts(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (s *APIV1Service) RelevantFacts(c echo.Context) error {
	userID, err := parseUserID(c.QueryParam("userId"))
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		var convErr error
		limit, convErr = strconv.Atoi(raw)
		if convErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	var factTypes []store.FactType
	for _, raw := range c.QueryParams()["factType"] {
		factTypes = append(factTypes, store.FactType(raw))
	}

	scored, relErr := s.Knowledge.RelevantFacts(c.Request().Context(), userID, c.QueryParam("query"), knowledge.RelevanceOptions{
		FactTypes: factTypes,
		Limit:     limit,
	})
	if relErr != nil {
		return httpError(relErr)
	}
	return c.JSON(http.StatusOK, scored)
}

func (s *APIV1Service) ListUserTags(c echo.Context) error {
	userID, err := parseUserID(c.Param("userId"))
	if err != nil {
		return err
	}
	tags, listErr := s.Knowledge.ListTags(c.Request().Context(), userID)
	if listErr != nil {
		return httpError(listErr)
	}
	return c.JSON(http.StatusOK, tags)
}

// ExtractFactsRequest runs LLM fact extraction over a transcript and
// folds the candidates into the user's knowledge base.
type ExtractFactsRequest struct {
	UserID     int32              `json:"userId"`
	Transcript string             `json:"transcript"`
	Strategy   knowledge.Strategy `json:"strategy"`
}

func (s *APIV1Service) ExtractFacts(c echo.Context) error {
	if s.Extractor == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "fact extraction requires AI configuration")
	}

	var req ExtractFactsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if req.Strategy == "" {
		req.Strategy = knowledge.StrategyPreferHighConfidence
	}

	ctx := c.Request().Context()
	candidates, err := s.Extractor.Extract(ctx, req.Transcript)
	if err != nil {
		return httpError(err)
	}

	result, err := s.Knowledge.ImportBatch(ctx, req.UserID, candidates, req.Strategy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func parseUserID(raw string) (int32, *echo.HTTPError) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return int32(id), nil
}
