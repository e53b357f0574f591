package v1

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/tutormind/ai/knowledge"
)

func (s *APIV1Service) DetectGaps(c echo.Context) error {
	userID, herr := parseUserID(c.Param("userId"))
	if herr != nil {
		return herr
	}
	gaps, err := s.Knowledge.DetectKnowledgeGaps(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, gaps)
}

func (s *APIV1Service) ProfileSummary(c echo.Context) error {
	userID, herr := parseUserID(c.Param("userId"))
	if herr != nil {
		return herr
	}
	maxPerType := 0
	if raw := c.QueryParam("maxFactsPerType"); raw != "" {
		var err error
		maxPerType, err = strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid maxFactsPerType")
		}
	}

	summary, err := s.Knowledge.ProfileSummary(c.Request().Context(), userID, maxPerType)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": summary})
}

func (s *APIV1Service) AnalyzePatterns(c echo.Context) error {
	userID, herr := parseUserID(c.Param("userId"))
	if herr != nil {
		return herr
	}
	analysis, err := s.Knowledge.AnalyzePatterns(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, analysis)
}

func (s *APIV1Service) ExportFacts(c echo.Context) error {
	userID, herr := parseUserID(c.Param("userId"))
	if herr != nil {
		return herr
	}
	data, err := s.Knowledge.ExportFacts(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSONBlob(http.StatusOK, data)
}

func (s *APIV1Service) ImportFacts(c echo.Context) error {
	userID, herr := parseUserID(c.Param("userId"))
	if herr != nil {
		return herr
	}
	strategy := knowledge.Strategy(c.QueryParam("strategy"))
	if strategy == "" {
		strategy = knowledge.StrategySkipDuplicates
	}

	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body").SetInternal(err)
	}

	result, err := s.Knowledge.ImportFacts(c.Request().Context(), userID, data, strategy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
