package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type IndexSourceRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func (s *APIV1Service) IndexSource(c echo.Context) error {
	if s.Retriever == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "source indexing requires AI configuration and the postgres driver")
	}

	var req IndexSourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	item, err := s.Retriever.Index(c.Request().Context(), req.ID, req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *APIV1Service) DeleteSource(c echo.Context) error {
	if s.Retriever == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "source indexing requires AI configuration and the postgres driver")
	}
	if err := s.Retriever.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchSources is best-effort: without a retriever it returns an
// empty list so chat flows degrade instead of failing.
func (s *APIV1Service) SearchSources(c echo.Context) error {
	if s.Retriever == nil {
		return c.JSON(http.StatusOK, []any{})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	items, err := s.Retriever.Retrieve(c.Request().Context(), c.QueryParam("query"), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}
