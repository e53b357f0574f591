package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/tutormind/ai/assemble"
)

// AssembleRequest previews prompt assembly for a chat payload. When
// userId is set, the user's fact profile summary is composed in as
// profile context (subject to the payload settings).
type AssembleRequest struct {
	UserID        int32                 `json:"userId"`
	AssistantName string                `json:"assistantName"`
	Payload       *assemble.ChatPayload `json:"payload"`
}

func (s *APIV1Service) AssemblePreview(c echo.Context) error {
	var req AssembleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if req.Payload == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload is required")
	}

	ctx := c.Request().Context()

	profileContext := ""
	if req.UserID != 0 && req.Payload.Settings.IncludeProfileContext {
		summary, err := s.Knowledge.ProfileSummary(ctx, req.UserID, 0)
		if err != nil {
			return httpError(err)
		}
		profileContext = summary
	}

	result, err := s.Assembler.Assemble(&assemble.Request{
		Payload:        req.Payload,
		AssistantName:  req.AssistantName,
		ProfileContext: profileContext,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
