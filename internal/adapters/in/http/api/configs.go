package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/dto"
	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/in"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
)

// ConfigHandler serves the /api/configs routes.
type ConfigHandler struct {
	configs in.ConfigService
}

// NewConfigHandler creates a handler backed by configs.
func NewConfigHandler(configs in.ConfigService) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

func (h *ConfigHandler) register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/preview", h.preview)
	g.POST("/import", h.importCommand)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
	g.POST("/:id/duplicate", h.duplicate)
}

func (h *ConfigHandler) list(c echo.Context) error {
	q := domain.ListQuery{
		Search:   c.QueryParam("q"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}
	page, err := h.configs.List(c.Request().Context(), q)
	if err != nil {
		return sendError(c, err)
	}
	if page.Items == nil {
		page.Items = []domain.StoredConfig{}
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ConfigHandler) create(c echo.Context) error {
	raw, err := decodeRaw(c)
	if err != nil {
		return badBody(c, err)
	}
	rec, err := h.configs.Create(c.Request().Context(), raw)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewConfigResponse(rec))
}

func (h *ConfigHandler) preview(c echo.Context) error {
	raw, err := decodeRaw(c)
	if err != nil {
		return badBody(c, err)
	}
	p, err := h.configs.Preview(c.Request().Context(), raw)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ConfigHandler) importCommand(c echo.Context) error {
	var req dto.ImportRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badBody(c, err)
	}
	rec, err := h.configs.Import(c.Request().Context(), req.Command)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewConfigResponse(rec))
}

func (h *ConfigHandler) get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	rec, err := h.configs.Get(c.Request().Context(), id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *ConfigHandler) update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	raw, err := decodeRaw(c)
	if err != nil {
		return badBody(c, err)
	}
	rec, err := h.configs.Update(c.Request().Context(), id, raw)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewConfigResponse(rec))
}

func (h *ConfigHandler) remove(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	if err := h.configs.Delete(c.Request().Context(), id); err != nil {
		return sendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ConfigHandler) duplicate(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	rec, err := h.configs.Duplicate(c.Request().Context(), id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewConfigResponse(rec))
}

// decodeRaw reads the body as an untyped record. Numbers stay json.Number
// so the validator sees them unrounded.
func decodeRaw(c echo.Context) (any, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// badBody reports an unreadable body. Errors raised by the body limit
// are passed on to the error handler.
func badBody(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON body"})
}

func pathID(c echo.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
}

// queryInt returns 0 for a missing or malformed parameter, which the
// service replaces with its default.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}
