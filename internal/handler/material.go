package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ecocoleta/ecocoleta-backend/internal/config"
	"github.com/ecocoleta/ecocoleta-backend/internal/middleware"
	"github.com/ecocoleta/ecocoleta-backend/internal/model"
	"github.com/ecocoleta/ecocoleta-backend/internal/repository"
)

// MaterialHandler exposes the recyclable material catalog.  Creation is
// restricted to admins at the routing layer; listing is open to any
// authenticated user and sits behind the Redis response cache, which
// registration invalidates so new materials show up immediately.
type MaterialHandler struct {
	Materials *repository.MaterialRepo
	CacheCfg  config.CacheConfig
	Cache     *redis.Client
}

func NewMaterialHandler(m *repository.MaterialRepo, cacheCfg config.CacheConfig, rdb *redis.Client) *MaterialHandler {
	return &MaterialHandler{Materials: m, CacheCfg: cacheCfg, Cache: rdb}
}

type materialReq struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type materialResp struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Register handles POST /v1/materials.
func (h *MaterialHandler) Register(c echo.Context) error {
	var req materialReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type is required"})
	}

	m := &model.RecyclableMaterial{Type: typ, Description: strings.TrimSpace(req.Description)}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Materials.Create(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create material failed"})
	}

	// Registration and listing share the /v1/materials path, so the new
	// entry is visible on the next listing instead of after the TTL.
	middleware.InvalidateCache(ctx, h.CacheCfg, h.Cache, c.Path())

	return c.JSON(http.StatusCreated, materialResp{ID: m.ID, Type: m.Type, Description: m.Description})
}

// List handles GET /v1/materials.
func (h *MaterialHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Materials.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]materialResp, 0, len(items))
	for _, m := range items {
		out = append(out, materialResp{ID: m.ID, Type: m.Type, Description: m.Description})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
