package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/investor-portal/internal/cache"
	"github.com/iliyamo/investor-portal/internal/config"
	"github.com/iliyamo/investor-portal/internal/model"
)

// PropertyHandler serves the catalog. The available listing is read-mostly
// and goes through the cache-aside layer; the admin create path invalidates
// every key its write can affect before reporting success.
type PropertyHandler struct {
	Properties PropertyStore
	Cache      cache.Store
	CacheCfg   config.CacheConfig
}

func NewPropertyHandler(props PropertyStore, cs cache.Store, cc config.CacheConfig) *PropertyHandler {
	return &PropertyHandler{Properties: props, Cache: cs, CacheCfg: cc}
}

type createPropertyReq struct {
	Title      string `json:"title"`
	City       string `json:"city"`
	PriceCents uint64 `json:"priceCents"`
	Available  bool   `json:"available"`
}

// Available lists properties open to investors, cache first.
func (h *PropertyHandler) Available(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var props []model.Property
	if h.Cache.Get(ctx, cache.AvailableProperties, &props) {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.JSON(http.StatusOK, echo.Map{"properties": props})
	}

	props, err := h.Properties.ListAvailable(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if props == nil {
		props = []model.Property{}
	}
	h.Cache.Set(ctx, cache.AvailableProperties, props, h.CacheCfg.PropertiesTTL)

	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSON(http.StatusOK, echo.Map{"properties": props})
}

// Create adds a listing and drops the cached views it affects.
func (h *PropertyHandler) Create(c echo.Context) error {
	var req createPropertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.City = strings.TrimSpace(req.City)
	if req.Title == "" || req.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and city are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.Property{Title: req.Title, City: req.City, PriceCents: req.PriceCents, Available: req.Available}
	if err := h.Properties.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create property failed"})
	}

	h.Cache.Invalidate(ctx, cache.AvailableProperties, cache.AdminOverview)

	return c.JSON(http.StatusCreated, echo.Map{"property": p})
}
