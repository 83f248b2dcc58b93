package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/programme-lv/contest/auth"
	"github.com/programme-lv/contest/settings"
	"github.com/programme-lv/contest/timeline"
	"golang.org/x/sync/singleflight"
)

const settingsCacheKey = "admin_settings"

type SettingsHttpHandler struct {
	synchronizer *settings.Synchronizer
	now          func() time.Time

	cache   *cache.Cache
	sfGroup singleflight.Group
}

func NewSettingsHttpHandler(synchronizer *settings.Synchronizer, now func() time.Time) *SettingsHttpHandler {
	if now == nil {
		now = timeline.Clock
	}
	// Create a cache with 1 second default expiration and 1 minute cleanup interval
	c := cache.New(1*time.Second, 1*time.Minute)
	return &SettingsHttpHandler{
		synchronizer: synchronizer,
		now:          now,
		cache:        c,
	}
}

func (h *SettingsHttpHandler) RegisterRoutes(r *chi.Mux, jwtKey []byte) {
	r.Group(func(r chi.Router) {
		r.Use(auth.GetJwtAuthMiddleware(jwtKey))
		r.Use(auth.RequireScope(auth.ScopeAdmin))
		r.Get("/admin/settings", h.GetSettings)
		r.Post("/admin/settings/sync", h.SyncSettings)
		r.Put("/admin/settings/quota", h.UpdateQuota)
	})
}
