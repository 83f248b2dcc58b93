package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/programme-lv/contest/auth"
	"github.com/programme-lv/contest/subm"
)

// 10 MiB file as base64 plus the json envelope
const maxRequestBytes = 15 << 20

type SubmHttpHandler struct {
	submSrvc *subm.SubmSrvc
}

func NewSubmHttpHandler(submSrvc *subm.SubmSrvc) *SubmHttpHandler {
	return &SubmHttpHandler{submSrvc: submSrvc}
}

func (h *SubmHttpHandler) RegisterRoutes(r *chi.Mux, jwtKey []byte) {
	r.Group(func(r chi.Router) {
		r.Use(auth.GetJwtAuthMiddleware(jwtKey))
		r.Use(auth.RequireUser)
		r.Post("/submissions", h.PostSubm)
		r.Get("/submissions", h.ListSubms)
	})
}
