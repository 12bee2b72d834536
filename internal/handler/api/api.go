// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers of the catalog: services, extras,
// localized details, public view pages and the admin session endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/eventfx/internal/cache"
	"github.com/olegiv/eventfx/internal/middleware"
	"github.com/olegiv/eventfx/internal/scheduler"
	"github.com/olegiv/eventfx/internal/store"
	"github.com/olegiv/eventfx/internal/version"
	"github.com/olegiv/eventfx/internal/views"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// Error codes of API responses.
const (
	CodeBadRequest         = "bad_request"
	CodeValidation         = "validation_error"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInternal           = "internal_error"
)

// Deps holds the collaborators of the API handlers.
type Deps struct {
	Store        *store.Store
	Catalog      *cache.Catalog
	Sessions     *scs.SessionManager
	Login        *middleware.LoginProtection
	Views        *views.Registry
	CacheBackend string
	// PublicMaxAge is the Cache-Control max-age of anonymous GETs, in seconds.
	PublicMaxAge int
	// Jobs lists the scheduled maintenance jobs. Optional.
	Jobs JobLister
	// Build is reported by the health endpoint.
	Build version.Info
}

// JobLister reports scheduled jobs.
type JobLister interface {
	List() []scheduler.JobInfo
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store        *store.Store
	catalog      *cache.Catalog
	sessions     *scs.SessionManager
	login        *middleware.LoginProtection
	views        *views.Registry
	stripper     *bluemonday.Policy
	cacheBackend string
	publicMaxAge int
	jobs         JobLister
	build        version.Info
}

// NewHandler creates the API handler. Nil Login and Views get defaults.
func NewHandler(d Deps) *Handler {
	if d.Login == nil {
		d.Login = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	if d.Views == nil {
		d.Views = views.Default()
	}
	return &Handler{
		store:        d.Store,
		catalog:      d.Catalog,
		sessions:     d.Sessions,
		login:        d.Login,
		views:        d.Views,
		stripper:     bluemonday.StrictPolicy(),
		cacheBackend: d.CacheBackend,
		publicMaxAge: d.PublicMaxAge,
		jobs:         d.Jobs,
		build:        d.Build.OrDev(),
	}
}

// Routes returns the API router. Sessions are loaded and the admin resolved
// for every request; mutations require an admin.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.sessions.LoadAndSave)
	r.Use(middleware.LoadAdmin(h.sessions, h.store.Queries))

	public := middleware.PublicCache(h.publicMaxAge)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.With(h.login.Middleware()).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})

		r.Route("/services", func(r chi.Router) {
			r.With(public).Get("/", h.ListServices)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.CreateService)
				r.Put("/{id}", h.UpdateService)
				r.Delete("/{id}", h.DeleteService)
			})
		})

		r.Route("/extras", func(r chi.Router) {
			r.With(public).Get("/", h.ListExtras)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.CreateExtra)
				r.Put("/{id}", h.UpdateExtra)
				r.Delete("/{id}", h.DeleteExtra)
			})
		})

		r.Route("/details", func(r chi.Router) {
			r.With(public).Get("/", h.GetDetail)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.SaveDetail)
				r.Delete("/", h.DeleteDetail)
			})
		})

		r.Route("/views", func(r chi.Router) {
			r.Use(public)
			r.Get("/", h.ListViews)
			r.Get("/{viewId}", h.GetView)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/ping", h.Ping)
			r.Get("/events", h.ListEvents)
			r.Get("/cache", h.CacheStats)
			r.Get("/jobs", h.ListJobs)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			WriteNotFound(w, "not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			WriteError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
		})
	})

	return r
}

// okResponse is the body of mutations that return no entity.
type okResponse struct {
	OK bool `json:"ok"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteOK writes {"ok":true}.
func WriteOK(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// WriteError writes an {"error","code"} response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	middleware.WriteAPIError(w, statusCode, code, message)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeBadRequest, message)
}

// WriteValidationError writes a 400 response for invalid fields.
func WriteValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidation, message)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, message)
}

// decodeJSON reads a size-limited JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			WriteBadRequest(w, "request body is required")
		} else {
			WriteBadRequest(w, "invalid JSON body")
		}
		return false
	}
	return true
}

// parseIDParam parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// requireID parses {id} or writes a 400.
func requireID(w http.ResponseWriter, r *http.Request, entityName string) (int64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "invalid "+entityName+" id")
		return 0, false
	}
	return id, true
}

// writeStoreError maps store errors to responses. Unexpected errors are
// logged and reported without detail.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, entityName, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteNotFound(w, entityName+" not found")
	case errors.Is(err, store.ErrConflict):
		WriteConflict(w, "viewId already exists")
	default:
		slog.Error("catalog store failure",
			"category", "catalog",
			"op", op,
			"entity", entityName,
			"path", r.URL.Path,
			"error", err,
		)
		WriteInternalError(w, "failed to "+op+" "+entityName)
	}
}
