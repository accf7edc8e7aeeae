// Package directorytest serves the directory admin API over HTTP, backed by
// an in-memory directory.
package directorytest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/go-chi/chi/v5"

	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/models"
	"memberlink/pkg/platform/sentinel"
)

// NewHandler exposes dir through the admin routes the Client calls.
// Requests must carry serviceKey in the apikey header.
func NewHandler(dir *directory.InMemory, serviceKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(requireKey(serviceKey))
	r.Get("/auth/v1/admin/users", listUsers(dir))
	r.Post("/auth/v1/admin/users", createUser(dir))
	r.Put("/auth/v1/admin/users/{id}", updateUser(dir))
	r.Post("/auth/v1/admin/generate_link", generateLink(dir))
	return r
}

// NewServer starts an httptest server; callers must Close it.
func NewServer(dir *directory.InMemory, serviceKey string) *httptest.Server {
	return httptest.NewServer(NewHandler(dir, serviceKey))
}

func requireKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("apikey") != key || r.Header.Get("Authorization") != "Bearer "+key {
				writeError(w, http.StatusUnauthorized, "invalid JWT")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func listUsers(dir *directory.InMemory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := atoiDefault(r.URL.Query().Get("page"), 1)
		perPage := atoiDefault(r.URL.Query().Get("per_page"), 50)
		accounts, err := dir.ListAccounts(r.Context(), page, perPage)
		if err != nil {
			writeSentinel(w, err)
			return
		}
		resp := directory.ListResponse{Users: make([]directory.WireAccount, 0, len(accounts)), Aud: "authenticated"}
		for _, a := range accounts {
			resp.Users = append(resp.Users, directory.FromAccount(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createUser(dir *directory.InMemory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req directory.CreateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}
		acc, err := dir.CreateAccount(r.Context(), directory.CreateAccountParams{
			Email:        req.Email,
			EmailConfirm: req.EmailConfirm,
			UserMetadata: req.UserMetadata,
			AppMetadata:  req.AppMetadata,
		})
		if err != nil {
			writeSentinel(w, err)
			return
		}
		writeJSON(w, http.StatusOK, directory.FromAccount(*acc))
	}
}

func updateUser(dir *directory.InMemory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req directory.UpdateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}
		acc, err := dir.UpdateUserMetadata(r.Context(), chi.URLParam(r, "id"), req.UserMetadata)
		if err != nil {
			writeSentinel(w, err)
			return
		}
		writeJSON(w, http.StatusOK, directory.FromAccount(*acc))
	}
}

func generateLink(dir *directory.InMemory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req directory.GenerateLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}
		link, err := dir.GenerateLink(r.Context(), directory.GenerateLinkParams{
			Kind:       models.LinkKind(req.Type),
			Email:      req.Email,
			Data:       req.Data,
			RedirectTo: req.RedirectTo,
		})
		if err != nil {
			writeSentinel(w, err)
			return
		}
		writeJSON(w, http.StatusOK, directory.GenerateLinkResponse{
			WireAccount:      directory.FromAccount(link.Account),
			ActionLink:       link.URL,
			VerificationType: req.Type,
			RedirectTo:       req.RedirectTo,
		})
	}
}

func writeSentinel(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		writeJSON(w, http.StatusUnprocessableEntity, directory.WireError{
			Code: http.StatusUnprocessableEntity, ErrorCode: "email_exists", Msg: err.Error(),
		})
	case errors.Is(err, sentinel.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sentinel.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sentinel.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, directory.WireError{Code: status, Msg: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
