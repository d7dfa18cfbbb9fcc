package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/models"
)

// broadcastConcurrency bounds the parallel sends of one broadcast.
const broadcastConcurrency = 8

// UserDirectory exposes the chats the bot has seen.
type UserDirectory interface {
	Users() []models.BotUser
}

// Sender delivers one message synchronously, reporting the outcome.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type Admin struct {
	users  UserDirectory
	sender Sender
	apiKey string
	log    *logger.Logger
}

func NewAdmin(log *logger.Logger, apiKey string, users UserDirectory, sender Sender) *Admin {
	return &Admin{
		users:  users,
		sender: sender,
		apiKey: normalizeKey(apiKey),
		log:    log.With("component", "Admin"),
	}
}

// Router builds the admin HTTP surface. Everything under /admin requires the
// shared API key; the healthcheck does not.
func (a *Admin) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", a.handleHealthcheck)

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.requireAPIKey)
		r.Get("/users", a.handleUsers)
		r.Post("/broadcast", a.handleBroadcast)
	})

	return r
}

func (a *Admin) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *Admin) handleUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.users.Users())
}

func (a *Admin) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	delivered := a.broadcast(r.Context(), body.Text)
	writeJSON(w, http.StatusOK, map[string]int64{"delivered": delivered})
}

// broadcast fans the message out to every known chat with bounded
// concurrency. Individual failures are logged and skipped; the returned
// count covers successful sends only.
func (a *Admin) broadcast(ctx context.Context, text string) int64 {
	var delivered atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(broadcastConcurrency)
	for _, user := range a.users.Users() {
		chatID := user.ChatID
		g.Go(func() error {
			if err := a.sender.Send(ctx, chatID, text); err != nil {
				a.log.Warn("Broadcast send failed", "chat_id", chatID, "error", err)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return delivered.Load()
}

// requireAPIKey admits a request when the X-API-KEY header (or the ?key=
// query fallback) matches the configured key. Comparison ignores case and
// surrounding whitespace, as operators tend to paste keys with both.
func (a *Admin) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-KEY")
		if key == "" {
			key = r.URL.Query().Get("key")
		}
		if normalizeKey(key) != a.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "api key required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\n':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
