// internal/app/features/notifyapi/notifyapi.go

// Package notifyapi exposes the internal JSON endpoint through which
// trusted backend jobs (PDF generation, imports) report a request action
// so the portal can notify the affected users. Callers authenticate with
// a short-lived HS256 bearer token minted from the shared notify secret.
package notifyapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	requeststore "github.com/nibrashq/nibras/internal/app/store/requests"
	"github.com/nibrashq/nibras/internal/app/system/notify"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TokenTTL bounds how long a minted notify token stays valid.
const TokenTTL = 5 * time.Minute

// Handler serves the notify endpoint.
type Handler struct {
	Secret     []byte
	Requests   *requeststore.Store
	Dispatcher *notify.Dispatcher
	Log        *zap.Logger
}

// NewHandler constructs a notify API Handler.
func NewHandler(secret string, requests *requeststore.Store, dispatcher *notify.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		Secret:     []byte(secret),
		Requests:   requests,
		Dispatcher: dispatcher,
		Log:        logger,
	}
}

// Routes returns the notify API subrouter.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/internal-requests/notify", h.Notify)
	return r
}

// MintToken issues a bearer token a backend job can present to the
// notify endpoint.
func MintToken(secret string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    "nibras",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// verifyBearer checks the Authorization header carries a valid HS256
// token signed with the shared secret.
func (h *Handler) verifyBearer(r *http.Request) error {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return errors.New("missing bearer token")
	}
	_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return h.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer("nibras"))
	return err
}

// notifyPayload is the wire format backend jobs post. Field names match
// the upstream contract.
type notifyPayload struct {
	RequestID  string `json:"requestId"`
	ActionType string `json:"actionType"`
	ActorUID   string `json:"actorUid"`
	ActorRole  string `json:"actorRole"`
	TargetUID  string `json:"targetUid,omitempty"`
	TargetRole string `json:"targetRole,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Notify accepts one reported request action and fans out the matching
// notifications. Dispatch is best-effort; the endpoint acknowledges once
// the report is accepted, not once every recipient is written.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	if err := h.verifyBearer(r); err != nil {
		h.Log.Warn("notify api rejected", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var p notifyPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	id, err := primitive.ObjectIDFromHex(p.RequestID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid requestId"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requeststore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "request not found"})
			return
		}
		h.Log.Error("notify api load request failed", zap.String("request_id", p.RequestID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	action := models.RequestAction{
		At:         time.Now(),
		FromUID:    p.ActorUID,
		FromRole:   p.ActorRole,
		ToUID:      p.TargetUID,
		ToRole:     p.TargetRole,
		ActionType: models.RequestActionType(p.ActionType),
	}

	go h.Dispatcher.NotifyWorkflowTransition(r.Context(), req, action)

	writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}
