// Package webapp реализует HTTP API для Mini App:
// приём событий открытия и чтение сохранённых контекстов перевода.
package webapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/potokpay/potok-system/internal/deeplink"
	"github.com/potokpay/potok-system/internal/middleware"
	"github.com/potokpay/potok-system/internal/model"
	"github.com/potokpay/potok-system/internal/repository"
	"github.com/potokpay/potok-system/internal/token"
)

// SessionStore — контракт хранилища сессий перевода, используемый сервером.
type SessionStore interface {
	UpsertSession(ctx context.Context, transferID string, requesterID int64, contextJSON string) error
	GetSession(ctx context.Context, transferID string) (string, error)
}

// Server обрабатывает запросы Mini App.
type Server struct {
	store  SessionStore
	codec  *token.Codec
	logger *zap.Logger
}

// NewServer создаёт сервер Mini App API.
func NewServer(store SessionStore, codec *token.Codec, logger *zap.Logger) *Server {
	return &Server{
		store:  store,
		codec:  codec,
		logger: logger,
	}
}

// Router настраивает маршруты и middleware сервера.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(s.logger))

	r.Post("/api/webapp", s.HandleEvent)
	r.Get("/api/transfer/{transferID}", s.HandleGetTransfer)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}

type webAppEvent struct {
	TransferID string `json:"transfer_id"`
	Token      string `json:"token"`
}

// HandleEvent принимает событие открытия Mini App: проверяет подпись
// токена, сверяет короткий идентификатор и сохраняет контекст перевода.
// Ошибка БД не роняет обработку — событие подтверждается, запись
// догонит следующее открытие.
func (s *Server) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event webAppEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	payload, err := s.codec.Decode(event.Token)
	if err != nil {
		s.logger.Warn("reject webapp event", zap.Error(err), zap.String("transferID", event.TransferID))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// Публичный идентификатор обязан быть производным от токена.
	if token.ShortID(event.Token) != event.TransferID {
		s.logger.Warn("webapp event id mismatch", zap.String("transferID", event.TransferID))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	contextJSON, err := token.CanonicalJSON(payload)
	if err != nil {
		s.logger.Error("marshal webapp context", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := s.store.UpsertSession(r.Context(), event.TransferID, payload.RequesterID, string(contextJSON)); err != nil {
		s.logger.Warn("store webapp event",
			zap.Error(err),
			zap.String("transferID", event.TransferID),
		)
	}

	w.WriteHeader(http.StatusAccepted)
}

type transferResponse struct {
	TransferID  string                 `json:"transfer_id"`
	Context     *model.TransferPayload `json:"context"`
	Deeplink    string                 `json:"deeplink,omitempty"`
	FallbackURL string                 `json:"fallback_url,omitempty"`
}

// HandleGetTransfer возвращает сохранённый контекст перевода вместе
// со ссылками на приложение банка, если для банка настроен шаблон.
func (s *Server) HandleGetTransfer(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")

	contextJSON, err := s.store.GetSession(r.Context(), transferID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		s.logger.Error("get transfer session", zap.Error(err), zap.String("transferID", transferID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var payload model.TransferPayload
	if err := json.Unmarshal([]byte(contextJSON), &payload); err != nil {
		s.logger.Error("decode stored context", zap.Error(err), zap.String("transferID", transferID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := transferResponse{
		TransferID: transferID,
		Context:    &payload,
	}
	if link, ok := deeplink.Build(payload.Option); ok {
		resp.Deeplink = link.Deeplink
		resp.FallbackURL = link.FallbackURL
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}
