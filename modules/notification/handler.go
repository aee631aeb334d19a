package notification

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit/pkg/locker"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	domain "github.com/dmitrymomot/notifykit/pkg/notification"
)

// Service is the inbound boundary the handlers call. *domain.Service implements it.
type Service interface {
	Create(ctx context.Context, p domain.CreateParams) (domain.Notification, error)
	Get(ctx context.Context, id string) (domain.Notification, error)
	Update(ctx context.Context, id string, p domain.Patch) (domain.Notification, error)
	Dispatch(ctx context.Context, id string) (domain.Notification, error)
	Retry(ctx context.Context, id string) (domain.Notification, error)
	RetryFailed(ctx context.Context) ([]domain.Notification, error)
	ListFailed(ctx context.Context) ([]domain.Notification, error)
	Delete(ctx context.Context, id string) error
}

const defaultLockTTL = time.Minute

type Handler struct {
	svc     Service
	locker  locker.Locker
	lockTTL time.Duration
	logger  *slog.Logger
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithLocker replaces the in-process locker that serializes dispatches of one record.
// Use a shared locker (Redis) when more than one replica serves the API.
func WithLocker(l locker.Locker, ttl time.Duration) Option {
	return func(h *Handler) {
		if l != nil {
			h.locker = l
		}
		if ttl > 0 {
			h.lockTTL = ttl
		}
	}
}

func NewHandler(svc Service, opts ...Option) *Handler {
	h := &Handler{
		svc:     svc,
		locker:  locker.NewMemoryLocker(),
		lockTTL: defaultLockTTL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router exposes the notification endpoints. Mount it under /notifications.
//
//	r := chi.NewRouter()
//	r.Mount("/notifications", notification.NewHandler(svc).Router())
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.create)
	r.Get("/failed", h.listFailed)
	r.Post("/failed/retry", h.retryFailed)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		r.Delete("/", h.delete)
		r.Post("/dispatch", h.dispatch)
		r.Post("/retry", h.retry)
	})

	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	n, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, n)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	n, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dispatch holds a per-record lease for the whole send so two callers
// cannot deliver the same PENDING record twice.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	lease, err := h.locker.Acquire(ctx, "notification:"+id, h.lockTTL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			h.logger.WarnContext(ctx, "dispatch lock release failed",
				logger.Component("http"),
				logger.NotificationID(id),
				logger.Error(err),
			)
		}
	}()

	n, err := h.svc.Dispatch(ctx, id)
	if err != nil {
		h.failWithRecord(w, r, err, n)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (h *Handler) retry(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Retry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (h *Handler) listFailed(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListFailed(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, http.StatusOK, items)
}

// retryFailed re-arms in bulk. Partial failures still return the re-armed
// records, with the joined error message in meta.
func (h *Handler) retryFailed(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.RetryFailed(r.Context())
	if err != nil && len(items) == 0 {
		h.fail(w, r, err)
		return
	}

	resp := listResponse(items)
	if err != nil {
		h.logger.WarnContext(r.Context(), "bulk retry finished with errors",
			logger.Component("http"),
			logger.Count(len(items)),
			logger.Error(err),
		)
		resp.Meta["errors"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
