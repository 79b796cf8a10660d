package handler

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/errfunnel/internal/errs"
	"github.com/deppfellow/errfunnel/internal/server"
	"github.com/deppfellow/errfunnel/internal/validation"
)

const (
	defaultEchoLimit = 20
	maxEchoLimit     = 100
)

// EchoHandler is a small in-memory resource under the API prefix. It exists
// so every failure shape (validation, cast, not found, internal) can be
// reached over HTTP.
type EchoHandler struct {
	Handler

	mu     sync.RWMutex
	echoes map[uuid.UUID]Echo
}

func NewEchoHandler(s *server.Server) *EchoHandler {
	return &EchoHandler{
		Handler: NewHandler(s),
		echoes:  make(map[uuid.UUID]Echo),
	}
}

// Echo is a stored message.
type Echo struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateEchoRequest struct {
	Message string `json:"message" validate:"required,max=280"`
}

func (r *CreateEchoRequest) Validate() error {
	return validation.Struct(r)
}

type GetEchoRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *GetEchoRequest) Validate() error {
	return validation.Struct(r)
}

type ListEchoesResponse struct {
	Items []Echo `json:"items"`
	Total int    `json:"total"`
}

// Create stores the message under a new id.
func (h *EchoHandler) Create(c echo.Context, req *CreateEchoRequest) (*Echo, error) {
	e := Echo{
		ID:        uuid.New(),
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}

	h.mu.Lock()
	h.echoes[e.ID] = e
	h.mu.Unlock()

	return &e, nil
}

// Get returns one echo. A malformed id is a cast failure, an unknown one a
// 404.
func (h *EchoHandler) Get(c echo.Context, req *GetEchoRequest) (*Echo, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, errs.NewCastError("id", req.ID, "uuid", err)
	}

	h.mu.RLock()
	e, ok := h.echoes[id]
	h.mu.RUnlock()

	if !ok {
		return nil, errs.NewNotFoundError("Echo not found", "ECHO_NOT_FOUND")
	}
	return &e, nil
}

// List returns the newest echoes first. ?limit must be an integer between 1
// and 100.
func (h *EchoHandler) List(c echo.Context) error {
	limit := defaultEchoLimit
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return validation.BindError(err)
	}
	if limit < 1 || limit > maxEchoLimit {
		return errs.NewBadRequestError("limit must be between 1 and 100", nil,
			[]errs.FieldError{{Field: "limit", Error: "must be between 1 and 100"}})
	}

	h.mu.RLock()
	items := make([]Echo, 0, len(h.echoes))
	for _, e := range h.echoes {
		items = append(items, e)
	}
	h.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := len(items)
	if len(items) > limit {
		items = items[:limit]
	}

	return c.JSON(http.StatusOK, ListEchoesResponse{Items: items, Total: total})
}

// Delete removes an echo.
func (h *EchoHandler) Delete(c echo.Context, req *GetEchoRequest) error {
	e, err := h.Get(c, req)
	if err != nil {
		return err
	}

	h.mu.Lock()
	delete(h.echoes, e.ID)
	h.mu.Unlock()

	return nil
}
