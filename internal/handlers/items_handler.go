package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/example/items-service/internal/items"
	"github.com/example/items-service/internal/validation"
)

// ItemStore is the storage surface the handlers depend on.
type ItemStore interface {
	List(ctx context.Context) ([]items.Item, error)
	Get(ctx context.Context, id string) (*items.Item, error)
	Create(ctx context.Context, fields items.ItemFields) (*items.Item, error)
	Replace(ctx context.Context, id string, fields items.ItemFields) (*items.Item, error)
	Delete(ctx context.Context, id string) error
}

// HandlerConfig groups dependencies for the items handler.
type HandlerConfig struct {
	Store ItemStore
}

// RegisterItemRoutes registers the items API under /api/items.
func RegisterItemRoutes(r *gin.Engine, cfg HandlerConfig) {
	h := &itemsHandler{store: cfg.Store, validate: validation.New()}

	api := r.Group("/api")
	api.GET("/items", h.list)
	api.GET("/items/:id", h.get)
	api.POST("/items", h.create)
	api.PUT("/items/:id", h.replace)
	api.DELETE("/items/:id", h.remove)
}

type itemsHandler struct {
	store    ItemStore
	validate *validatorv10.Validate
}

func (h *itemsHandler) list(c *gin.Context) {
	all, err := h.store.List(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if all == nil {
		all = []items.Item{}
	}
	c.JSON(http.StatusOK, all)
}

func (h *itemsHandler) get(c *gin.Context) {
	it, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *itemsHandler) create(c *gin.Context) {
	var req validation.CreateItemRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		// BindAndValidate already wrote a 400
		return
	}

	it, err := h.store.Create(c.Request.Context(), items.ItemFields{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (h *itemsHandler) replace(c *gin.Context) {
	var req validation.ReplaceItemRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	it, err := h.store.Replace(c.Request.Context(), c.Param("id"), items.ItemFields{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *itemsHandler) remove(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}

// writeStoreError maps storage errors onto the API contract: a missing
// item is a 404, anything else is a 500 carrying the storage message.
func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, items.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
