package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/secondserve/internal/apperr"
	"github.com/geocoder89/secondserve/internal/config"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/http/middlewares"
	"github.com/geocoder89/secondserve/internal/observability"
	"github.com/gin-gonic/gin"
)

type OrderService interface {
	Create(ctx context.Context, recipient user.User, req order.CreateRequest) (order.Order, error)
	List(ctx context.Context, requester user.User) ([]order.Order, error)
	ListAvailable(ctx context.Context, driver user.User) ([]order.Order, error)
	Assign(ctx context.Context, driver user.User, orderID string) error
	UpdateStatus(ctx context.Context, orderID, newStatus string) error
}

type OrdersHandler struct {
	svc  OrderService
	prom *observability.Prom
}

func NewOrdersHandler(svc OrderService, prom *observability.Prom) *OrdersHandler {
	return &OrdersHandler{svc: svc, prom: prom}
}

func (h *OrdersHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req order.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the claim and the insert share one transaction
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	o, err := h.svc.Create(cctx, u, req)
	if err != nil {
		h.prom.ObserveWorkflow("order_created", workflowResult(err))
		respondServiceError(ctx, err, "Could not create order")
		return
	}

	h.prom.ObserveWorkflow("order_created", "ok")

	ctx.JSON(http.StatusOK, o)
}

func (h *OrdersHandler) List(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.svc.List(cctx, u)
	if err != nil {
		respondServiceError(ctx, err, "Could not list orders")
		return
	}

	ctx.JSON(http.StatusOK, orEmpty(items))
}

func (h *OrdersHandler) ListAvailable(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.svc.ListAvailable(cctx, u)
	if err != nil {
		respondServiceError(ctx, err, "Could not list available orders")
		return
	}

	ctx.JSON(http.StatusOK, orEmpty(items))
}

func (h *OrdersHandler) Assign(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	orderID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.svc.Assign(cctx, u, orderID); err != nil {
		h.prom.ObserveWorkflow("order_assigned", workflowResult(err))
		respondServiceError(ctx, err, "Could not assign order")
		return
	}

	h.prom.ObserveWorkflow("order_assigned", "ok")

	ctx.JSON(http.StatusOK, gin.H{"message": "Order assigned successfully"})
}

// UpdateStatus takes the target status from ?new_status= or, failing that,
// from a {"status": ...} body.
func (h *OrdersHandler) UpdateStatus(ctx *gin.Context) {
	orderID := ctx.Param("id")

	newStatus := ctx.Query("new_status")
	if newStatus == "" {
		var req order.UpdateStatusRequest
		if !BindJSON(ctx, &req) {
			return
		}
		newStatus = req.Status
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.UpdateStatus(cctx, orderID, newStatus); err != nil {
		h.prom.ObserveWorkflow("order_status", workflowResult(err))
		respondServiceError(ctx, err, "Could not update order status")
		return
	}

	h.prom.ObserveWorkflow("order_status", "ok")

	ctx.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
}

func workflowResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrInvalidState),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrForbidden),
		errors.Is(err, apperr.ErrConflict):
		return "rejected"
	default:
		return "error"
	}
}
