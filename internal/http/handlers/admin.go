package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/secondserve/internal/config"
	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/domain/stats"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type AdminDonationLister interface {
	ListAll(ctx context.Context, admin user.User) ([]donation.Donation, error)
}

type AdminOrderLister interface {
	ListAll(ctx context.Context, admin user.User) ([]order.Order, error)
}

type AdminStatsReader interface {
	Admin(ctx context.Context, admin user.User) (stats.Admin, error)
}

type AdminHandler struct {
	donations AdminDonationLister
	orders    AdminOrderLister
	stats     AdminStatsReader
}

func NewAdminHandler(donations AdminDonationLister, orders AdminOrderLister, stats AdminStatsReader) *AdminHandler {
	return &AdminHandler{donations: donations, orders: orders, stats: stats}
}

func (h *AdminHandler) ListDonations(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.donations.ListAll(cctx, u)
	if err != nil {
		respondServiceError(ctx, err, "Could not list donations")
		return
	}

	ctx.JSON(http.StatusOK, orEmpty(items))
}

func (h *AdminHandler) ListOrders(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.orders.ListAll(cctx, u)
	if err != nil {
		respondServiceError(ctx, err, "Could not list orders")
		return
	}

	ctx.JSON(http.StatusOK, orEmpty(items))
}

func (h *AdminHandler) Stats(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	s, err := h.stats.Admin(cctx, u)
	if err != nil {
		respondServiceError(ctx, err, "Could not compute admin stats")
		return
	}

	ctx.JSON(http.StatusOK, s)
}
