package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/secondserve/internal/config"
	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/http/middlewares"
	"github.com/geocoder89/secondserve/internal/observability"
	"github.com/gin-gonic/gin"
)

type DonationService interface {
	Create(ctx context.Context, donor user.User, req donation.CreateRequest) (donation.Donation, error)
	List(ctx context.Context, requester user.User, status *donation.Status) ([]donation.Donation, error)
	Get(ctx context.Context, id string) (donation.Donation, error)
}

type DonationsHandler struct {
	svc  DonationService
	prom *observability.Prom
}

func NewDonationsHandler(svc DonationService, prom *observability.Prom) *DonationsHandler {
	return &DonationsHandler{svc: svc, prom: prom}
}

func (h *DonationsHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req donation.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	d, err := h.svc.Create(cctx, u, req)
	if err != nil {
		h.prom.ObserveWorkflow("donation_created", workflowResult(err))
		respondServiceError(ctx, err, "Could not create donation")
		return
	}

	h.prom.ObserveWorkflow("donation_created", "ok")

	ctx.JSON(http.StatusOK, d)
}

func (h *DonationsHandler) List(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var status *donation.Status

	if raw := ctx.Query("status_filter"); raw != "" {
		st, err := donation.ParseStatus(raw)
		if err != nil {
			RespondBadRequest(ctx, "invalid status_filter", gin.H{"status_filter": raw})
			return
		}
		status = &st
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.svc.List(cctx, u, status)
	if err != nil {
		respondServiceError(ctx, err, "Could not list donations")
		return
	}

	ctx.JSON(http.StatusOK, orEmpty(items))
}

func (h *DonationsHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	d, err := h.svc.Get(cctx, id)
	if err != nil {
		respondServiceError(ctx, err, "Could not fetch donation")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, d)
}
