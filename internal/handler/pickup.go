package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecocoleta/ecocoleta-backend/internal/middleware"
	"github.com/ecocoleta/ecocoleta-backend/internal/model"
	"github.com/ecocoleta/ecocoleta-backend/internal/queue"
	"github.com/ecocoleta/ecocoleta-backend/internal/repository"
	queue_publisher "github.com/ecocoleta/ecocoleta-backend/internal/service"
)

// PickupHandler exposes pickup request endpoints: producers schedule
// and cancel pickups, collectors and cooperatives move them through
// the status lifecycle.
type PickupHandler struct {
	Pickups   *repository.PickupRepo
	Addresses *repository.AddressRepo
	Materials *repository.MaterialRepo
}

func NewPickupHandler(p *repository.PickupRepo, a *repository.AddressRepo, m *repository.MaterialRepo) *PickupHandler {
	return &PickupHandler{Pickups: p, Addresses: a, Materials: m}
}

type pickupItemReq struct {
	MaterialID string  `json:"material_id"`
	WeightKg   float64 `json:"weight_kg"`
	Quantity   int     `json:"quantity"`
}

type pickupReq struct {
	AddressID     string          `json:"address_id"`
	ScheduledTime time.Time       `json:"scheduled_time"`
	Items         []pickupItemReq `json:"items"`
}

type pickupItemResp struct {
	ID         string  `json:"id"`
	MaterialID string  `json:"material_id"`
	WeightKg   float64 `json:"weight_kg"`
	Quantity   int     `json:"quantity"`
}

type pickupResp struct {
	ID            string           `json:"id"`
	AddressID     string           `json:"address_id"`
	ScheduledTime time.Time        `json:"scheduled_time"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	Items         []pickupItemResp `json:"items"`
}

// Create handles POST /v1/pickups.  The address must belong to the
// producer and every line item must reference a cataloged material.
// The request and its items are persisted atomically; afterwards a
// pickup.requested event is published best effort.
func (h *PickupHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req pickupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AddressID == "" || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address_id and items required"})
	}
	if req.ScheduledTime.IsZero() || req.ScheduledTime.Before(time.Now()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_time must be in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	addr, err := h.Addresses.GetByIDAndUser(ctx, req.AddressID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	items := make([]model.PickupRequestItem, 0, len(req.Items))
	materialIDs := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		if it.MaterialID == "" || it.Quantity < 1 || it.WeightKg < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item"})
		}
		if _, err := h.Materials.GetByID(ctx, it.MaterialID); err != nil {
			if errors.Is(err, repository.ErrMaterialNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown material"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		items = append(items, model.PickupRequestItem{
			MaterialID: it.MaterialID,
			WeightKg:   it.WeightKg,
			Quantity:   it.Quantity,
		})
		materialIDs = append(materialIDs, it.MaterialID)
	}

	p := &model.PickupRequest{
		ProducerID:    userID,
		AddressID:     req.AddressID,
		ScheduledTime: req.ScheduledTime.UTC(),
		Items:         items,
	}
	if err := h.Pickups.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create pickup failed"})
	}

	// Best effort: a broker outage must not fail the pickup.
	if err := queue_publisher.PublishPickupRequested(ctx, queue.PickupRequestedEvent{
		RequestID:     p.ID,
		ProducerID:    p.ProducerID,
		AddressID:     p.AddressID,
		City:          addr.City,
		ScheduledTime: p.ScheduledTime.Format(time.RFC3339),
		MaterialIDs:   materialIDs,
		RequestedAt:   time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("pickup: publish event failed: %v", err)
	}

	return c.JSON(http.StatusCreated, toPickupResp(p))
}

// ListMine handles GET /v1/pickups and returns the authenticated
// producer's pickup requests with their items.
func (h *PickupHandler) ListMine(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Pickups.ListByProducer(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]pickupResp, 0, len(items))
	for _, p := range items {
		out = append(out, toPickupResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles POST /v1/pickups/:id/status and moves a request
// through its lifecycle.  Cancellation is reserved to the owning
// producer; every forward transition requires a collector or
// cooperative role.  Invalid transitions answer 409.
func (h *PickupHandler) UpdateStatus(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	to := strings.ToUpper(strings.TrimSpace(req.Status))
	switch to {
	case model.StatusAccepted, model.StatusCollected, model.StatusDelivered, model.StatusCancelled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Pickups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPickupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	role, _ := c.Get("role").(string)
	if to == model.StatusCancelled {
		if p.ProducerID != userID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	} else if role != model.RoleCollector && role != model.RoleCooperative {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Pickups.UpdateStatus(ctx, id, to); err != nil {
		switch {
		case errors.Is(err, repository.ErrPickupNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": to})
}

func toPickupResp(p *model.PickupRequest) pickupResp {
	items := make([]pickupItemResp, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, pickupItemResp{
			ID:         it.ID,
			MaterialID: it.MaterialID,
			WeightKg:   it.WeightKg,
			Quantity:   it.Quantity,
		})
	}
	return pickupResp{
		ID:            p.ID,
		AddressID:     p.AddressID,
		ScheduledTime: p.ScheduledTime,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		Items:         items,
	}
}
