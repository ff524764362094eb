package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecocoleta/ecocoleta-backend/internal/middleware"
	"github.com/ecocoleta/ecocoleta-backend/internal/model"
	"github.com/ecocoleta/ecocoleta-backend/internal/repository"
)

// AddressHandler exposes endpoints for pickup addresses.
type AddressHandler struct {
	Addresses *repository.AddressRepo
}

func NewAddressHandler(a *repository.AddressRepo) *AddressHandler {
	return &AddressHandler{Addresses: a}
}

type addressReq struct {
	Street    string `json:"street"`
	Number    string `json:"number"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type addressResp struct {
	ID        string `json:"id"`
	Street    string `json:"street"`
	Number    string `json:"number"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
}

// Register handles POST /v1/addresses and creates an address owned by
// the authenticated user.
func (h *AddressHandler) Register(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Street) == "" || strings.TrimSpace(req.City) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "street/city required"})
	}

	addr := &model.Address{
		UserID:    userID,
		Street:    strings.TrimSpace(req.Street),
		Number:    strings.TrimSpace(req.Number),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		Zipcode:   strings.TrimSpace(req.Zipcode),
		Latitude:  strings.TrimSpace(req.Latitude),
		Longitude: strings.TrimSpace(req.Longitude),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Addresses.Create(ctx, addr); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create address failed"})
	}
	return c.JSON(http.StatusCreated, toAddressResp(addr))
}

// List handles GET /v1/addresses and returns the authenticated user's addresses.
func (h *AddressHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Addresses.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]addressResp, 0, len(items))
	for _, a := range items {
		out = append(out, toAddressResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func toAddressResp(a *model.Address) addressResp {
	return addressResp{
		ID:        a.ID,
		Street:    a.Street,
		Number:    a.Number,
		City:      a.City,
		State:     a.State,
		Zipcode:   a.Zipcode,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
	}
}
