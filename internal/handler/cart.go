package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmtech/farm-market-api/internal/dto"
	"github.com/farmtech/farm-market-api/internal/middleware"
	"github.com/farmtech/farm-market-api/internal/service"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	items := make([]dto.CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, dto.CartItemResponse{
			ID: item.ID, Name: item.Name, Category: item.Category,
			Price: item.Price, Quantity: item.Quantity,
		})
	}
	c.JSON(http.StatusOK, dto.CartResponse{ID: cart.ID, Items: items})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	item, err := h.svc.AddItem(c.Request.Context(), middleware.GetUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondErr(c, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		if errors.Is(err, service.ErrOutOfStock) {
			respondErr(c, http.StatusConflict, kindConflict, "product out of stock")
			return
		}
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	c.JSON(http.StatusCreated, dto.CartItemResponse{
		ID: item.ID, Name: item.Name, Category: item.Category,
		Price: item.Price, Quantity: item.Quantity,
	})
}

// RemoveItem deletes all cart lines matching the item name.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		respondErr(c, http.StatusBadRequest, kindValidation, "item name required")
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), middleware.GetUserID(c), name); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			respondErr(c, http.StatusNotFound, kindNotFound, "cart item not found")
			return
		}
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	c.Status(http.StatusNoContent)
}
