package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farmtech/farm-market-api/internal/dto"
	"github.com/farmtech/farm-market-api/internal/middleware"
	"github.com/farmtech/farm-market-api/internal/model"
	"github.com/farmtech/farm-market-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			respondErr(c, http.StatusBadRequest, kindValidation, "order has no items")
			return
		}
		if errors.Is(err, service.ErrOrderAccessDenied) {
			respondErr(c, http.StatusNotFound, kindNotFound, "user not found")
			return
		}
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, "invalid order ID")
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.OrderStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			respondErr(c, http.StatusBadRequest, kindValidation, "unknown order status")
		case errors.Is(err, service.ErrOrderNotFound):
			respondErr(c, http.StatusNotFound, kindNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidTransition):
			respondErr(c, http.StatusConflict, kindConflict, "illegal status transition")
		default:
			respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, "invalid order ID")
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondErr(c, http.StatusNotFound, kindNotFound, "order not found")
		case errors.Is(err, service.ErrOrderDelivered):
			respondErr(c, http.StatusConflict, kindConflict, "delivered order cannot be cancelled")
		default:
			respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	admin := middleware.GetUserRole(c) == "admin"

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, "invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID, userID, admin)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondErr(c, http.StatusNotFound, kindNotFound, "order not found")
			return
		}
		if errors.Is(err, service.ErrOrderAccessDenied) {
			respondErr(c, http.StatusForbidden, kindForbidden, "access denied")
			return
		}
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListByUserID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	c.JSON(http.StatusOK, toOrderListResponse(orders))
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	c.JSON(http.StatusOK, toOrderListResponse(orders))
}

func (h *OrderHandler) Latest(c *gin.Context) {
	order, err := h.orderService.Latest(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondErr(c, http.StatusNotFound, kindNotFound, "no orders yet")
			return
		}
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func toOrderListResponse(orders []model.Order) dto.OrderListResponse {
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}
	return dto.OrderListResponse{Orders: items, Total: len(items)}
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			Name:     item.Name,
			Category: item.Category,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return dto.OrderResponse{
		ID:              order.ID,
		OrderID:         order.OrderID,
		UserID:          order.UserID,
		Status:          order.Status,
		TotalAmount:     order.TotalAmount,
		Items:           items,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
