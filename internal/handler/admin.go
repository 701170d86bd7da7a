package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmtech/farm-market-api/internal/dto"
	"github.com/farmtech/farm-market-api/internal/service"
)

type AdminHandler struct {
	orderService *service.OrderService
}

func NewAdminHandler(orderService *service.OrderService) *AdminHandler {
	return &AdminHandler{orderService: orderService}
}

func (h *AdminHandler) Summary(c *gin.Context) {
	summary, err := h.orderService.Summary(c.Request.Context())
	if err != nil {
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	c.JSON(http.StatusOK, dto.SummaryResponse{
		TotalProducts:  summary.TotalProducts,
		TotalOrders:    summary.TotalOrders,
		OrdersByStatus: summary.OrdersByStatus,
		Revenue:        summary.Revenue,
	})
}
