package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmtech/farm-market-api/internal/dto"
	"github.com/farmtech/farm-market-api/internal/gateway"
	"github.com/farmtech/farm-market-api/internal/middleware"
	"github.com/farmtech/farm-market-api/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	resp, err := h.paymentService.Checkout(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			respondErr(c, http.StatusBadRequest, kindValidation, "amount must be positive")
		case errors.Is(err, service.ErrEmptyCart):
			respondErr(c, http.StatusBadRequest, kindValidation, "cart is empty")
		case errors.Is(err, gateway.ErrUnavailable):
			respondErr(c, http.StatusBadGateway, kindUpstream, "payment gateway unavailable, retry later")
		default:
			respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	order, err := h.paymentService.VerifyPayment(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			respondErr(c, http.StatusNotFound, kindNotFound, "payment not found")
		case errors.Is(err, service.ErrOrderAccessDenied):
			respondErr(c, http.StatusForbidden, kindForbidden, "access denied")
		case errors.Is(err, service.ErrInvalidSignature):
			respondErr(c, http.StatusUnauthorized, kindUnauthorized, "signature verification failed")
		case errors.Is(err, service.ErrAmountMismatch), errors.Is(err, service.ErrEmptyCart):
			respondErr(c, http.StatusBadRequest, kindValidation, err.Error())
		case errors.Is(err, service.ErrDuplicatePayment), errors.Is(err, service.ErrCaptureInProgress):
			respondErr(c, http.StatusConflict, kindConflict, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			respondErr(c, http.StatusNotFound, kindNotFound, "order not found")
		default:
			respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, dto.VerifyPaymentResponse{Success: true, Order: toOrderResponse(order)})
}
