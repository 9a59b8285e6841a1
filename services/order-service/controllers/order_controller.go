package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/auth"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/httperr"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/order-service/services"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// GetOrders returns paginated orders for the authenticated user.
func (oc *OrderController) GetOrders(ctx *gin.Context) {
	clerkID, err := auth.GetClerkID(ctx)
	if err != nil {
		httperr.Respond(ctx, httperr.ErrUnauthorized)
		return
	}

	page, limit := parsePaginationParams(ctx)

	result, svcErr := oc.orderService.GetUserOrders(ctx.Request.Context(), clerkID, page, limit)
	if svcErr != nil {
		httperr.Respond(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetOrderByID returns a specific order owned by the authenticated user.
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	clerkID, err := auth.GetClerkID(ctx)
	if err != nil {
		httperr.Respond(ctx, httperr.ErrUnauthorized)
		return
	}

	orderUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		httperr.Respond(ctx, httperr.New(http.StatusBadRequest, "Invalid order ID format", err))
		return
	}

	order, svcErr := oc.orderService.GetOrderByID(ctx.Request.Context(), clerkID, orderUUID)
	if svcErr != nil {
		httperr.Respond(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// parsePaginationParams extracts and validates pagination parameters.
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}

	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}
