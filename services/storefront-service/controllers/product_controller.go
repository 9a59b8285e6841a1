package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/repository"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/services"
)

type ProductController struct {
	products repository.ProductRepository
	cache    services.ProductCache
	logger   *zap.Logger
}

func NewProductController(products repository.ProductRepository, cache services.ProductCache, logger *zap.Logger) *ProductController {
	return &ProductController{
		products: products,
		cache:    cache,
		logger:   logger,
	}
}

// ListProducts returns the catalog, newest first, through the cache.
func (pc *ProductController) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if pc.cache != nil {
		if products, ok := pc.cache.Get(ctx); ok {
			c.JSON(http.StatusOK, gin.H{"products": products})
			return
		}
	}

	products, err := pc.products.List(ctx)
	if err != nil {
		pc.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	if pc.cache != nil {
		pc.cache.SetAsync(products)
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}
