package server

import (
	"net/http"

	merchantdomain "github.com/clearvia/payops/internal/merchant/domain"
	"github.com/clearvia/payops/pkg/db/option"
	"github.com/clearvia/payops/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) runSettlement(c *gin.Context) {
	if err := s.scheduler.RunOnce(c.Request.Context()); err != nil {
		s.log.Error("manual settlement run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement_run_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func (s *Server) listMerchants(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_pagination"})
		return
	}
	page = page.Normalize()

	merchants, err := s.merchants.Find(c.Request.Context(),
		&merchantdomain.Merchant{Active: true},
		option.OrderBy("id asc"),
		option.ApplyPagination(page),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"merchants": merchants,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

func (s *Server) listMerchantFees(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("account_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_account_id"})
		return
	}

	merchant, err := s.merchantRepo.FindByAccountID(c.Request.Context(), s.db, accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	if merchant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "merchant_not_found"})
		return
	}

	records, err := s.history.ListByMerchant(c.Request.Context(), s.db, merchant.ID, 200)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_applications": records})
}

func (s *Server) getShopSettings(c *gin.Context) {
	externalID, err := uuid.Parse(c.Param("external_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_shop_id"})
		return
	}

	accountID, err := uuid.Parse(c.Query("merchant_account_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_merchant_account_id"})
		return
	}

	merchant, err := s.merchantRepo.FindByAccountID(c.Request.Context(), s.db, accountID)
	if err != nil || merchant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "merchant_not_found"})
		return
	}

	shop, err := s.shopRepo.FindByExternalID(c.Request.Context(), s.db, externalID, merchant.ID)
	if err != nil || shop == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shop_not_found"})
		return
	}

	settings, err := s.shopRepo.FindSettings(c.Request.Context(), s.db, shop.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	if settings == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "settings_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
