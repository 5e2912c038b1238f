package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"britta/internal/domain"
	"britta/internal/port"
)

// HeaderCompanyID carries the active company for company-scoped routes.
const HeaderCompanyID = "X-Company-ID"

// CompanyGuard returns middleware that resolves the X-Company-ID header to a
// company owned by the authenticated user and stores it in the context.
// Requests for companies belonging to another user get 404, not 403, so the
// response does not confirm the company exists.
func CompanyGuard(companyRepo port.CompanyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "authentication required"},
			})
			return
		}

		header := c.GetHeader(HeaderCompanyID)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "COMPANY_REQUIRED", "message": "X-Company-ID header required"},
			})
			return
		}

		companyID, err := uuid.Parse(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "COMPANY_REQUIRED", "message": "X-Company-ID header must be a valid UUID"},
			})
			return
		}

		company, err := companyRepo.GetByID(c.Request.Context(), userID, companyID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"success": false,
					"error":   gin.H{"code": "NOT_FOUND", "message": "company not found"},
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "INTERNAL_ERROR", "message": "failed to resolve company"},
			})
			return
		}

		c.Set(ContextKeyCompany, company)
		c.Next()
	}
}

// GetCompany extracts the active company from the Gin context.
func GetCompany(c *gin.Context) (*domain.Company, error) {
	val, exists := c.Get(ContextKeyCompany)
	if !exists {
		return nil, domain.ErrUnauthorized
	}
	return val.(*domain.Company), nil
}
