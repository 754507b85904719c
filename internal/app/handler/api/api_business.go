package api

import (
	"net/http"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/handler/middleware"
	"dbmis/internal/app/query"
	"dbmis/internal/app/repository"

	"github.com/gin-gonic/gin"
)

// BusinessHandler serves the read-only business catalogue and statistics.
type BusinessHandler struct {
	Repository *repository.Repository
}

// @Summary Business categories
// @Description Active categories ordered by name
// @Tags business
// @Produce json
// @Success 200 {array} ds.BusinessCategory
// @Router /api/business/categories [get]
func (h *BusinessHandler) GetCategoriesAPI(c *gin.Context) {
	categories, err := h.Repository.ListBusinessCategories(c.Request.Context())
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondData(c, http.StatusOK, categories)
}

// @Summary Regions
// @Tags business
// @Produce json
// @Success 200 {array} ds.Region
// @Router /api/business/regions [get]
func (h *BusinessHandler) GetRegionsAPI(c *gin.Context) {
	regions, err := h.Repository.ListRegions(c.Request.Context())
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondData(c, http.StatusOK, regions)
}

// @Summary Business services
// @Tags business
// @Produce json
// @Success 200 {array} ds.ServiceRow
// @Router /api/business/services [get]
func (h *BusinessHandler) GetServicesAPI(c *gin.Context) {
	services, err := h.Repository.ListServices(c.Request.Context())
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondData(c, http.StatusOK, services)
}

// GetBusinessDataAPI - GET /api/business/data
// Ошибки запроса не отдаются клиенту: пишем в лог и возвращаем пустую страницу.
//
// @Summary Business data
// @Tags business
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size, max 100" default(10)
// @Param sort query string false "id, name, category, region, value, year, month, status"
// @Param order query string false "asc or desc"
// @Param search query string false "Service, category or region name"
// @Param category_id query int false "Business category ID"
// @Param region_id query int false "Region ID"
// @Param year query int false "Year"
// @Param month query int false "Month"
// @Param status query string false "Service status"
// @Success 200 {object} object "status, data, pagination"
// @Router /api/business/data [get]
func (h *BusinessHandler) GetBusinessDataAPI(c *gin.Context) {
	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	filter := repository.BusinessFilter{
		Search:     c.Query("search"),
		CategoryID: queryInt(c, "category_id"),
		RegionID:   queryInt(c, "region_id"),
		Year:       queryInt(c, "year"),
		Month:      queryInt(c, "month"),
		Status:     c.Query("status"),
	}

	rows, total, err := h.Repository.ListBusinessData(c.Request.Context(), filter, page, c.Query("sort"), c.Query("order"))
	if err != nil {
		middleware.Logger(c).Errorf("error listing business data: %v", err)
		respondPage(c, []ds.BusinessDataRow{}, page, 0)
		return
	}
	respondPage(c, rows, page, total)
}
