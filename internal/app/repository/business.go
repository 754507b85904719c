package repository

import (
	"context"
	"time"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/query"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Значения для строк-заглушек, когда таблица business_data ещё пуста.
const (
	FallbackRegion = "province-wide"
	FallbackUnit   = "person-times"
)

var businessSorter = query.Sorter{
	Fields: map[string]string{
		"id":       "bd.id",
		"name":     "bs.name",
		"category": "bc.name",
		"region":   "r.name",
		"value":    "bd.value",
		"year":     "bd.year",
		"month":    "bd.month",
		"status":   "bs.status",
	},
	Default: "id",
}

type BusinessFilter struct {
	Search     string
	CategoryID int
	RegionID   int
	Year       int
	Month      int
	Status     string
}

func (r *Repository) ListBusinessCategories(ctx context.Context) ([]ds.BusinessCategory, error) {
	categories := []ds.BusinessCategory{}
	err := r.db.WithContext(ctx).Where("status = ?", ds.StatusActive).Order("name").Find(&categories).Error
	return categories, err
}

func (r *Repository) ListRegions(ctx context.Context) ([]ds.Region, error) {
	regions := []ds.Region{}
	err := r.db.WithContext(ctx).Where("status = ?", ds.StatusActive).Order("name").Find(&regions).Error
	return regions, err
}

func (r *Repository) servicesQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("business_services AS bs").
		Select("bs.id, bs.name, bc.name AS category, bs.description, bs.status").
		Joins("JOIN business_categories bc ON bs.category_id = bc.id").
		Order("bc.name, bs.name")
}

func (r *Repository) ListServices(ctx context.Context) ([]ds.ServiceRow, error) {
	rows := []ds.ServiceRow{}
	err := r.servicesQuery(ctx).Scan(&rows).Error
	return rows, err
}

func (r *Repository) filteredBusinessData(ctx context.Context, f BusinessFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("business_data AS bd").
		Joins("JOIN business_services bs ON bd.service_id = bs.id").
		Joins("JOIN business_categories bc ON bs.category_id = bc.id").
		Joins("JOIN regions r ON bd.region_id = r.id")

	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where("(LOWER(bs.name) LIKE ?"+likeEscape+" OR LOWER(bc.name) LIKE ?"+likeEscape+" OR LOWER(r.name) LIKE ?"+likeEscape+")",
			like, like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("bc.id = ?", f.CategoryID)
	}
	if f.RegionID != 0 {
		q = q.Where("r.id = ?", f.RegionID)
	}
	if f.Year != 0 {
		q = q.Where("bd.year = ?", f.Year)
	}
	if f.Month != 0 {
		q = q.Where("bd.month = ?", f.Month)
	}
	if f.Status != "" {
		q = q.Where("bs.status = ?", f.Status)
	}
	return q
}

// ListBusinessData returns one page of business data and the filtered total.
// While business_data is empty the first limit services are listed as zero-valued
// placeholder rows, whatever page was asked for.
func (r *Repository) ListBusinessData(ctx context.Context, f BusinessFilter, page query.Page, sort, order string) ([]ds.BusinessDataRow, int64, error) {
	var stored int64
	if err := r.db.WithContext(ctx).Model(&ds.BusinessData{}).Count(&stored).Error; err != nil {
		return nil, 0, err
	}
	if stored == 0 {
		logrus.Debug("business_data is empty, listing services instead")
		return r.servicePlaceholders(ctx, page.Limit)
	}

	var total int64
	if err := r.filteredBusinessData(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []ds.BusinessDataRow{}
	err := r.filteredBusinessData(ctx, f).
		Select("bd.id, bs.name, bc.name AS category, r.name AS region, bd.value, bd.unit, bd.year, bd.month, bs.status").
		Scopes(businessSorter.Scope(sort, order), page.Scope()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) servicePlaceholders(ctx context.Context, limit int) ([]ds.BusinessDataRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ds.BusinessService{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	services := []ds.ServiceRow{}
	if err := r.servicesQuery(ctx).Limit(limit).Scan(&services).Error; err != nil {
		return nil, 0, err
	}

	now := time.Now()
	rows := make([]ds.BusinessDataRow, 0, len(services))
	for _, s := range services {
		rows = append(rows, ds.BusinessDataRow{
			ID:       s.ID,
			Name:     s.Name,
			Category: s.Category,
			Region:   FallbackRegion,
			Value:    0,
			Unit:     FallbackUnit,
			Year:     now.Year(),
			Month:    int(now.Month()),
			Status:   s.Status,
		})
	}
	return rows, total, nil
}
