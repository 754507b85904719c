package repository

import (
	"context"
	"errors"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/query"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const likeEscape = ` ESCAPE '\'`

var itemSorter = query.Sorter{
	Fields: map[string]string{
		"id":          "di.id",
		"name":        "di.name",
		"category_id": "di.category_id",
		"data_type":   "di.data_type",
		"status":      "di.status",
		"created_at":  "di.created_at",
		"updated_at":  "di.updated_at",
	},
	Default: "id",
}

type ItemFilter struct {
	Search     string
	CategoryID int
	Status     string
}

func (r *Repository) itemsQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("data_items AS di").
		Joins("LEFT JOIN data_categories dc ON di.category_id = dc.id")
}

func (r *Repository) filteredItems(ctx context.Context, f ItemFilter) *gorm.DB {
	q := r.itemsQuery(ctx)
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where("(LOWER(di.name) LIKE ?"+likeEscape+" OR LOWER(di.content) LIKE ?"+likeEscape+")", like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("di.category_id = ?", f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("di.status = ?", f.Status)
	}
	return q
}

// ListItems returns one page of items plus the total matching the same filter.
func (r *Repository) ListItems(ctx context.Context, f ItemFilter, page query.Page, sort, order string) ([]ds.DataItem, int64, error) {
	var total int64
	if err := r.filteredItems(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := []ds.DataItem{}
	err := r.filteredItems(ctx, f).
		Select("di.*, dc.name AS category_name").
		Scopes(itemSorter.Scope(sort, order), page.Scope()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) GetItem(ctx context.Context, id int) (*ds.DataItem, error) {
	item := &ds.DataItem{}
	err := r.itemsQuery(ctx).
		Select("di.*, dc.name AS category_name").
		Where("di.id = ?", id).
		Take(item).Error
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *Repository) ensureCategory(ctx context.Context, id int) error {
	if _, err := r.GetCategory(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// CreateItem validates the category and returns the stored item with its category name.
func (r *Repository) CreateItem(ctx context.Context, item *ds.DataItem) (*ds.DataItem, error) {
	if err := r.ensureCategory(ctx, item.CategoryID); err != nil {
		return nil, err
	}
	if item.Status == "" {
		item.Status = ds.StatusActive
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(item).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetItem(ctx, item.ID)
}

func (r *Repository) UpdateItem(ctx context.Context, id int, upd *ds.DataItem) (*ds.DataItem, error) {
	if _, err := r.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := r.ensureCategory(ctx, upd.CategoryID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"name":        upd.Name,
		"category_id": upd.CategoryID,
		"content":     upd.Content,
		"data_type":   upd.DataType,
		"updated_by":  upd.UpdatedBy,
	}
	if upd.Status != "" {
		fields["status"] = upd.Status
	}
	if err := r.db.WithContext(ctx).Model(&ds.DataItem{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetItem(ctx, id)
}

// DeleteItem removes the row and, best effort, its attachment object.
func (r *Repository) DeleteItem(ctx context.Context, id int) error {
	item, err := r.GetItem(ctx, id)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&ds.DataItem{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if item.Attachment != "" {
		if err := r.removeObject(ctx, item.Attachment); err != nil {
			logrus.Warnf("error removing attachment %s of item %d: %v", item.Attachment, id, err)
		}
	}
	return nil
}
