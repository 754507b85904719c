package repository

import (
	"context"
	"errors"
	"fmt"

	"dbmis/internal/app/ds"
)

func (r *Repository) ListCategories(ctx context.Context) ([]ds.DataCategory, error) {
	var categories []ds.DataCategory
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int) (*ds.DataCategory, error) {
	category := &ds.DataCategory{}
	if err := r.db.WithContext(ctx).First(category, id).Error; err != nil {
		return nil, translate(err)
	}
	return category, nil
}

// CreateCategory - создание категории
func (r *Repository) CreateCategory(ctx context.Context, category *ds.DataCategory) error {
	if category.Status == "" {
		category.Status = ds.StatusActive
	}
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

// UpdateCategory - обновление категории; пустой статус оставляет прежний
func (r *Repository) UpdateCategory(ctx context.Context, id int, upd *ds.DataCategory) (*ds.DataCategory, error) {
	if _, err := r.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"name":        upd.Name,
		"description": upd.Description,
		"updated_by":  upd.UpdatedBy,
	}
	if upd.Status != "" {
		fields["status"] = upd.Status
	}
	if err := r.db.WithContext(ctx).Model(&ds.DataCategory{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetCategory(ctx, id)
}

func (r *Repository) CountItemsByCategory(ctx context.Context, categoryID int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ds.DataItem{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

// DeleteCategory refuses to drop a category that still owns data items.
func (r *Repository) DeleteCategory(ctx context.Context, id int) error {
	n, err := r.CountItemsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category %d has %d item(s): %w", id, n, ErrCategoryInUse)
	}

	res := r.db.WithContext(ctx).Delete(&ds.DataCategory{}, id)
	if err := translate(res.Error); err != nil {
		if errors.Is(err, ErrReferenced) {
			return fmt.Errorf("%w: %w", ErrCategoryInUse, err)
		}
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
