package repository

import (
	"context"
	"testing"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()

	reports := &ds.DataCategory{Name: "Reports", Description: "monthly", CreatedBy: 1, UpdatedBy: 1}
	archive := &ds.DataCategory{Name: "Archive", CreatedBy: 1, UpdatedBy: 1}
	require.NoError(t, rep.CreateCategory(ctx, reports))
	require.NoError(t, rep.CreateCategory(ctx, archive))
	assert.Equal(t, ds.StatusActive, reports.Status)

	list, err := rep.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Archive", list[0].Name)
	assert.Equal(t, "Reports", list[1].Name)

	updated, err := rep.UpdateCategory(ctx, reports.ID, &ds.DataCategory{Name: "Reports 2", Description: "weekly", UpdatedBy: 2})
	require.NoError(t, err)
	assert.Equal(t, "Reports 2", updated.Name)
	assert.Equal(t, "weekly", updated.Description)
	assert.Equal(t, ds.StatusActive, updated.Status)
	assert.Equal(t, 2, updated.UpdatedBy)
	assert.Equal(t, 1, updated.CreatedBy)

	_, err = rep.UpdateCategory(ctx, 9999, &ds.DataCategory{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = rep.CreateItem(ctx, &ds.DataItem{Name: "q1", CategoryID: reports.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, rep.DeleteCategory(ctx, reports.ID), ErrCategoryInUse)
	require.NoError(t, rep.DeleteCategory(ctx, archive.ID))
	assert.ErrorIs(t, rep.DeleteCategory(ctx, archive.ID), ErrNotFound)
}

func seedItems(t *testing.T, rep *Repository) (*ds.DataCategory, *ds.DataCategory) {
	t.Helper()
	ctx := context.Background()
	sales := &ds.DataCategory{Name: "Sales"}
	hr := &ds.DataCategory{Name: "HR"}
	require.NoError(t, rep.CreateCategory(ctx, sales))
	require.NoError(t, rep.CreateCategory(ctx, hr))

	for _, it := range []ds.DataItem{
		{Name: "Quarterly report", CategoryID: sales.ID, Content: "Q1 revenue", DataType: "table"},
		{Name: "Annual plan", CategoryID: sales.ID, Content: "targets", DataType: "text", Status: ds.StatusInactive},
		{Name: "Headcount", CategoryID: hr.ID, Content: "REPORT of staff", DataType: "table"},
		{Name: "Bonus 100%", CategoryID: hr.ID, Content: "payout", DataType: "text"},
	} {
		it := it
		_, err := rep.CreateItem(ctx, &it)
		require.NoError(t, err)
	}
	return sales, hr
}

func TestListItems(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()
	sales, hr := seedItems(t, rep)

	items, total, err := rep.ListItems(ctx, ItemFilter{}, query.Page{Page: 1, Limit: 10}, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, items, 4)
	assert.Equal(t, "Quarterly report", items[0].Name)
	require.NotNil(t, items[0].CategoryName)
	assert.Equal(t, "Sales", *items[0].CategoryName)

	// поиск без учёта регистра по имени и содержимому
	items, total, err = rep.ListItems(ctx, ItemFilter{Search: "report"}, query.Page{Page: 1, Limit: 10}, "name", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Headcount", items[0].Name)
	assert.Equal(t, "Quarterly report", items[1].Name)

	items, total, err = rep.ListItems(ctx, ItemFilter{Search: "100%"}, query.Page{Page: 1, Limit: 10}, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Bonus 100%", items[0].Name)

	items, total, err = rep.ListItems(ctx, ItemFilter{CategoryID: sales.ID, Status: ds.StatusActive}, query.Page{Page: 1, Limit: 10}, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Quarterly report", items[0].Name)

	items, total, err = rep.ListItems(ctx, ItemFilter{CategoryID: hr.ID}, query.Page{Page: 1, Limit: 10}, "name", "DESC")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"Headcount", "Bonus 100%"}, []string{items[0].Name, items[1].Name})

	// вторая страница по одной записи, сортировка по имени
	items, total, err = rep.ListItems(ctx, ItemFilter{}, query.Page{Page: 2, Limit: 1}, "name", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Bonus 100%", items[0].Name)

	// неизвестное поле сортировки не попадает в SQL
	items, _, err = rep.ListItems(ctx, ItemFilter{}, query.Page{Page: 1, Limit: 10}, "name; DROP TABLE data_items", "asc")
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestItemCRUD(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()
	sales, hr := seedItems(t, rep)

	_, err := rep.CreateItem(ctx, &ds.DataItem{Name: "orphan", CategoryID: 9999})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	created, err := rep.CreateItem(ctx, &ds.DataItem{Name: "Forecast", CategoryID: sales.ID, Content: "2025", CreatedBy: 3, UpdatedBy: 3})
	require.NoError(t, err)
	assert.Equal(t, ds.StatusActive, created.Status)
	require.NotNil(t, created.CategoryName)
	assert.Equal(t, "Sales", *created.CategoryName)

	updated, err := rep.UpdateItem(ctx, created.ID, &ds.DataItem{Name: "Forecast v2", CategoryID: hr.ID, DataType: "chart", UpdatedBy: 4})
	require.NoError(t, err)
	assert.Equal(t, "Forecast v2", updated.Name)
	assert.Equal(t, hr.ID, updated.CategoryID)
	assert.Equal(t, "HR", *updated.CategoryName)
	assert.Equal(t, ds.StatusActive, updated.Status)
	assert.Equal(t, 4, updated.UpdatedBy)

	_, err = rep.UpdateItem(ctx, created.ID, &ds.DataItem{Name: "x", CategoryID: 9999})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	_, err = rep.UpdateItem(ctx, 9999, &ds.DataItem{Name: "x", CategoryID: hr.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := rep.CountItemsByCategory(ctx, hr.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, rep.DeleteItem(ctx, created.ID))
	_, err = rep.GetItem(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, rep.DeleteItem(ctx, created.ID), ErrNotFound)
}

func TestAttachments_Disabled(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()
	sales, _ := seedItems(t, rep)
	item, err := rep.CreateItem(ctx, &ds.DataItem{Name: "doc", CategoryID: sales.ID})
	require.NoError(t, err)

	_, err = rep.SetItemAttachment(ctx, item.ID, Upload{Filename: "a.pdf"})
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = rep.AttachmentURL(ctx, item.ID)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestAttachmentObjectName(t *testing.T) {
	name := AttachmentObjectName("Scan.PDF")
	assert.Regexp(t, `^items/[0-9a-f-]{36}\.pdf$`, name)
	assert.NotEqual(t, name, AttachmentObjectName("Scan.PDF"))
}
