package repository

import (
	"context"
	"testing"
	"time"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/query"
	"dbmis/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessCatalogue(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()
	testutil.SeedBusiness(t, rep.DB())

	cats, err := rep.ListBusinessCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Health", cats[0].Name)
	assert.Equal(t, "Transport", cats[1].Name)

	regions, err := rep.ListRegions(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "North", regions[0].Name)

	services, err := rep.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 3)
	assert.Equal(t, ds.ServiceRow{ID: services[0].ID, Name: "Checkups", Category: "Health", Status: ds.StatusInactive}, services[0])
	assert.Equal(t, "Vaccination", services[1].Name)
	assert.Equal(t, "Bus passes", services[2].Name)
	assert.Equal(t, "Transport", services[2].Category)
}

func TestListBusinessData_FallsBackToServices(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()
	testutil.SeedBusiness(t, rep.DB())

	rows, total, err := rep.ListBusinessData(ctx, BusinessFilter{}, query.Page{Page: 1, Limit: 2}, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)

	now := time.Now()
	for _, row := range rows {
		assert.Equal(t, FallbackRegion, row.Region)
		assert.Equal(t, FallbackUnit, row.Unit)
		assert.Zero(t, row.Value)
		assert.Equal(t, now.Year(), row.Year)
		assert.Equal(t, int(now.Month()), row.Month)
	}
	assert.Equal(t, "Checkups", rows[0].Name)

	// номер страницы на заглушки не влияет
	rows, total, err = rep.ListBusinessData(ctx, BusinessFilter{}, query.Page{Page: 2, Limit: 2}, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Checkups", rows[0].Name)
	assert.Equal(t, "Vaccination", rows[1].Name)
}

func TestListBusinessData_Filters(t *testing.T) {
	rep, _ := newTestRepository(t)
	ctx := context.Background()
	cats, services, regions := testutil.SeedBusiness(t, rep.DB())

	for _, d := range []ds.BusinessData{
		{ServiceID: services["Vaccination"].ID, RegionID: regions["North"].ID, Value: 120, Unit: "doses", Year: 2024, Month: 1},
		{ServiceID: services["Vaccination"].ID, RegionID: regions["South"].ID, Value: 80, Unit: "doses", Year: 2024, Month: 2},
		{ServiceID: services["Checkups"].ID, RegionID: regions["North"].ID, Value: 40, Unit: "visits", Year: 2023, Month: 12},
		{ServiceID: services["Bus passes"].ID, RegionID: regions["South"].ID, Value: 300, Unit: "passes", Year: 2024, Month: 1},
	} {
		d := d
		require.NoError(t, rep.DB().Omit("Service", "Region").Create(&d).Error)
	}
	page := query.Page{Page: 1, Limit: 10}

	rows, total, err := rep.ListBusinessData(ctx, BusinessFilter{}, page, "value", "desc")
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, rows, 4)
	assert.Equal(t, ds.BusinessDataRow{
		ID: rows[0].ID, Name: "Bus passes", Category: "Transport", Region: "South",
		Value: 300, Unit: "passes", Year: 2024, Month: 1, Status: ds.StatusActive,
	}, rows[0])
	assert.Equal(t, 40.0, rows[3].Value)

	// поиск по названию региона
	_, total, err = rep.ListBusinessData(ctx, BusinessFilter{Search: "nort"}, page, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	rows, total, err = rep.ListBusinessData(ctx, BusinessFilter{CategoryID: cats["Health"].ID, Year: 2024}, page, "region", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"North", "South"}, []string{rows[0].Region, rows[1].Region})

	rows, total, err = rep.ListBusinessData(ctx, BusinessFilter{RegionID: regions["South"].ID, Month: 1}, page, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Bus passes", rows[0].Name)

	rows, total, err = rep.ListBusinessData(ctx, BusinessFilter{Status: ds.StatusInactive}, page, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Checkups", rows[0].Name)

	rows, total, err = rep.ListBusinessData(ctx, BusinessFilter{}, query.Page{Page: 2, Limit: 3}, "id", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, rows, 1)
	assert.Equal(t, 300.0, rows[0].Value)
}
