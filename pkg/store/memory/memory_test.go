package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/store"
)

func TestVillages(t *testing.T) {
	s := New(
		models.Village{ID: "V2", Name: "Khati"},
		models.Village{ID: "V1", Name: "Dhanaulti"},
	)
	ctx := context.Background()

	v, err := s.GetVillage(ctx, "V2")
	require.NoError(t, err)
	assert.Equal(t, "Khati", v.Name)

	_, err = s.GetVillage(ctx, "V9")
	assert.ErrorIs(t, err, store.ErrNotFound)

	s.PutVillage(models.Village{ID: "V3", Name: "Almora"})
	list, err := s.ListVillages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Almora", "Dhanaulti", "Khati"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestForecasts(t *testing.T) {
	s := New()
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	s.now = func() time.Time { return now }
	ctx := context.Background()

	types := []string{"road repair"}
	first, err := s.CreateForecast(ctx, models.Forecast{VillageID: "V1", RecommendedWorkTypes: types})
	require.NoError(t, err)
	second, err := s.CreateForecast(ctx, models.Forecast{VillageID: "V2"})
	require.NoError(t, err)
	third, err := s.CreateForecast(ctx, models.Forecast{VillageID: "V1"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, time.UTC, first.CreatedAt.Location())
	assert.True(t, first.CreatedAt.Equal(now))

	// 呼び出し側のスライスを変更しても保存値は変わらない
	types[0] = "changed"
	got, err := s.GetForecast(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"road repair"}, got.RecommendedWorkTypes)

	v1, err := s.ListForecasts(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, v1, 2)
	assert.Equal(t, third.ID, v1[0].ID)
	assert.Equal(t, first.ID, v1[1].ID)

	all, err := s.ListForecasts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	// 返り値のスライスを変更しても保存値は変わらない
	first.RecommendedWorkTypes[0] = "mutated"
	got.RecommendedWorkTypes[0] = "mutated"
	v1[1].RecommendedWorkTypes[0] = "mutated"
	got, err = s.GetForecast(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"road repair"}, got.RecommendedWorkTypes)

	_, err = s.GetForecast(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, s.Ping(ctx))
}

func TestFieldRecords(t *testing.T) {
	s := New(models.Village{ID: "V1", Name: "Rampur"})
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.PutAsset(models.Asset{ID: "A2", VillageID: "V1", Name: "Well", Condition: "Fair"})
	s.PutAsset(models.Asset{ID: "A1", VillageID: "V2", Name: "Road", Condition: "Poor"})
	assets, err := s.ListAssets(ctx, "")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "Road", assets[0].Name)
	assets, err = s.ListAssets(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, assets, 1)

	s.PutWorkOrder(models.WorkOrder{ID: "WO1", Title: "Road", Status: "Open", CreatedAt: now.Add(-time.Hour)})
	s.PutWorkOrder(models.WorkOrder{ID: "WO2", Title: "Pond", Status: "Completed"})
	s.PutWorkOrder(models.WorkOrder{ID: "WO1", Title: "Road repair", Status: "Open", CreatedAt: now.Add(-time.Hour)})
	orders, err := s.ListWorkOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "WO2", orders[0].ID)
	open, err := s.ListWorkOrders(ctx, "Open")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Road repair", open[0].Title)
	_, err = s.GetWorkOrder(ctx, "WO9")
	assert.ErrorIs(t, err, store.ErrNotFound)

	first, err := s.CreateIncident(ctx, models.Incident{ID: "INC-1", VillageID: "V1", Status: "Received"})
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(now))
	_, err = s.CreateIncident(ctx, models.Incident{ID: "INC-2", VillageID: "V2", Status: "Resolved"})
	require.NoError(t, err)
	incidents, err := s.ListIncidents(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, "INC-2", incidents[0].ID)
	incidents, err = s.ListIncidents(ctx, "V1", "Received")
	require.NoError(t, err)
	require.Len(t, incidents, 1)

	age := 30
	created, err := s.CreateJobApplication(ctx, models.JobApplication{ID: "JA-1", VillageID: "V1", ApplicantAge: &age})
	require.NoError(t, err)
	// 呼び出し側の値や返り値を変更しても保存値は変わらない
	age = 99
	*created.ApplicantAge = 98
	apps, err := s.ListJobApplications(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, 30, *apps[0].ApplicantAge)
}
