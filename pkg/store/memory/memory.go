// Package memory はプロセス内メモリに保持するストア実装です。
// ローカル開発（DATABASE_URL 未設定時）とテストで使用します。
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/store"
)

// Store は store パッケージの全インターフェースを兼ねるメモリ実装です。
type Store struct {
	mu           sync.RWMutex
	villages     map[string]models.Village
	forecasts    []models.Forecast
	assets       map[string]models.Asset
	workOrders   []models.WorkOrder
	incidents    []models.Incident
	applications []models.JobApplication
	now          func() time.Time
}

var (
	_ store.VillageStore        = (*Store)(nil)
	_ store.ForecastStore       = (*Store)(nil)
	_ store.AssetStore          = (*Store)(nil)
	_ store.WorkOrderStore      = (*Store)(nil)
	_ store.IncidentStore       = (*Store)(nil)
	_ store.JobApplicationStore = (*Store)(nil)
	_ store.Pinger              = (*Store)(nil)
)

// New は与えられた村データで初期化したストアを返します。
func New(villages ...models.Village) *Store {
	s := &Store{
		villages: make(map[string]models.Village, len(villages)),
		assets:   make(map[string]models.Asset),
		now:      time.Now,
	}
	for _, v := range villages {
		s.villages[v.ID] = v
	}
	return s
}

// PutVillage は村データを追加または置き換えます。
func (s *Store) PutVillage(v models.Village) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.villages[v.ID] = v
}

func (s *Store) GetVillage(_ context.Context, id string) (models.Village, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.villages[id]
	if !ok {
		return models.Village{}, store.ErrNotFound
	}
	return v, nil
}

func (s *Store) ListVillages(_ context.Context) ([]models.Village, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Village, 0, len(s.villages))
	for _, v := range s.villages {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateForecast(_ context.Context, f models.Forecast) (models.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = uuid.New().String()
	f.CreatedAt = s.now().UTC()
	f = cloneForecast(f)
	s.forecasts = append(s.forecasts, f)
	return cloneForecast(f), nil
}

func (s *Store) GetForecast(_ context.Context, id string) (models.Forecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.forecasts {
		if f.ID == id {
			return cloneForecast(f), nil
		}
	}
	return models.Forecast{}, store.ErrNotFound
}

func (s *Store) ListForecasts(_ context.Context, villageID string) ([]models.Forecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Forecast, 0, len(s.forecasts))
	// 新しい順
	for i := len(s.forecasts) - 1; i >= 0; i-- {
		if villageID == "" || s.forecasts[i].VillageID == villageID {
			out = append(out, cloneForecast(s.forecasts[i]))
		}
	}
	return out, nil
}

// PutAsset は資産データを追加または置き換えます。
func (s *Store) PutAsset(a models.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID] = a
}

func (s *Store) ListAssets(_ context.Context, villageID string) ([]models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		if villageID == "" || a.VillageID == villageID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutWorkOrder は作業指示を追加または置き換えます。作成日時が空なら現在時刻を入れます。
func (s *Store) PutWorkOrder(w models.WorkOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now().UTC()
	}
	for i := range s.workOrders {
		if s.workOrders[i].ID == w.ID {
			s.workOrders[i] = w
			return
		}
	}
	s.workOrders = append(s.workOrders, w)
}

func (s *Store) GetWorkOrder(_ context.Context, id string) (models.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.workOrders {
		if w.ID == id {
			return w, nil
		}
	}
	return models.WorkOrder{}, store.ErrNotFound
}

func (s *Store) ListWorkOrders(_ context.Context, status string) ([]models.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WorkOrder, 0, len(s.workOrders))
	for _, w := range s.workOrders {
		if status == "" || w.Status == status {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateIncident(_ context.Context, in models.Incident) (models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.CreatedAt = s.now().UTC()
	s.incidents = append(s.incidents, in)
	return in, nil
}

func (s *Store) ListIncidents(_ context.Context, villageID, status string) ([]models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Incident, 0, len(s.incidents))
	for i := len(s.incidents) - 1; i >= 0; i-- {
		in := s.incidents[i]
		if (villageID == "" || in.VillageID == villageID) && (status == "" || in.Status == status) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *Store) CreateJobApplication(_ context.Context, a models.JobApplication) (models.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.CreatedAt = s.now().UTC()
	s.applications = append(s.applications, cloneApplication(a))
	return cloneApplication(a), nil
}

func (s *Store) ListJobApplications(_ context.Context, villageID string) ([]models.JobApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.JobApplication, 0, len(s.applications))
	for i := len(s.applications) - 1; i >= 0; i-- {
		if villageID == "" || s.applications[i].VillageID == villageID {
			out = append(out, cloneApplication(s.applications[i]))
		}
	}
	return out, nil
}

// cloneForecast は保存値と呼び出し側でスライスを共有しないようにコピーします。
func cloneForecast(f models.Forecast) models.Forecast {
	if f.RecommendedWorkTypes != nil {
		f.RecommendedWorkTypes = append(make([]string, 0, len(f.RecommendedWorkTypes)), f.RecommendedWorkTypes...)
	}
	return f
}

func cloneApplication(a models.JobApplication) models.JobApplication {
	if a.ApplicantAge != nil {
		age := *a.ApplicantAge
		a.ApplicantAge = &age
	}
	return a
}

// Ping は常に成功します。
func (s *Store) Ping(context.Context) error { return nil }
