// Package store は村・予測・現地業務データの永続化インターフェースを定義します。
package store

import (
	"context"
	"errors"

	"agrasar-api/pkg/models"
)

// ErrNotFound は指定されたレコードが存在しないことを表します。
var ErrNotFound = errors.New("record not found")

// VillageStore 村データの読み取り
type VillageStore interface {
	GetVillage(ctx context.Context, id string) (models.Village, error)
	ListVillages(ctx context.Context) ([]models.Village, error)
}

// ForecastStore 予測の追記専用ストア。更新・削除は提供しない。
type ForecastStore interface {
	// CreateForecast は新しい行を挿入し、IDと作成日時が埋められたレコードを返します。
	CreateForecast(ctx context.Context, f models.Forecast) (models.Forecast, error)
	GetForecast(ctx context.Context, id string) (models.Forecast, error)
	// ListForecasts は villageID が空なら全件、指定時はその村の予測を新しい順に返します。
	ListForecasts(ctx context.Context, villageID string) ([]models.Forecast, error)
}

// AssetStore 公共資産の読み取り
type AssetStore interface {
	// ListAssets は villageID が空なら全件を名前順に返します。
	ListAssets(ctx context.Context, villageID string) ([]models.Asset, error)
}

// WorkOrderStore 作業指示の読み取り
type WorkOrderStore interface {
	GetWorkOrder(ctx context.Context, id string) (models.WorkOrder, error)
	// ListWorkOrders は status が空なら全件、指定時はその状態のものを新しい順に返します。
	ListWorkOrders(ctx context.Context, status string) ([]models.WorkOrder, error)
}

// IncidentStore 不具合報告の追記と参照
type IncidentStore interface {
	// CreateIncident はIDが設定済みの報告を挿入し、作成日時を埋めて返します。
	CreateIncident(ctx context.Context, in models.Incident) (models.Incident, error)
	ListIncidents(ctx context.Context, villageID, status string) ([]models.Incident, error)
}

// JobApplicationStore 就労申請の追記と参照
type JobApplicationStore interface {
	CreateJobApplication(ctx context.Context, a models.JobApplication) (models.JobApplication, error)
	ListJobApplications(ctx context.Context, villageID string) ([]models.JobApplication, error)
}

// Pinger は接続確認が可能なストアです（ヘルスチェック用）。
type Pinger interface {
	Ping(ctx context.Context) error
}
