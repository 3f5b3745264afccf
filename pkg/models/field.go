package models

import "time"

// 状態・区分の値（市民ポータルと行政ポータルで共通）
const (
	IncidentStatusReceived = "Received"
	JobApplicationPending  = "Pending"
	WorkOrderStatusOpen    = "Open"
	AssetConditionPoor     = "Poor"
	SeverityMedium         = "Medium"
)

// IncidentSeverities は不具合報告で受け付ける深刻度です。
var IncidentSeverities = []string{"Low", SeverityMedium, "High"}

// Asset 村の公共資産（道路、井戸、池など）
type Asset struct {
	ID             string  `json:"id"`
	VillageID      string  `json:"village_id,omitempty"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Condition      string  `json:"condition"`
	LastInspection *Date   `json:"last_inspection,omitempty"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
}

// WorkOrder MGNREGAの作業指示。Open のものに市民が応募できる。
type WorkOrder struct {
	ID              string    `json:"id"`
	VillageID       string    `json:"village_id,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Status          string    `json:"status"`
	WorkersNeeded   int       `json:"workers_needed"`
	EstimatedBudget float64   `json:"estimated_budget"`
	StartDate       *Date     `json:"start_date,omitempty"`
	EndDate         *Date     `json:"end_date,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// IncidentReport 市民からの不具合報告リクエスト
type IncidentReport struct {
	VillageID        string `json:"village_id"`
	AssetType        string `json:"asset_type"`
	Description      string `json:"description"`
	Severity         string `json:"severity"`
	ReportedByName   string `json:"reported_by_name"`
	ReportedByMobile string `json:"reported_by_mobile"`
}

// Incident 受け付けた不具合報告。位置は報告された村の座標を使う。
type Incident struct {
	ID               string    `json:"id"`
	VillageID        string    `json:"village_id"`
	AssetType        string    `json:"asset_type,omitempty"`
	Description      string    `json:"description"`
	Severity         string    `json:"severity"`
	Status           string    `json:"status"`
	ReportedByName   string    `json:"reported_by_name"`
	ReportedByMobile string    `json:"reported_by_mobile,omitempty"`
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	CreatedAt        time.Time `json:"created_at"`
}

// JobApplicationRequest 就労申請リクエスト。work_order_id が空なら作業を指定しない申請になる。
type JobApplicationRequest struct {
	VillageID         string `json:"village_id"`
	WorkOrderID       string `json:"work_order_id"`
	ApplicantName     string `json:"applicant_name"`
	ApplicantMobile   string `json:"applicant_mobile"`
	ApplicantAge      *int   `json:"applicant_age"`
	ApplicantGender   string `json:"applicant_gender"`
	PreferredWorkType string `json:"preferred_work_type"`
}

// JobApplication 受け付けた就労申請
type JobApplication struct {
	ID                string    `json:"id"`
	VillageID         string    `json:"village_id"`
	WorkOrderID       string    `json:"work_order_id,omitempty"`
	ApplicantName     string    `json:"applicant_name"`
	ApplicantMobile   string    `json:"applicant_mobile"`
	ApplicantAge      *int      `json:"applicant_age,omitempty"`
	ApplicantGender   string    `json:"applicant_gender,omitempty"`
	PreferredWorkType string    `json:"preferred_work_type,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// FieldSummary 行政ポータルの概要表示用の件数
type FieldSummary struct {
	Villages            int `json:"villages"`
	Assets              int `json:"assets"`
	PoorAssets          int `json:"poor_assets"`
	Incidents           int `json:"incidents"`
	PendingIncidents    int `json:"pending_incidents"`
	OpenWorkOrders      int `json:"open_work_orders"`
	PendingApplications int `json:"pending_applications"`
}
