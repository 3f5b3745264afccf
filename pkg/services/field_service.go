package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/store"
)

// 申請者の年齢の許容範囲（MGNREGAは成人が対象）
const (
	MinApplicantAge = 18
	MaxApplicantAge = 100
)

// FieldStores は FieldService が使うストアの組です。
type FieldStores struct {
	Villages     store.VillageStore
	Assets       store.AssetStore
	WorkOrders   store.WorkOrderStore
	Incidents    store.IncidentStore
	Applications store.JobApplicationStore
}

// FieldService 市民からの不具合報告・就労申請の受付と、行政向けの現地データ参照を行うサービス
type FieldService struct {
	stores FieldStores
	logger *zap.Logger
	newID  func(prefix string) string
}

// NewFieldService 新しい現地業務サービスを作成
func NewFieldService(stores FieldStores, logger *zap.Logger) *FieldService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldService{
		stores: stores,
		logger: logger,
		newID: func(prefix string) string {
			return prefix + "-" + uuid.NewString()
		},
	}
}

// lookupVillage は入力された村IDを検証します。存在しない村は入力不備として扱います。
func (s *FieldService) lookupVillage(ctx context.Context, id string) (models.Village, error) {
	village, err := s.stores.Villages.GetVillage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Village{}, newError(KindValidation, err, "village %s not found", id)
		}
		return models.Village{}, newError(KindPersistence, err, "failed to load village: %v", err)
	}
	return village, nil
}

func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return newError(KindValidation, nil, "missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ReportIncident は市民からの不具合報告を受け付けます。
// 位置は村の座標を使い、状態は Received で保存します。
func (s *FieldService) ReportIncident(ctx context.Context, req models.IncidentReport) (models.Incident, error) {
	req.VillageID = strings.TrimSpace(req.VillageID)
	req.Description = strings.TrimSpace(req.Description)
	req.ReportedByName = strings.TrimSpace(req.ReportedByName)
	if err := requireFields("village_id", req.VillageID, "description", req.Description, "reported_by_name", req.ReportedByName); err != nil {
		return models.Incident{}, err
	}

	severity := strings.TrimSpace(req.Severity)
	if severity == "" {
		severity = models.SeverityMedium
	}
	valid := false
	for _, sv := range models.IncidentSeverities {
		if strings.EqualFold(sv, severity) {
			severity, valid = sv, true
			break
		}
	}
	if !valid {
		return models.Incident{}, newError(KindValidation, nil, "severity must be one of %s", strings.Join(models.IncidentSeverities, ", "))
	}

	village, err := s.lookupVillage(ctx, req.VillageID)
	if err != nil {
		return models.Incident{}, err
	}

	incident, err := s.stores.Incidents.CreateIncident(ctx, models.Incident{
		ID:               s.newID("INC"),
		VillageID:        village.ID,
		AssetType:        strings.TrimSpace(req.AssetType),
		Description:      req.Description,
		Severity:         severity,
		Status:           models.IncidentStatusReceived,
		ReportedByName:   req.ReportedByName,
		ReportedByMobile: strings.TrimSpace(req.ReportedByMobile),
		Lat:              village.Lat,
		Lng:              village.Lng,
	})
	if err != nil {
		s.logger.Error("不具合報告の保存に失敗", zap.String("village_id", village.ID), zap.Error(err))
		return models.Incident{}, newError(KindPersistence, err, "failed to save incident: %v", err)
	}
	s.logger.Info("不具合報告を受け付けました",
		zap.String("incident_id", incident.ID),
		zap.String("village_id", incident.VillageID),
		zap.String("severity", incident.Severity))
	return incident, nil
}

// ApplyForJob は就労申請を受け付けます。作業指示を指定する場合は募集中（Open）のものに限ります。
func (s *FieldService) ApplyForJob(ctx context.Context, req models.JobApplicationRequest) (models.JobApplication, error) {
	req.VillageID = strings.TrimSpace(req.VillageID)
	req.ApplicantName = strings.TrimSpace(req.ApplicantName)
	req.ApplicantMobile = strings.TrimSpace(req.ApplicantMobile)
	req.WorkOrderID = strings.TrimSpace(req.WorkOrderID)
	if err := requireFields("village_id", req.VillageID, "applicant_name", req.ApplicantName, "applicant_mobile", req.ApplicantMobile); err != nil {
		return models.JobApplication{}, err
	}
	if req.ApplicantAge != nil && (*req.ApplicantAge < MinApplicantAge || *req.ApplicantAge > MaxApplicantAge) {
		return models.JobApplication{}, newError(KindValidation, nil, "applicant_age must be between %d and %d", MinApplicantAge, MaxApplicantAge)
	}

	village, err := s.lookupVillage(ctx, req.VillageID)
	if err != nil {
		return models.JobApplication{}, err
	}
	if req.WorkOrderID != "" {
		order, err := s.stores.WorkOrders.GetWorkOrder(ctx, req.WorkOrderID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return models.JobApplication{}, newError(KindValidation, err, "work order %s not found", req.WorkOrderID)
		case err != nil:
			return models.JobApplication{}, newError(KindPersistence, err, "failed to load work order: %v", err)
		case order.Status != models.WorkOrderStatusOpen:
			return models.JobApplication{}, newError(KindValidation, nil, "work order %s is not open", req.WorkOrderID)
		}
	}

	application, err := s.stores.Applications.CreateJobApplication(ctx, models.JobApplication{
		ID:                s.newID("JA"),
		VillageID:         village.ID,
		WorkOrderID:       req.WorkOrderID,
		ApplicantName:     req.ApplicantName,
		ApplicantMobile:   req.ApplicantMobile,
		ApplicantAge:      req.ApplicantAge,
		ApplicantGender:   strings.TrimSpace(req.ApplicantGender),
		PreferredWorkType: strings.TrimSpace(req.PreferredWorkType),
		Status:            models.JobApplicationPending,
	})
	if err != nil {
		s.logger.Error("就労申請の保存に失敗", zap.String("village_id", village.ID), zap.Error(err))
		return models.JobApplication{}, newError(KindPersistence, err, "failed to save job application: %v", err)
	}
	s.logger.Info("就労申請を受け付けました",
		zap.String("application_id", application.ID),
		zap.String("village_id", application.VillageID),
		zap.String("work_order_id", application.WorkOrderID))
	return application, nil
}

func (s *FieldService) ListIncidents(ctx context.Context, villageID, status string) ([]models.Incident, error) {
	return s.stores.Incidents.ListIncidents(ctx, villageID, status)
}

func (s *FieldService) ListJobApplications(ctx context.Context, villageID string) ([]models.JobApplication, error) {
	return s.stores.Applications.ListJobApplications(ctx, villageID)
}

func (s *FieldService) ListWorkOrders(ctx context.Context, status string) ([]models.WorkOrder, error) {
	return s.stores.WorkOrders.ListWorkOrders(ctx, status)
}

func (s *FieldService) ListAssets(ctx context.Context, villageID string) ([]models.Asset, error) {
	return s.stores.Assets.ListAssets(ctx, villageID)
}

// Summary は行政ポータルの概要に表示する件数を集計します。
func (s *FieldService) Summary(ctx context.Context) (models.FieldSummary, error) {
	var sum models.FieldSummary

	villages, err := s.stores.Villages.ListVillages(ctx)
	if err != nil {
		return sum, err
	}
	sum.Villages = len(villages)

	assets, err := s.stores.Assets.ListAssets(ctx, "")
	if err != nil {
		return sum, err
	}
	sum.Assets = len(assets)
	for _, a := range assets {
		if a.Condition == models.AssetConditionPoor {
			sum.PoorAssets++
		}
	}

	incidents, err := s.stores.Incidents.ListIncidents(ctx, "", "")
	if err != nil {
		return sum, err
	}
	sum.Incidents = len(incidents)
	for _, in := range incidents {
		if in.Status == models.IncidentStatusReceived {
			sum.PendingIncidents++
		}
	}

	open, err := s.stores.WorkOrders.ListWorkOrders(ctx, models.WorkOrderStatusOpen)
	if err != nil {
		return sum, err
	}
	sum.OpenWorkOrders = len(open)

	applications, err := s.stores.Applications.ListJobApplications(ctx, "")
	if err != nil {
		return sum, err
	}
	for _, a := range applications {
		if a.Status == models.JobApplicationPending {
			sum.PendingApplications++
		}
	}
	return sum, nil
}
