package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrStateChanged 申请已离开待审核状态
var ErrStateChanged = errors.New("transfer application state already changed")

// Caller 当前请求的调用方
type Caller struct {
	ID   uint64
	Role string
}

// IsAdmin 是否管理员
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// TransferInput 提交转院申请参数
type TransferInput struct {
	PatientName        string  `json:"patientName"`
	PatientIDCard      string  `json:"patientIdCard"`
	PatientPhone       string  `json:"patientPhone"`
	FromHospital       string  `json:"fromHospital"`
	ToHospitalID       uint64  `json:"toHospitalId"`
	ToHospital         string  `json:"toHospital"`
	Disease            string  `json:"disease"`
	DiseaseDescription string  `json:"diseaseDescription"`
	Reason             string  `json:"reason"`
	ExpectedCost       float64 `json:"expectedCost"`
}

// SubmitResult 提交结果
type SubmitResult struct {
	ID      uint64 `json:"id"`
	ApplyNo string `json:"applyNo"`
}

// TransitionResult 审批结果
type TransitionResult struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
}

// PeriodStats 今日/近7天/近30天申请数
type PeriodStats struct {
	Today int64 `json:"today"`
	Week  int64 `json:"week"`
	Month int64 `json:"month"`
}

// TransferBoard 康复管理端申请列表 + 统计
type TransferBoard struct {
	List  []*repository.TransferView `json:"list"`
	Stats PeriodStats                `json:"stats"`
}

// TransferService 转院申请
type TransferService struct {
	repo         repository.TransferRepository
	hospitals    repository.HospitalRepository
	institutions repository.InstitutionRepository
	demoFallback bool
	logger       *logrus.Logger
	now          func() time.Time
}

// NewTransferService 创建 TransferService
func NewTransferService(repo repository.TransferRepository, hospitals repository.HospitalRepository,
	institutions repository.InstitutionRepository, demoFallback bool, logger *logrus.Logger) *TransferService {
	return &TransferService{
		repo:         repo,
		hospitals:    hospitals,
		institutions: institutions,
		demoFallback: demoFallback,
		logger:       logger,
		now:          time.Now,
	}
}

// NewApplyNo 申请编号：TA + 毫秒时间戳 + 5 位大写随机字符
func NewApplyNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
	return "TA" + strconv.FormatInt(now.UnixMilli(), 10) + suffix
}

func (in *TransferInput) toModel(userID uint64) *model.TransferApplication {
	uid := userID
	return &model.TransferApplication{
		UserID:             &uid,
		PatientName:        strings.TrimSpace(in.PatientName),
		PatientIDCard:      in.PatientIDCard,
		PatientPhone:       in.PatientPhone,
		FromHospital:       in.FromHospital,
		Disease:            in.Disease,
		DiseaseDescription: in.DiseaseDescription,
		Reason:             in.Reason,
		ExpectedCost:       in.ExpectedCost,
		Status:             model.TransferPending,
	}
}

// Submit 向医院目录中的医院提交申请
func (s *TransferService) Submit(ctx context.Context, caller Caller, in TransferInput) (*SubmitResult, error) {
	if blank(in.PatientName) || in.ToHospitalID == 0 {
		return nil, apperr.Validation("患者姓名和目标医院不能为空")
	}
	if in.ExpectedCost < 0 {
		return nil, apperr.Validation("预计费用不能为负数")
	}
	h, err := s.hospitals.GetByID(ctx, in.ToHospitalID)
	if err != nil {
		return nil, mapNotFound(err, "目标医院不存在")
	}
	app := in.toModel(caller.ID)
	app.ToHospital = h.Name
	toID := h.ID
	app.ToHospitalID = &toID
	return s.create(ctx, app)
}

// SubmitToInstitution 用户端向康复机构提交申请；目标可用机构ID或名称指定
func (s *TransferService) SubmitToInstitution(ctx context.Context, caller Caller, in TransferInput) (*SubmitResult, error) {
	var instID *uint64
	if in.ToHospitalID != 0 {
		inst, err := s.institutions.GetOpenByID(ctx, in.ToHospitalID)
		if err != nil {
			return nil, mapNotFound(err, "目标医院不存在")
		}
		in.ToHospital = inst.Name
		instID = &inst.ID
	}
	if blank(in.PatientName) || blank(in.FromHospital) || blank(in.ToHospital) || blank(in.Disease) {
		return nil, apperr.Validation("请填写完整的申请信息")
	}
	if in.ExpectedCost < 0 {
		return nil, apperr.Validation("预计费用不能为负数")
	}
	app := in.toModel(caller.ID)
	app.ToHospital = strings.TrimSpace(in.ToHospital)
	app.ToInstitutionID = instID
	return s.create(ctx, app)
}

func (s *TransferService) create(ctx context.Context, app *model.TransferApplication) (*SubmitResult, error) {
	app.ApplyNo = NewApplyNo(s.now())
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"id": app.ID, "apply_no": app.ApplyNo}).Info("转院申请已提交")
	return &SubmitResult{ID: app.ID, ApplyNo: app.ApplyNo}, nil
}

// List 管理员看全部，普通用户只看自己的申请
func (s *TransferService) List(ctx context.Context, caller Caller, status string) (*ListResult[*repository.TransferView], error) {
	filter := repository.TransferFilter{Status: status}
	if !caller.IsAdmin() {
		uid := caller.ID
		filter.UserID = &uid
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*repository.TransferView{}
	}
	return &ListResult[*repository.TransferView]{List: rows, Total: int64(len(rows))}, nil
}

// Get 详情；普通用户只能查看自己的申请
func (s *TransferService) Get(ctx context.Context, caller Caller, id uint64) (*repository.TransferView, error) {
	var owner *uint64
	if !caller.IsAdmin() {
		uid := caller.ID
		owner = &uid
	}
	v, err := s.repo.GetView(ctx, id, owner)
	if err != nil {
		return nil, mapNotFound(err, "申请不存在或无权限查看")
	}
	return v, nil
}

// Stats 申请数量统计
func (s *TransferService) Stats(ctx context.Context) (*repository.TransferStats, error) {
	return s.repo.Stats(ctx, s.now())
}

// Board 康复管理端：按状态过滤的申请列表 + 今日/近7天/近30天统计
func (s *TransferService) Board(ctx context.Context, status string) (*TransferBoard, error) {
	rows, err := s.repo.List(ctx, repository.TransferFilter{Status: status})
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*repository.TransferView{}
	}
	return &TransferBoard{List: rows, Stats: PeriodStats{Today: stats.Today, Week: stats.Week, Month: stats.Month}}, nil
}

var transferStatusLabel = map[string]string{
	model.TransferPending:  "待审核",
	model.TransferApproved: "已通过",
	model.TransferRejected: "已拒绝",
}

var demoTransferDistribution = []Distribution{
	{Value: 65, Name: "待审核"},
	{Value: 25, Name: "已通过"},
	{Value: 10, Name: "已拒绝"},
}

// StatusDistribution 按状态分布；无数据时按配置返回示例数据
func (s *TransferService) StatusDistribution(ctx context.Context) ([]Distribution, error) {
	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 && s.demoFallback {
		return append([]Distribution(nil), demoTransferDistribution...), nil
	}
	out := make([]Distribution, 0, len(counts))
	for _, c := range counts {
		name := c.Name
		if label, ok := transferStatusLabel[c.Name]; ok {
			name = label
		}
		out = append(out, Distribution{Value: c.Count, Name: name})
	}
	return out, nil
}

// Approve 批准待审核申请
func (s *TransferService) Approve(ctx context.Context, id uint64, comment string) (*TransitionResult, error) {
	return s.transition(ctx, id, model.TransferApproved, strings.TrimSpace(comment), "批准")
}

// Reject 拒绝待审核申请，拒绝原因必填
func (s *TransferService) Reject(ctx context.Context, id uint64, comment string) (*TransitionResult, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperr.Validation("拒绝原因不能为空")
	}
	return s.transition(ctx, id, model.TransferRejected, comment, "拒绝")
}

func (s *TransferService) transition(ctx context.Context, id uint64, to, comment, verb string) (*TransitionResult, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "申请不存在")
	}
	if app.Status != model.TransferPending {
		msg := fmt.Sprintf("该申请已处理，当前状态：%s", model.TransferStatusText(app.Status))
		return nil, apperr.Conflict(msg).Wrap(ErrStateChanged)
	}

	n, err := s.repo.Transition(ctx, id, model.TransferPending, to, comment)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.Conflict("申请状态已变更，无法" + verb).Wrap(ErrStateChanged)
	}
	s.logger.WithFields(logrus.Fields{"id": id, "status": to}).Info("转院申请已审批")
	return &TransitionResult{ID: id, Status: to}, nil
}
