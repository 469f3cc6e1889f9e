package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/auth"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"
	"MedGuard/internal/store"
	"MedGuard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, st *store.Store) *AuthService {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour, "medguard")
	return NewAuthService(repository.NewUserRepository(st), tokens, testutil.Logger())
}

func newTransferService(st *store.Store) *TransferService {
	return NewTransferService(repository.NewTransferRepository(st), repository.NewHospitalRepository(st),
		repository.NewInstitutionRepository(st), true, testutil.Logger())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	st := testutil.NewStore(t)
	svc := newAuthService(t, st)
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret1", RealName: "爱丽丝"})
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret1"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Register(ctx, RegisterRequest{Username: "bob", Password: "12345"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	res, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.EqualValues(t, 3600, res.ExpiresIn)

	claims, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.ID)

	// 用户不存在与密码错误返回同一提示
	_, errUnknown := svc.Login(ctx, "nobody", "secret1")
	_, errWrong := svc.Login(ctx, "alice", "wrong-pass")
	for _, err := range []error{errUnknown, errWrong} {
		var e *apperr.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, apperr.KindAuth, e.Kind)
		assert.Equal(t, msgBadCredentials, e.Message)
	}
}

func TestAuthService_Bootstrap(t *testing.T) {
	st := testutil.NewStore(t)
	svc := newAuthService(t, st)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))
	require.NoError(t, svc.Bootstrap(ctx))

	n, err := repository.NewUserRepository(st).Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	res, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.User.Role)

	me, err := svc.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "系统管理员", me.RealName)
}

func TestTransferService_ApproveOnlyOnce(t *testing.T) {
	st := testutil.NewStore(t)
	svc := newTransferService(st)
	ctx := context.Background()
	user := Caller{ID: 9, Role: model.RoleUser}

	sub, err := svc.Submit(ctx, user, TransferInput{PatientName: "测试患者", ToHospitalID: 2, FromHospital: "社区医院"})
	require.NoError(t, err)
	assert.Regexp(t, `^TA\d{13}[0-9A-F]{5}$`, sub.ApplyNo)

	res, err := svc.Approve(ctx, sub.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.TransferApproved, res.Status)

	_, err = svc.Approve(ctx, sub.ID, "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.ErrorIs(t, err, ErrStateChanged)
	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "该申请已处理，当前状态：已批准", e.Message)

	_, err = svc.Reject(ctx, sub.ID, "  ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	view, err := svc.Get(ctx, user, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "上海瑞金医院", view.ToHospital)

	_, err = svc.Get(ctx, Caller{ID: 10, Role: model.RoleUser}, sub.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Get(ctx, Caller{ID: 1, Role: model.RoleAdmin}, sub.ID)
	assert.NoError(t, err)
}

func TestTransferService_SubmitValidation(t *testing.T) {
	svc := newTransferService(testutil.NewStore(t))
	ctx := context.Background()
	user := Caller{ID: 3, Role: model.RoleUser}

	_, err := svc.Submit(ctx, user, TransferInput{PatientName: "甲"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Submit(ctx, user, TransferInput{PatientName: "甲", ToHospitalID: 99})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	// 已停业的康复机构不可作为目标
	_, err = svc.SubmitToInstitution(ctx, user, TransferInput{PatientName: "甲", FromHospital: "A", Disease: "B", ToHospitalID: 4})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	sub, err := svc.SubmitToInstitution(ctx, user, TransferInput{PatientName: "甲", FromHospital: "A", Disease: "B", ToHospitalID: 1})
	require.NoError(t, err)
	list, err := svc.List(ctx, user, "")
	require.NoError(t, err)
	require.Len(t, list.List, 1)
	assert.Equal(t, sub.ID, list.List[0].ID)
	assert.Equal(t, "北京康复医院", list.List[0].ToHospital)
	require.NotNil(t, list.List[0].ToInstitutionID)
	assert.EqualValues(t, 1, *list.List[0].ToInstitutionID)
	assert.Nil(t, list.List[0].ToHospitalID)
}

// staleTransferRepo 读取时仍为待审核，条件更新时已被他人处理
type staleTransferRepo struct {
	repository.TransferRepository
}

func (staleTransferRepo) GetByID(context.Context, uint64) (*model.TransferApplication, error) {
	return &model.TransferApplication{ID: 1, Status: model.TransferPending}, nil
}

func (staleTransferRepo) Transition(context.Context, uint64, string, string, string) (int64, error) {
	return 0, nil
}

func TestTransferService_ConcurrentTransitionLoses(t *testing.T) {
	svc := NewTransferService(staleTransferRepo{}, nil, nil, false, testutil.Logger())

	_, err := svc.Approve(context.Background(), 1, "ok")
	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.Equal(t, "申请状态已变更，无法批准", e.Message)
	assert.ErrorIs(t, err, ErrStateChanged)
}

func TestHospitalService_AddReviewUpdatesRating(t *testing.T) {
	svc := NewHospitalService(repository.NewHospitalRepository(testutil.NewStore(t)), testutil.Logger())
	ctx := context.Background()

	_, err := svc.AddReview(ctx, 1, 1, ReviewInput{Rating: 5})
	require.NoError(t, err)
	res, err := svc.AddReview(ctx, 1, 2, ReviewInput{Rating: 4, Comment: "环境不错"})
	require.NoError(t, err)
	assert.Equal(t, 4.5, res.Rating)
	assert.Equal(t, 2, res.RatingCount)

	_, err = svc.AddReview(ctx, 1, 2, ReviewInput{Rating: 6})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.AddReview(ctx, 1, 2, ReviewInput{Rating: 0})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.AddReview(ctx, 404, 2, ReviewInput{Rating: 3})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	detail, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, detail.Reviews, 2)
	assert.Equal(t, 4.5, detail.Rating)
}

func TestUniqueKeyOnCreateAndUpdate(t *testing.T) {
	st := testutil.NewStore(t)
	logger := testutil.Logger()
	institutions := NewInstitutionService(repository.NewInstitutionRepository(st), logger)
	hospitals := NewHospitalService(repository.NewHospitalRepository(st), logger)
	risks := NewRiskService(repository.NewRiskRepository(st), true, logger)
	warnings := NewWarningService(repository.NewWarningRepository(st), logger)

	// 种子数据中 id=1 持有 keys[0]，另一条记录持有 keys[1]
	cases := []struct {
		name   string
		keys   [2]string
		create func(ctx context.Context, key string) error
		update func(ctx context.Context, id uint64, key string) error
	}{
		{
			name: "institution",
			keys: [2]string{"北京康复医院", "上海康复医学中心"},
			create: func(ctx context.Context, key string) error {
				_, err := institutions.Create(ctx, InstitutionInput{Name: key})
				return err
			},
			update: func(ctx context.Context, id uint64, key string) error {
				return institutions.Update(ctx, id, InstitutionInput{Name: key})
			},
		},
		{
			name: "hospital",
			keys: [2]string{"北京协和医院", "上海瑞金医院"},
			create: func(ctx context.Context, key string) error {
				_, err := hospitals.Create(ctx, HospitalInput{Name: key})
				return err
			},
			update: func(ctx context.Context, id uint64, key string) error {
				return hospitals.Update(ctx, id, HospitalInput{Name: key})
			},
		},
		{
			name: "risk",
			keys: [2]string{"RE20250101", "RE20250102"},
			create: func(ctx context.Context, key string) error {
				_, err := risks.Create(ctx, RiskInput{EventID: key, RiskLevel: "高"})
				return err
			},
			update: func(ctx context.Context, id uint64, key string) error {
				return risks.Update(ctx, id, RiskInput{EventID: key, RiskLevel: "高"})
			},
		},
		{
			name: "warning",
			keys: [2]string{"WR20250101", "WR20250102"},
			create: func(ctx context.Context, key string) error {
				_, err := warnings.Create(ctx, WarningInput{WarningID: key, Hospital: "北京协和医院", Type: "超标"})
				return err
			},
			update: func(ctx context.Context, id uint64, key string) error {
				return warnings.Update(ctx, id, WarningInput{WarningID: key, Hospital: "北京协和医院", Type: "超标"})
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()

			err := tc.create(ctx, tc.keys[0])
			assert.True(t, apperr.Is(err, apperr.KindConflict), "create duplicate: %v", err)

			err = tc.update(ctx, 1, tc.keys[1])
			assert.True(t, apperr.Is(err, apperr.KindConflict), "rename to other: %v", err)

			assert.NoError(t, tc.update(ctx, 1, tc.keys[0]), "keep own key")

			err = tc.update(ctx, 999, tc.name+"-new")
			assert.True(t, apperr.Is(err, apperr.KindNotFound), "missing id: %v", err)
		})
	}
}

func TestDRGService_CodeUniqueness(t *testing.T) {
	st := testutil.NewStore(t)
	svc := NewDRGService(repository.NewDRGRepository(st), true, testutil.Logger())
	ctx := context.Background()

	_, err := svc.Create(ctx, DRGInput{DRGCode: "MDC01", DRGName: "重复"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Create(ctx, DRGInput{DRGCode: "MDC09", DRGName: "新增", EffectiveDate: "2025/01/01"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	id, err := svc.Create(ctx, DRGInput{DRGCode: "MDC09", DRGName: "新增", PaymentStandard: 1234.5})
	require.NoError(t, err)

	err = svc.Update(ctx, id, DRGInput{DRGCode: "MDC02", DRGName: "改名"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	require.NoError(t, svc.Update(ctx, id, DRGInput{DRGCode: "MDC09", DRGName: "改名"}))
	v, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "改名", v.DRGName)

	err = svc.Update(ctx, 999, DRGInput{DRGCode: "X", DRGName: "X"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDRGService_StatisticsFallback(t *testing.T) {
	st := testutil.NewEmptyStore(t)
	ctx := context.Background()

	stats, err := NewDRGService(repository.NewDRGRepository(st), true, testutil.Logger()).Statistics(ctx)
	require.NoError(t, err)
	assert.Len(t, stats.Codes, 8)

	stats, err = NewDRGService(repository.NewDRGRepository(st), false, testutil.Logger()).Statistics(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats.Codes)
}

func TestFormatYuan(t *testing.T) {
	cases := map[float64]string{
		32500:   "¥32,500",
		1234.5:  "¥1,234.5",
		0:       "¥0",
		999:     "¥999",
		1000000: "¥1,000,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatYuan(in), "%v", in)
	}
}
