package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/model"
	"MedGuard/internal/store"
	"MedGuard/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return store.New(db, testutil.Logger()), mock
}

const transitionSQL = "UPDATE transfer_applications SET status = $1, admin_comment = $2, updated_at = $3 WHERE id = $4 AND status = $5"

func TestTransferRepository_TransitionConditional(t *testing.T) {
	st, mock := newMockStore(t)
	repo := NewTransferRepository(st)

	mock.ExpectExec(regexp.QuoteMeta(transitionSQL)).
		WithArgs(model.TransferApproved, "同意", sqlmock.AnyArg(), sqlmock.AnyArg(), model.TransferPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(transitionSQL)).
		WithArgs(model.TransferApproved, "同意", sqlmock.AnyArg(), sqlmock.AnyArg(), model.TransferPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.Transition(context.Background(), 7, model.TransferPending, model.TransferApproved, "同意")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// 已被其他请求处理：条件不再满足
	n, err = repo.Transition(context.Background(), 7, model.TransferPending, model.TransferApproved, "同意")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_TransitionStorageError(t *testing.T) {
	st, mock := newMockStore(t)
	repo := NewTransferRepository(st)

	mock.ExpectExec(regexp.QuoteMeta(transitionSQL)).WillReturnError(errors.New("connection reset"))

	_, err := repo.Transition(context.Background(), 1, model.TransferPending, model.TransferRejected, "资料不全")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_ListOwnAndStats(t *testing.T) {
	st := testutil.NewStore(t)
	repo := NewTransferRepository(st)
	ctx := context.Background()

	uid, hid := uint64(42), uint64(1)
	app := &model.TransferApplication{
		ApplyNo: "TA-TEST-1", UserID: &uid, PatientName: "测试", ToHospital: "北京协和医院",
		ToHospitalID: &hid, Status: model.TransferPending,
	}
	require.NoError(t, repo.Create(ctx, app))

	own, err := repo.List(ctx, TransferFilter{UserID: &uid})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "北京协和医院", own[0].ToHospitalName)

	all, err := repo.List(ctx, TransferFilter{Status: model.TransferPending})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = repo.GetView(ctx, app.ID, func() *uint64 { other := uint64(1); return &other }())
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := repo.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 4, stats.Pending)
	assert.Zero(t, stats.Approved)
	assert.GreaterOrEqual(t, stats.Month, stats.Today)
}

func TestTransferRepository_LegacyTableWithoutOwner(t *testing.T) {
	st := testutil.OpenStore(t)
	ctx := context.Background()
	require.NoError(t, st.DB().Exec(`CREATE TABLE transfer_applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		apply_no VARCHAR(32),
		patient_name VARCHAR(64),
		to_hospital VARCHAR(128),
		status VARCHAR(16),
		apply_time DATETIME)`).Error)
	require.NoError(t, st.DB().Exec(
		"INSERT INTO transfer_applications (apply_no, patient_name, to_hospital, status, apply_time) VALUES (?, ?, ?, ?, ?)",
		"TA-OLD-1", "旧数据", "北京协和医院", model.TransferPending, time.Now()).Error)
	repo := NewTransferRepository(st)

	uid := uint64(7)
	own, err := repo.List(ctx, TransferFilter{UserID: &uid})
	require.NoError(t, err)
	assert.Empty(t, own)

	all, err := repo.List(ctx, TransferFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "旧数据", all[0].PatientName)

	_, err = repo.GetView(ctx, all[0].ID, &uid)
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := repo.GetView(ctx, all[0].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "TA-OLD-1", view.ApplyNo)
}

func TestStatWindows_WholeDays(t *testing.T) {
	now := time.Date(2025, 3, 5, 15, 30, 0, 0, time.UTC)
	today, week, month := StatWindows(now)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), today)
	assert.Equal(t, time.Date(2025, 2, 26, 0, 0, 0, 0, time.UTC), week)
	// 跨月仍往前取满30天，而非当月1日
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), month)
}
