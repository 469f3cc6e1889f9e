package store_test

import (
	"context"
	"testing"

	"MedGuard/internal/apperr"
	"MedGuard/internal/model"
	"MedGuard/internal/store"
	"MedGuard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(t *testing.T, st *store.Store, table string) int64 {
	t.Helper()
	n, err := st.Count(context.Background(), "SELECT COUNT(*) FROM "+table)
	require.NoError(t, err)
	return n
}

func TestInit_SeedsEveryTable(t *testing.T) {
	st := testutil.NewStore(t)

	assert.EqualValues(t, 5, count(t, st, "drg_policies"))
	assert.EqualValues(t, 4, count(t, st, "rehabilitation_institutions"))
	assert.EqualValues(t, 5, count(t, st, "hospitals"))
	assert.EqualValues(t, 3, count(t, st, "transfer_applications"))
	assert.EqualValues(t, 4, count(t, st, "risk_events"))
	assert.EqualValues(t, 5, count(t, st, "warnings"))
	assert.EqualValues(t, 0, count(t, st, "users"))

	// 再次初始化不会重复写入
	require.NoError(t, st.Init(context.Background()))
	assert.EqualValues(t, 5, count(t, st, "drg_policies"))
}

func TestSeed_SkipsNonEmptyTable(t *testing.T) {
	st := testutil.NewEmptyStore(t)
	ctx := context.Background()
	require.NoError(t, st.DB().Create(&model.DRGPolicy{DRGCode: "X01", DRGName: "自定义", Status: 1}).Error)

	require.NoError(t, st.Seed(ctx))

	assert.EqualValues(t, 1, count(t, st, "drg_policies"))
	assert.EqualValues(t, 5, count(t, st, "hospitals"))
}

func TestMigrate_LegacyTablesKeepRows(t *testing.T) {
	st := testutil.OpenStore(t)
	ctx := context.Background()

	legacy := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			real_name TEXT,
			role TEXT DEFAULT 'user',
			status INTEGER DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME)`,
		`INSERT INTO users (username, password, real_name, role, status) VALUES ('old', 'x', '老用户', 'user', 1)`,
		`CREATE TABLE transfer_applications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			apply_no TEXT NOT NULL,
			patient_name TEXT NOT NULL,
			from_hospital TEXT,
			to_hospital TEXT,
			disease TEXT,
			status TEXT DEFAULT 'pending',
			apply_time DATETIME,
			created_at DATETIME,
			updated_at DATETIME)`,
		`INSERT INTO transfer_applications (apply_no, patient_name, from_hospital, to_hospital, disease, status)
			VALUES ('TA1', '张三', 'A医院', 'B医院', '脑梗', 'pending')`,
	}
	for _, q := range legacy {
		require.NoError(t, st.DB().Exec(q).Error)
	}

	require.NoError(t, st.Init(ctx))

	assert.EqualValues(t, 1, count(t, st, "users"))
	assert.EqualValues(t, 1, count(t, st, "transfer_applications"))
	for _, col := range []string{"phone", "id_card"} {
		assert.True(t, st.Schema().HasColumn("users", col), col)
	}
	for _, col := range []string{"user_id", "to_hospital_id", "to_institution_id", "admin_comment", "expected_cost"} {
		assert.True(t, st.Schema().HasColumn("transfer_applications", col), col)
	}

	row, err := st.QueryOne(ctx, "SELECT patient_name FROM transfer_applications WHERE apply_no = ?", "TA1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "张三", row["patient_name"])
}

func TestExec_InsertReturnsIDAndUniqueViolation(t *testing.T) {
	st := testutil.NewEmptyStore(t)
	ctx := context.Background()

	res, err := st.Exec(ctx, "INSERT INTO warnings (warning_id, hospital, type, amount, status) VALUES (?, ?, ?, ?, ?)",
		"W1", "医院", "异常费用", 100, model.HandlePending)
	require.NoError(t, err)
	assert.Positive(t, res.InsertedID)
	assert.EqualValues(t, 1, res.RowsAffected)

	_, err = st.Exec(ctx, "INSERT INTO warnings (warning_id, hospital, type, amount, status) VALUES (?, ?, ?, ?, ?)",
		"W1", "医院", "异常费用", 100, model.HandlePending)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestQueryOne_NoRows(t *testing.T) {
	st := testutil.NewEmptyStore(t)
	row, err := st.QueryOne(context.Background(), "SELECT * FROM warnings WHERE warning_id = ?", "missing")
	require.NoError(t, err)
	assert.Nil(t, row)
}
