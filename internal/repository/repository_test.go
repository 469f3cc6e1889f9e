package repository

import (
	"context"
	"testing"

	"MedGuard/internal/model"
	"MedGuard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDRGRepository_SearchAndPaging(t *testing.T) {
	repo := NewDRGRepository(testutil.NewStore(t))
	ctx := context.Background()

	rows, total, err := repo.List(ctx, DRGFilter{Search: "MDC01"}, Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "颅脑损伤", rows[0].DRGName)

	// 诊断字段同样参与搜索
	_, total, err = repo.List(ctx, DRGFilter{Search: "肺炎"}, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	rows, total, err = repo.List(ctx, DRGFilter{}, Page{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, rows, 2)

	disabled := 0
	_, total, err = repo.List(ctx, DRGFilter{Status: &disabled}, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestDRGRepository_UpdateMissing(t *testing.T) {
	repo := NewDRGRepository(testutil.NewStore(t))
	err := repo.Update(context.Background(), &model.DRGPolicy{ID: 999, DRGCode: "X", DRGName: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), 999), ErrNotFound)
}

func TestRiskRepository_LevelCountsOrdered(t *testing.T) {
	repo := NewRiskRepository(testutil.NewStore(t))
	counts, err := repo.LevelCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, []NameCount{
		{Name: model.RiskHigh, Count: 2},
		{Name: model.RiskMedium, Count: 1},
		{Name: model.RiskLow, Count: 1},
	}, counts)
}

func TestInstitutionRepository_ListOpenFilters(t *testing.T) {
	repo := NewInstitutionRepository(testutil.NewStore(t))
	ctx := context.Background()

	open, err := repo.ListOpen(ctx, InstitutionFilter{})
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, "北京康复医院", open[0].Name)

	high, err := repo.ListOpen(ctx, InstitutionFilter{MinRating: 4.5, Specialty: "康复"})
	require.NoError(t, err)
	assert.Len(t, high, 2)

	_, err = repo.GetOpenByID(ctx, 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHospitalRepository_RecentReviewsAndRating(t *testing.T) {
	repo := NewHospitalRepository(testutil.NewStore(t))
	ctx := context.Background()

	for _, r := range []int{5, 4, 3, 5, 4, 2} {
		require.NoError(t, repo.AddReview(ctx, &model.HospitalReview{HospitalID: 1, UserID: 1, Rating: r}))
	}
	rating, n, err := repo.RecomputeRating(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.InDelta(t, 3.83, rating, 0.0001)

	recent, err := repo.RecentReviews(ctx, []uint64{1, 2}, 5)
	require.NoError(t, err)
	assert.Len(t, recent[1], 5)
	assert.Empty(t, recent[2])

	h, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.83, h.Rating, 0.0001)
	assert.Equal(t, 6, h.RatingCount)
}

func TestMeanRating(t *testing.T) {
	assert.True(t, MeanRating(nil).IsZero())
	rows := []map[string]interface{}{{"rating": int64(5)}, {"rating": int64(4)}, {"rating": int64(4)}}
	assert.Equal(t, "4.33", MeanRating(rows).String())
}

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, Page{}, Page{Page: 3}.Normalize())
	assert.Equal(t, Page{Page: 1, PageSize: MaxPageSize}, Page{PageSize: 1000}.Normalize())
}
