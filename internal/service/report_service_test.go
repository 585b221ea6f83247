package service

import (
	"context"
	"testing"
	"time"

	"storepos/internal/model"
	"storepos/internal/permission"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSale(repo *stubSaleRepo, total int64, at time.Time) uuid.UUID {
	id := uuid.New()
	repo.sales[id] = &model.Sale{
		ID:        id,
		Total:     decimal.NewFromInt(total),
		Paid:      decimal.NewFromInt(total),
		UserID:    uuid.New(),
		CreatedAt: at,
	}
	return id
}

func seedRefund(repo *stubSaleRepo, saleID uuid.UUID, amount int64, at time.Time) {
	repo.refunds = append(repo.refunds, model.Refund{
		ID:        uuid.New(),
		SaleID:    saleID,
		Amount:    decimal.NewFromInt(amount),
		UserID:    uuid.New(),
		UserRole:  string(permission.RoleManager),
		Reason:    "return",
		CreatedAt: at,
	})
}

func TestRevenueBucketsPerDay(t *testing.T) {
	repo := newStubSaleRepo()
	day1 := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 6, 2, 14, 30, 0, 0, time.UTC)

	seedSale(repo, 100, day1)
	seedSale(repo, 50, day1.Add(2*time.Hour))
	seedSale(repo, 30, day2)

	svc := NewReportService(repo)
	sum, err := svc.Revenue(context.Background(), permission.RoleManager,
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(180).Equal(sum.Gross), "got gross %s", sum.Gross)
	assert.True(t, decimal.NewFromInt(180).Equal(sum.Net))
	assert.Equal(t, 3, sum.Sales)
	assert.Equal(t, 0, sum.Refunds)

	require.Len(t, sum.Days, 2)
	assert.Equal(t, "2026-06-01", sum.Days[0].Day)
	assert.True(t, decimal.NewFromInt(150).Equal(sum.Days[0].Gross))
	assert.Equal(t, 2, sum.Days[0].Sales)
	assert.Equal(t, "2026-06-02", sum.Days[1].Day)
	assert.True(t, decimal.NewFromInt(30).Equal(sum.Days[1].Gross))
}

func TestRevenueRefundOnLaterDay(t *testing.T) {
	repo := newStubSaleRepo()
	day1 := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC)

	saleID := seedSale(repo, 100, day1)
	// refunded two days later: the refund lands in the later bucket
	seedRefund(repo, saleID, 100, day3)

	svc := NewReportService(repo)
	sum, err := svc.Revenue(context.Background(), permission.RoleAdmin,
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(100).Equal(sum.Gross))
	assert.True(t, decimal.NewFromInt(100).Equal(sum.Refunded))
	assert.True(t, sum.Net.IsZero())

	require.Len(t, sum.Days, 2)
	assert.True(t, decimal.NewFromInt(100).Equal(sum.Days[0].Net))
	// a day with only a refund goes negative
	assert.True(t, decimal.NewFromInt(-100).Equal(sum.Days[1].Net), "got net %s", sum.Days[1].Net)
}

func TestRevenueInvalidRange(t *testing.T) {
	svc := NewReportService(newStubSaleRepo())
	from := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Revenue(context.Background(), permission.RoleAdmin, from, from)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Revenue(context.Background(), permission.RoleAdmin, from, from.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRevenuePermissionDenied(t *testing.T) {
	svc := NewReportService(newStubSaleRepo())
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Revenue(context.Background(), permission.RoleCashier, from, from.AddDate(0, 0, 7))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Revenue(context.Background(), permission.RoleWarehouse, from, from.AddDate(0, 0, 7))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRevenueEmptyRange(t *testing.T) {
	svc := NewReportService(newStubSaleRepo())
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	sum, err := svc.Revenue(context.Background(), permission.RoleManager, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.True(t, sum.Gross.IsZero())
	assert.Equal(t, 0, sum.Sales)
	assert.Empty(t, sum.Days)
}
