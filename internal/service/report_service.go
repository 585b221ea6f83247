package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storepos/internal/dto"
	"storepos/internal/permission"
	"storepos/internal/repository"

	"github.com/shopspring/decimal"
)

// ReportService aggregates sales and refunds into revenue summaries.
// Reads only, no writes.
type ReportService interface {
	// Revenue sums gross, refunded and net amounts between from (inclusive)
	// and to (exclusive), bucketed per day. Requires EXPORT_REVENUE.
	Revenue(ctx context.Context, role permission.Role, from, to time.Time) (*dto.RevenueSummary, error)
}

type reportService struct {
	sales repository.SaleRepository
}

func NewReportService(sales repository.SaleRepository) ReportService {
	return &reportService{sales: sales}
}

func (s *reportService) Revenue(ctx context.Context, role permission.Role, from, to time.Time) (*dto.RevenueSummary, error) {
	if !permission.Allowed(role, permission.ActionExportRevenue) {
		return nil, fmt.Errorf("%w: role %q cannot EXPORT_REVENUE", ErrPermissionDenied, role)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: range end %s is not after start %s",
			ErrInvalidInput, to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	sales, err := s.sales.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	refunds, err := s.sales.ListRefundsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	days := make(map[string]*dto.RevenueDay)
	bucket := func(t time.Time) *dto.RevenueDay {
		key := t.Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &dto.RevenueDay{Day: key, Gross: decimal.Zero, Refunded: decimal.Zero, Net: decimal.Zero}
			days[key] = d
		}
		return d
	}

	summary := &dto.RevenueSummary{
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		Gross:    decimal.Zero,
		Refunded: decimal.Zero,
		Net:      decimal.Zero,
	}

	for i := range sales {
		sale := &sales[i]
		summary.Gross = summary.Gross.Add(sale.Total)
		summary.Sales++
		d := bucket(sale.CreatedAt)
		d.Gross = d.Gross.Add(sale.Total)
		d.Sales++
	}
	// Refunds subtract on the day the refund happened, not the sale day, so
	// a day's net can go negative.
	for i := range refunds {
		r := &refunds[i]
		summary.Refunded = summary.Refunded.Add(r.Amount)
		summary.Refunds++
		d := bucket(r.CreatedAt)
		d.Refunded = d.Refunded.Add(r.Amount)
	}

	summary.Net = summary.Gross.Sub(summary.Refunded)

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d := days[k]
		d.Net = d.Gross.Sub(d.Refunded)
		summary.Days = append(summary.Days, *d)
	}
	return summary, nil
}
