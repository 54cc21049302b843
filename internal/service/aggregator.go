package service

import (
	"math"
	"wellness_backend/internal/model"
	"wellness_backend/internal/repository"
	"wellness_backend/internal/util"
)

// Aggregator 指标聚合的唯一读路径：每次都对当天全部记录重新聚合，
// 不存在"最后一条覆盖"的情况
type Aggregator struct {
	TrackingRepo *repository.TrackingRepository
}

func NewAggregator(trackingRepo *repository.TrackingRepository) *Aggregator {
	return &Aggregator{TrackingRepo: trackingRepo}
}

// WithTx 在事务内读取，保证与后续写入看到同一快照
func (a *Aggregator) WithTx(repo *repository.TrackingRepository) *Aggregator {
	return &Aggregator{TrackingRepo: repo}
}

// Aggregate 计算 (user, metric, date) 的聚合值，没有记录时为 0
func (a *Aggregator) Aggregate(userID uint, kind model.MetricKind, date string, agg model.Aggregation) (float64, error) {
	if !agg.Valid() {
		return 0, util.Validation("unsupported aggregation %q", agg)
	}

	rows, err := a.TrackingRepo.DailyAggregates(userID, kind, date, date, agg)
	if err != nil {
		return 0, util.FromStorage("aggregate tracking entries", err, nil)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Value, nil
}

// DailySeries 区间内每个有记录日期的聚合值
func (a *Aggregator) DailySeries(userID uint, kind model.MetricKind, from, to string, agg model.Aggregation) ([]repository.DailyAggregate, error) {
	if !agg.Valid() {
		return nil, util.Validation("unsupported aggregation %q", agg)
	}

	rows, err := a.TrackingRepo.DailyAggregates(userID, kind, from, to, agg)
	if err != nil {
		return nil, util.FromStorage("aggregate tracking series", err, nil)
	}
	return rows, nil
}

// AggregateEntries 内存版本，与 SQL 路径语义一致
func AggregateEntries(entries []model.TrackingEntry, agg model.Aggregation) float64 {
	switch agg {
	case model.AggCount:
		return float64(len(entries))
	case model.AggMax:
		if len(entries) == 0 {
			return 0
		}
		max := math.Inf(-1)
		for _, e := range entries {
			if e.Value > max {
				max = e.Value
			}
		}
		return max
	default:
		var sum float64
		for _, e := range entries {
			sum += e.Value
		}
		return sum
	}
}

// ComputeProgress progress = clamp(round(current/target*100), 0, 100)
func ComputeProgress(current, target float64) int {
	if target <= 0 {
		return 0
	}
	p := math.Round(current / target * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}
