package service

import (
	"math"
	"time"

	"github.com/nurpe/waste-pickup/internal/model"
)

// ComputeStats reduces a full snapshot. "Today" is the calendar day of now in now's location.
func ComputeStats(requests []*model.WasteRequest, now time.Time) model.Stats {
	phones := make(map[string]struct{}, len(requests))
	today := 0
	totalWeight := 0.0

	ny, nm, nd := now.Date()
	for _, req := range requests {
		phones[req.Phone] = struct{}{}
		if !req.CreatedAt.IsZero() {
			y, m, d := req.CreatedAt.In(now.Location()).Date()
			if y == ny && m == nm && d == nd {
				today++
			}
		}
		if !math.IsNaN(req.Weight) {
			totalWeight += req.Weight
		}
	}

	return model.Stats{
		UniqueUsers:   len(phones),
		TodayRequests: today,
		TotalRecycled: int64(math.Round(totalWeight)),
	}
}
