package dashboard

import (
	"math"
	"time"

	"github.com/kimhsiao/creatorplanner/internal/models"
)

// TrendWindow splits recent videos from older ones.
const TrendWindow = 30 * day

// Trends compares the last TrendWindow with everything before it.
type Trends struct {
	// CompletionRateChange is the relative change in completion rate, in
	// percent. Zero when there is nothing to compare against.
	CompletionRateChange float64 `json:"completionRateChange"`
	// RecentProductionRate is videos created per day within the window.
	RecentProductionRate float64 `json:"recentProductionRate"`
	// TotalProductionRate is videos per day since the earliest creation.
	TotalProductionRate float64 `json:"totalProductionRate"`
}

// ComputeTrends derives Trends from videos as of now.
func ComputeTrends(videos []models.Video, now time.Time) Trends {
	cutoff := now.Add(-TrendWindow)

	var recent, recentDone, previous, previousDone int
	for _, v := range videos {
		done := Classify(v.Status) == ClassCompleted
		if v.CreatedAt.Before(cutoff) {
			previous++
			if done {
				previousDone++
			}
			continue
		}
		recent++
		if done {
			recentDone++
		}
	}

	var trends Trends
	if recent > 0 && previous > 0 && previousDone > 0 {
		recentRate := float64(recentDone) / float64(recent)
		previousRate := float64(previousDone) / float64(previous)
		trends.CompletionRateChange = (recentRate - previousRate) / previousRate * 100
	}
	trends.RecentProductionRate = float64(recent) / (TrendWindow.Hours() / 24)

	if earliest, ok := earliestCreated(videos); ok {
		days := math.Ceil(now.Sub(earliest).Hours() / 24)
		if days < 1 {
			days = 1
		}
		trends.TotalProductionRate = float64(len(videos)) / days
	}
	return trends
}
