// Package dashboard computes the summary statistics shown on the planner
// dashboard from an in-memory list of videos.
package dashboard

import (
	"math"
	"time"

	"github.com/kimhsiao/creatorplanner/internal/models"
)

// Production targets shown next to the KPIs.
const (
	TargetDaysPerVideo   = 10
	TargetVideosPerMonth = 5
	TargetCompletionRate = 90
)

// Status bucket names, in display order.
const (
	BucketCompleted  = "Completed"
	BucketInProgress = "In Progress"
	BucketPlanned    = "Planned"
	BucketCreated    = "Created"
)

const day = 24 * time.Hour

// Class is the dashboard bucket a status falls into.
type Class int

const (
	ClassNone Class = iota
	ClassCompleted
	ClassInProgress
	ClassPlanned
	ClassCreated
)

// Classify maps a status to its bucket. Statuses outside the built-in set
// are ClassNone and are not counted in any bucket.
func Classify(s models.VideoStatus) Class {
	switch s {
	case models.StatusPublished:
		return ClassCompleted
	case models.StatusScripted, models.StatusRecorded, models.StatusEdited, models.StatusThumbnail:
		return ClassInProgress
	case models.StatusIdle:
		return ClassPlanned
	case models.StatusCreated:
		return ClassCreated
	default:
		return ClassNone
	}
}

// GeneralStats are the headline counts.
type GeneralStats struct {
	TotalVideos      int     `json:"totalVideos"`
	CompletedVideos  int     `json:"completedVideos"`
	InProgressVideos int     `json:"inProgressVideos"`
	AvgDaysPerVideo  float64 `json:"avgDaysPerVideo"`
}

// NamedValue is one bar or slice of a chart.
type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// MonthStats counts videos created in one month. Created is filled only
// when Options.MonthlyIncludeCreated is set.
type MonthStats struct {
	Month      string `json:"month"`
	Completed  int    `json:"completed"`
	InProgress int    `json:"inProgress"`
	Planned    int    `json:"planned"`
	Created    int    `json:"created,omitempty"`
}

// TimelinePoint counts completed videos per "YYYY-MM".
type TimelinePoint struct {
	Date   string `json:"date"`
	Videos int    `json:"videos"`
}

// KPI is a production statistic with its target.
type KPI struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Target float64 `json:"target"`
}

// Stats is everything the dashboard renders.
type Stats struct {
	General            GeneralStats    `json:"generalStats"`
	StatusDistribution []NamedValue    `json:"statusDistribution"`
	MonthlyData        []MonthStats    `json:"monthlyData"`
	TimelineData       []TimelinePoint `json:"timelineData"`
	ProductionStats    []KPI           `json:"productionStats"`
}

// Options tunes ComputeStats.
type Options struct {
	// Now is the reference time for rate calculations. Zero means time.Now.
	Now time.Time
	// MonthlyIncludeCreated counts created-status videos in MonthlyData.
	MonthlyIncludeCreated bool
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// ComputeStats aggregates videos. An empty list yields zero values.
func ComputeStats(videos []models.Video, opts Options) Stats {
	var completed, inProgress, planned, created int
	var totalDays float64

	var months []string
	monthly := make(map[string]*MonthStats)
	var timelineKeys []string
	timeline := make(map[string]int)

	for _, v := range videos {
		class := Classify(v.Status)
		switch class {
		case ClassCompleted:
			completed++
			totalDays += math.Ceil(v.Deadline.Sub(v.CreatedAt).Hours() / 24)
			key := v.LastTouched().Format("2006-01")
			if _, ok := timeline[key]; !ok {
				timelineKeys = append(timelineKeys, key)
			}
			timeline[key]++
		case ClassInProgress:
			inProgress++
		case ClassPlanned:
			planned++
		case ClassCreated:
			created++
		}

		month := v.CreatedAt.Month().String()[:3]
		m, ok := monthly[month]
		if !ok {
			m = &MonthStats{Month: month}
			monthly[month] = m
			months = append(months, month)
		}
		switch class {
		case ClassCompleted:
			m.Completed++
		case ClassInProgress:
			m.InProgress++
		case ClassPlanned:
			m.Planned++
		case ClassCreated:
			if opts.MonthlyIncludeCreated {
				m.Created++
			}
		}
	}

	avgDays := totalDays / float64(max(completed, 1))

	stats := Stats{
		General: GeneralStats{
			TotalVideos:      len(videos),
			CompletedVideos:  completed,
			InProgressVideos: inProgress,
			AvgDaysPerVideo:  round1(avgDays),
		},
		StatusDistribution: []NamedValue{
			{BucketCompleted, completed},
			{BucketInProgress, inProgress},
			{BucketPlanned, planned},
			{BucketCreated, created},
		},
		MonthlyData:  make([]MonthStats, 0, len(months)),
		TimelineData: make([]TimelinePoint, 0, len(timelineKeys)),
	}
	for _, month := range months {
		stats.MonthlyData = append(stats.MonthlyData, *monthly[month])
	}
	for _, key := range timelineKeys {
		stats.TimelineData = append(stats.TimelineData, TimelinePoint{Date: key, Videos: timeline[key]})
	}

	stats.ProductionStats = []KPI{
		{Name: "Days per Video", Value: round1(avgDays), Target: TargetDaysPerVideo},
		{Name: "Videos per Month", Value: round1(videosPerMonth(videos, completed, opts.now())), Target: TargetVideosPerMonth},
		{Name: "Completion Rate", Value: completionRate(completed, len(videos)), Target: TargetCompletionRate},
	}
	return stats
}

// videosPerMonth spreads completed videos over the 30-day periods since the
// earliest creation.
func videosPerMonth(videos []models.Video, completed int, now time.Time) float64 {
	months := 1.0
	if earliest, ok := earliestCreated(videos); ok {
		months = math.Ceil(float64(now.Sub(earliest)) / float64(30*day))
	}
	if months < 1 {
		months = 1
	}
	return float64(completed) / months
}

func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed) / float64(total) * 100)
}

func earliestCreated(videos []models.Video) (time.Time, bool) {
	if len(videos) == 0 {
		return time.Time{}, false
	}
	earliest := videos[0].CreatedAt
	for _, v := range videos[1:] {
		if v.CreatedAt.Before(earliest) {
			earliest = v.CreatedAt
		}
	}
	return earliest, true
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
