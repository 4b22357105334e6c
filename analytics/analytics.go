// Package analytics computes per-author engagement statistics for profile
// pages. Inputs are raw totals; every derived figure is rounded half-up.
package analytics

import "math"

// Stats holds aggregated engagement for one author.
type Stats struct {
	PostCount      int `json:"postCount"`
	TotalLikes     int `json:"totalLikes"`
	TotalViews     int `json:"totalViews"`
	AvgLikes       int `json:"avgLikes"`       // per post
	AvgViews       int `json:"avgViews"`       // per post
	EngagementRate int `json:"engagementRate"` // likes per 100 views
}

// Summarize derives averages and the engagement rate from totals.
// Averages are 0 without posts; the rate is 0 without views.
func Summarize(postCount, totalLikes, totalViews int) Stats {
	s := Stats{
		PostCount:  postCount,
		TotalLikes: totalLikes,
		TotalViews: totalViews,
	}
	if postCount > 0 {
		s.AvgLikes = Round(float64(totalLikes) / float64(postCount))
		s.AvgViews = Round(float64(totalViews) / float64(postCount))
	}
	if totalViews > 0 {
		s.EngagementRate = Round(100 * float64(totalLikes) / float64(totalViews))
	}
	return s
}

// Round rounds half away from zero for non-negative inputs, matching the
// half-up rounding the profile page shows.
func Round(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int(math.Floor(x + 0.5))
}
