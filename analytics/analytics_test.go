package analytics

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name                string
		posts, likes, views int
		want                Stats
	}{
		{
			name: "no posts",
			want: Stats{},
		},
		{
			name:  "posts without views",
			posts: 2, likes: 3, views: 0,
			want: Stats{PostCount: 2, TotalLikes: 3, AvgLikes: 2, EngagementRate: 0},
		},
		{
			name:  "rounds half up",
			posts: 4, likes: 10, views: 30,
			want: Stats{PostCount: 4, TotalLikes: 10, TotalViews: 30, AvgLikes: 3, AvgViews: 8, EngagementRate: 33},
		},
		{
			name:  "rate above one hundred",
			posts: 1, likes: 3, views: 2,
			want: Stats{PostCount: 1, TotalLikes: 3, TotalViews: 2, AvgLikes: 3, AvgViews: 2, EngagementRate: 150},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.posts, tt.likes, tt.views)
			if got != tt.want {
				t.Errorf("Summarize(%d, %d, %d) = %+v, want %+v", tt.posts, tt.likes, tt.views, got, tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{2.5, 3},
		{33.333, 33},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
