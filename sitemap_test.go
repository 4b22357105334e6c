package blogapp

import (
	"testing"
	"time"
)

func TestBuildSitemap(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)
	posts := []Post{
		{ID: "p3", AuthorID: "u1", UpdatedAt: day3},
		{ID: "p2", AuthorID: "u2", UpdatedAt: day2},
		{ID: "p1", AuthorID: "u1", UpdatedAt: day1},
	}

	got := buildSitemap("https://blog.example", posts).URLs
	want := []sitemapURL{
		{Loc: "https://blog.example/", LastMod: "2024-03-03", ChangeFreq: "daily"},
		{Loc: "https://blog.example/posts/p3", LastMod: "2024-03-03"},
		{Loc: "https://blog.example/posts/p2", LastMod: "2024-03-02"},
		{Loc: "https://blog.example/posts/p1", LastMod: "2024-03-01"},
		{Loc: "https://blog.example/users/u1", LastMod: "2024-03-03", ChangeFreq: "weekly"},
		{Loc: "https://blog.example/users/u2", LastMod: "2024-03-02", ChangeFreq: "weekly"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d urls, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildSitemapEmpty(t *testing.T) {
	got := buildSitemap("https://blog.example", nil).URLs
	if len(got) != 1 {
		t.Fatalf("got %d urls, want only the home page", len(got))
	}
	if got[0].LastMod != "" {
		t.Errorf("home lastmod = %q, want empty without posts", got[0].LastMod)
	}
}
