package richtext

import (
	"strings"
	"testing"
)

func TestSanitizeKeepsAllowedMarkup(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<p>Hello <strong>world</strong></p>", "<p>Hello <strong>world</strong></p>"},
		{"<h2>Title</h2><ul><li>one</li></ul>", "<h2>Title</h2><ul><li>one</li></ul>"},
		{"line<br/>break", "line<br>break"},
		{`<a href="https://go.dev" onclick="x()">go</a>`, `<a href="https://go.dev" rel="nofollow noopener">go</a>`},
		{`<img src="/public/uploads/a.jpg" alt="a">`, `<img src="/public/uploads/a.jpg" alt="a">`},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.input); got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeStripsDangerousContent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<p>a</p><script>alert(1)</script><p>b</p>", "<p>a</p><p>b</p>"},
		{`<a href="javascript:alert(1)">x</a>`, `<a rel="nofollow noopener">x</a>`},
		{`<img src="//evil.example/x.png">`, `<img>`},
		{`<div style="color:red">text</div>`, `text`},
		{`<iframe src="https://x"><p>inside</p></iframe>after`, `after`},
		{`5 < 6 & "quotes"`, `5 &lt; 6 &amp; &#34;quotes&#34;`},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.input); got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("<h1>Title</h1><p>First  <em>para</em>.</p><script>x=1</script><p>Second</p>")
	if got != "Title First para. Second" {
		t.Errorf("PlainText = %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"<p>short</p>", 20, "short"},
		{"<p>the quick brown fox jumps</p>", 12, "the quick…"},
		{"<p>abcdefghijklmnop</p>", 5, "abcde…"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.input, tt.n); got != tt.want {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestReadingMinutes(t *testing.T) {
	if got := ReadingMinutes(""); got != 0 {
		t.Errorf("ReadingMinutes(empty) = %d, want 0", got)
	}
	if got := ReadingMinutes("<p>one two three</p>"); got != 1 {
		t.Errorf("ReadingMinutes(short) = %d, want 1", got)
	}
	long := "<p>" + strings.Repeat("word ", 401) + "</p>"
	if got := ReadingMinutes(long); got != 3 {
		t.Errorf("ReadingMinutes(401 words) = %d, want 3", got)
	}
}
