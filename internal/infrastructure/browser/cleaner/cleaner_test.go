package cleaner

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanHTML_RemovesScriptStyle(t *testing.T) {
	page := `
<body>
    <div id="main">Hello</div>
    <script>alert("hi")</script>
    <style>.x {}</style>
</body>`

	out := CleanHTML(page, nil)

	if strings.Contains(out, "<script") || strings.Contains(out, "<style") {
		t.Errorf("script/style tags must be removed, output: %s", out)
	}
	if !strings.Contains(out, `id="main"`) {
		t.Errorf("expected to keep normal elements")
	}
}

func TestCleanHTML_RemovesCommentsAndNoisyAttributes(t *testing.T) {
	page := `
<body>
    <!-- comment -->
    <a href="https://example.com" class="link" data-x="1" aria-hidden="true" onclick="go()" style="color:red">Go</a>
</body>`

	out := CleanHTML(page, nil)

	if strings.Contains(out, "comment") {
		t.Errorf("HTML comments must be removed")
	}
	for _, attr := range []string{"data-x", "aria-hidden", "onclick", "style="} {
		if strings.Contains(out, attr) {
			t.Errorf("attribute %s must be removed, output: %s", attr, out)
		}
	}
	if !strings.Contains(out, `href="https://example.com"`) || !strings.Contains(out, `class="link"`) {
		t.Errorf("href and class must be kept, output: %s", out)
	}
}

func TestCleanHTML_Truncation(t *testing.T) {
	var big strings.Builder
	big.WriteString("<body>")
	for i := 0; i < 20000; i++ {
		big.WriteString("<div>test</div>")
	}
	big.WriteString("</body>")

	out := CleanHTML(big.String(), &Config{MaxOutputSize: 1000})

	if len(out) != 1000+len(truncatedNotice) {
		t.Errorf("unexpected truncated length %d", len(out))
	}
	if !strings.HasSuffix(out, truncatedNotice) {
		t.Errorf("truncation notice must appear")
	}
}

func TestText_TruncationKeepsValidUTF8(t *testing.T) {
	page := "<body><p>" + strings.Repeat("日本語", 50) + "</p></body>"

	out := Text(page, &Config{MaxOutputSize: 100})

	if !utf8.ValidString(out) {
		t.Errorf("truncated text is not valid UTF-8: %q", out)
	}
	if !strings.HasSuffix(out, truncatedNotice) {
		t.Errorf("truncation notice must appear")
	}
}

func TestText_OneBlockPerLine(t *testing.T) {
	page := `<html><head><title>Ignored</title></head><body>
<h1>Welcome   back</h1>
<form><label>Email</label><input placeholder="you@example.com"><button>Sign in</button></form>
<script>var hidden = 1;</script>
<p>Forgot <a href="/reset">password</a>?</p>
</body></html>`

	got := Text(page, nil)
	want := "Welcome back\nEmail\n[you@example.com]\nSign in\nForgot password ?"

	if got != want {
		t.Errorf("unexpected text:\n%q\nwant:\n%q", got, want)
	}
}
