package extract

import "testing"

func TestNormalizePrefersPlainBody(t *testing.T) {
	t.Parallel()

	got := Normalize("  plain wins  ", "<p>html loses</p>")
	if got != "plain wins" {
		t.Fatalf("unexpected normalized body: %q", got)
	}
}

func TestNormalizeStripsMarkup(t *testing.T) {
	t.Parallel()

	html := `<html><head><style>p { color: red; }</style></head>
	<body><p>Hi,   I&#39;m interested &amp; ready.</p>
	<script>track();</script><div>Call  me.</div></body></html>`

	got := Normalize("", html)
	if got != "Hi, I'm interested & ready. Call me." {
		t.Fatalf("unexpected normalized body: %q", got)
	}
}

func TestNormalizeAbsentBodies(t *testing.T) {
	t.Parallel()

	if got := Normalize("", ""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := Normalize("   ", "  \n "); got != "" {
		t.Fatalf("expected empty string for blank bodies, got %q", got)
	}
}

func TestCompact(t *testing.T) {
	t.Parallel()

	if got := Compact("short", 10); got != "short" {
		t.Fatalf("short body must pass through, got %q", got)
	}

	got := Compact("abcdefghij", 4)
	if got != "abcd..." {
		t.Fatalf("unexpected compacted body: %q", got)
	}
}
