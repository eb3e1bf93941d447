package format

import "testing"

func TestEscapeHTML(t *testing.T) {
	cases := map[string]string{
		"plain":                  "plain",
		`<b>"Tom" & 'Jerry'</b>`: "&lt;b&gt;&quot;Tom&quot; &amp; &#039;Jerry&#039;&lt;/b&gt;",
		"&amp;":                  "&amp;amp;",
		"":                       "",
	}
	for in, want := range cases {
		if got := EscapeHTML(in); got != want {
			t.Errorf("EscapeHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBold(t *testing.T) {
	if got := Bold(EscapeHTML("a<b")); got != "<b>a&lt;b</b>" {
		t.Fatalf("Bold = %q", got)
	}
}
