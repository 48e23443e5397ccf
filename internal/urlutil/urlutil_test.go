package urlutil

import "testing"

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?q=1",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"ftp://example.com",
		"example.com",
		"https://",
		"not a url at all\x7f",
	}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://example.com/blog/", "post-1", "https://example.com/blog/post-1"},
		{"https://example.com/blog/", "/about", "https://example.com/about"},
		{"https://example.com", "https://other.com/x", "https://other.com/x"},
		{"https://example.com/a", "../b", "https://example.com/b"},
	}

	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestIsInternal(t *testing.T) {
	base := "https://www.example.com/blog/"

	internal := []string{
		"/about",
		"post-1",
		"https://example.com/contact",
		"https://www.example.com/",
		"#section",
		"mailto:hi@example.com",
	}
	for _, href := range internal {
		if !IsInternal(base, href) {
			t.Errorf("IsInternal(%q) = false, want true", href)
		}
	}

	external := []string{
		"https://other.com/page",
		"http://sub.example.org",
	}
	for _, href := range external {
		if IsInternal(base, href) {
			t.Errorf("IsInternal(%q) = true, want false", href)
		}
	}
}

func TestHost(t *testing.T) {
	if got := Host("https://WWW.Example.com/path"); got != "example.com" {
		t.Errorf("Host() = %q, want example.com", got)
	}
	if got := Host("::bad::"); got != "" {
		t.Errorf("Host() on invalid URL = %q, want empty", got)
	}
}
