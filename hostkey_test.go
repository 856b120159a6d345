package frontier

import "testing"

func TestDeriveQueueKeyRegistrableDomain(t *testing.T) {
	cases := map[string]string{
		"http://www.example.com/a/b":   "example.com",
		"HTTP://EXAMPLE.COM/path":      "example.com",
		"http://sub.domain.example.co.uk/x": "example.co.uk",
		"http://example.com:80/":       "example.com",
	}
	for in, want := range cases {
		got, err := deriveQueueKey(in)
		if err != nil {
			t.Fatalf("deriveQueueKey(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("deriveQueueKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeriveQueueKeyFallsBackForPublicSuffixHost(t *testing.T) {
	got, err := deriveQueueKey("http://localhost:8080/a")
	if err != nil {
		t.Fatalf("deriveQueueKey: %v", err)
	}
	if got != "localhost" {
		t.Errorf("expected fallback to bare host, got %q", got)
	}
}

func TestDeriveQueueKeyMalformedURL(t *testing.T) {
	if _, err := deriveQueueKey("://not a url"); err == nil {
		t.Fatalf("expected an error for a malformed URL")
	}
}
