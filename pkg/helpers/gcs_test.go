package helpers

import "testing"

func TestObjectPathFromURL(t *testing.T) {
	u := objectURL("pics", "avatars/u1/a.png")
	if got, ok := ObjectPathFromURL("pics", u); !ok || got != "avatars/u1/a.png" {
		t.Fatalf("round trip: %q %v", got, ok)
	}
	for _, raw := range []string{"/uploads/a.png", "https://storage.googleapis.com/other/a.png", "https://example.com/pics/a.png", "https://storage.googleapis.com/pics/"} {
		if got, ok := ObjectPathFromURL("pics", raw); ok {
			t.Fatalf("%q: unexpected object %q", raw, got)
		}
	}
}
