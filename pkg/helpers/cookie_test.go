package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestNewCookieSameSite(t *testing.T) {
	cases := []struct {
		in     string
		secure bool
		want   http.SameSite
	}{
		{"", false, http.SameSiteLaxMode},
		{"Strict", false, http.SameSiteStrictMode},
		{"none", true, http.SameSiteNoneMode},
		{"none", false, http.SameSiteLaxMode},
		{"bogus", true, http.SameSiteLaxMode},
	}
	for _, tc := range cases {
		if got := NewCookie("", tc.secure, tc.in).SameSite; got != tc.want {
			t.Fatalf("NewCookie(%q, %v): got %v, want %v", tc.in, tc.secure, got, tc.want)
		}
	}
}

func TestSetTokenAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewCookie("", true, "strict")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	m.SetToken(c, "abc", time.Now().Add(time.Hour))
	set := w.Header().Get("Set-Cookie")
	for _, part := range []string{"token=abc", "HttpOnly", "Secure", "SameSite=Strict"} {
		if !strings.Contains(set, part) {
			t.Fatalf("Set-Cookie %q missing %q", set, part)
		}
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	m.Clear(c)
	if set := w.Header().Get("Set-Cookie"); !strings.Contains(set, "token=;") || !strings.Contains(set, "Max-Age=0") {
		t.Fatalf("Clear wrote %q", set)
	}
}

func TestTokenFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		cookie string
		auth   string
		want   string
	}{
		{"none", "", "", ""},
		{"cookie", "c1", "", "c1"},
		{"bearer", "", "Bearer b1", "b1"},
		{"bearer lowercase", "", "bearer b2", "b2"},
		{"cookie wins", "c1", "Bearer b1", "c1"},
		{"other scheme", "", "Basic xyz", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tc.cookie})
			}
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = req
			if got := TokenFromRequest(c); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSetTokenMaxAgeFollowsClock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixed := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	jwtm := NewJWTManager("secret", time.Hour)
	jwtm.Now = func() time.Time { return fixed }

	m := NewCookie("", false, "")
	m.Now = jwtm.Clock

	_, exp, err := jwtm.Issue("u1", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	m.SetToken(c, "abc", exp)
	if set := w.Header().Get("Set-Cookie"); !strings.Contains(set, "Max-Age=3600") {
		t.Fatalf("Set-Cookie %q, want Max-Age=3600", set)
	}
}
