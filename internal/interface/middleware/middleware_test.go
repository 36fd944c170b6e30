package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/interface/middleware"
	"github.com/oksasatya/user-management-api/pkg/apperror"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status    int             `json:"status"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return env
}

func newEngine(jwt *helpers.JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.ErrorHandler(helpers.NewDiscardLogger()))
	whoami := func(c *gin.Context) {
		id, _ := middleware.IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": id.ID, "role": id.Role})
	}
	r.GET("/me", middleware.Authenticate(jwt), whoami)
	r.GET("/admin", middleware.Authenticate(jwt), middleware.Authorize(entity.RoleAdmin), whoami)
	r.GET("/maybe", middleware.Identify(jwt), whoami)
	return r
}

func TestAuthenticate(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	userToken, _, _ := jwt.Issue("u1", "user")
	expired := helpers.NewJWTManager("secret", -time.Minute)
	expiredToken, _, _ := expired.Issue("u1", "user")
	forged, _, _ := helpers.NewJWTManager("other", time.Hour).Issue("u1", "admin")
	r := newEngine(jwt)

	cases := []struct {
		name   string
		cookie string
		bearer string
		want   int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "cookie", cookie: userToken, want: http.StatusOK},
		{name: "bearer", bearer: userToken, want: http.StatusOK},
		{name: "expired", cookie: expiredToken, want: http.StatusUnauthorized},
		{name: "forged", cookie: forged, want: http.StatusUnauthorized},
		{name: "garbage", bearer: "abc.def.ghi", want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: tc.cookie})
			}
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status: got %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
			if tc.want == http.StatusUnauthorized {
				env := decode(t, w)
				if env.Success || env.Status != http.StatusUnauthorized || env.RequestID == "" {
					t.Fatalf("unexpected envelope %+v", env)
				}
			}
		})
	}
}

func TestAuthorizeRejectsWrongRole(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := newEngine(jwt)

	userToken, _, _ := jwt.Issue("u1", "user")
	adminToken, _, _ := jwt.Issue("a1", "admin")

	for token, want := range map[string]int{userToken: http.StatusForbidden, adminToken: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("status: got %d, want %d", w.Code, want)
		}
	}
}

func TestIdentifyNeverRejects(t *testing.T) {
	r := newEngine(helpers.NewJWTManager("secret", time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperror.Validation("Payload is required", nil), http.StatusBadRequest, "Payload is required"},
		{apperror.Conflict("User already exists"), http.StatusBadRequest, "User already exists"},
		{apperror.Authentication("Invalid credentials"), http.StatusUnauthorized, "Invalid credentials"},
		{apperror.Forbidden("Unauthorized access"), http.StatusForbidden, "Unauthorized access"},
		{apperror.NotFound("User not found"), http.StatusNotFound, "User not found"},
		{errors.New("pq: relation users does not exist"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.Use(middleware.ErrorHandler(helpers.NewDiscardLogger()))
		r.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		env := decode(t, w)
		if w.Code != tc.status || env.Message != tc.message || env.Success {
			t.Fatalf("%v: got %d %q", tc.err, w.Code, env.Message)
		}
	}
}

func TestRecoveryRendersEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(gin.CustomRecovery(middleware.Recovery(helpers.NewDiscardLogger())))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError || decode(t, w).Message != "Internal server error" {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestRateLimitInMemory(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RealIP(false))
	r.Use(middleware.RateLimit(middleware.NewMemoryCounter(), 2, time.Minute, middleware.KeyByIP(), middleware.AllowPaths("/healthz")))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := hit("/", "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}
	w := hit("/", "10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if decode(t, w).Message != middleware.TooManyRequests || w.Header().Get("Retry-After") == "" {
		t.Fatalf("unexpected limited response %s", w.Body.String())
	}
	if w := hit("/", "10.0.0.2"); w.Code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", w.Code)
	}
	for i := 0; i < 5; i++ {
		if w := hit("/healthz", "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("allowlisted path limited: %d", w.Code)
		}
	}
}

func TestRealIPIgnoresHeadersUnlessTrusted(t *testing.T) {
	for trusted, want := range map[bool]string{false: "192.0.2.1", true: "203.0.113.9"} {
		r := gin.New()
		r.Use(middleware.RealIP(trusted))
		var got string
		r.GET("/", func(c *gin.Context) { got = c.GetString("real_ip") })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		r.ServeHTTP(httptest.NewRecorder(), req)
		if got != want {
			t.Fatalf("trusted=%v: got %q, want %q", trusted, got, want)
		}
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.SecurityHeaders(true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	for h, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-Request-Id":           "abc-123",
	} {
		if got := w.Header().Get(h); got != want {
			t.Fatalf("%s: got %q, want %q", h, got, want)
		}
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("expected HSTS when secure")
	}
}

func TestRequestIDReplacesUnusableHeader(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, in := range []string{"", "has space", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if in != "" {
			req.Header.Set("X-Request-Id", in)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		got := w.Header().Get("X-Request-Id")
		if got == "" || got == in {
			t.Fatalf("header %q: got %q, want a generated id", in, got)
		}
	}
}
