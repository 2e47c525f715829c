package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pressboard/internal/models"
)

// testValkeyClient returns a Redis client connected to the test Valkey.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requestWithCookie builds a request carrying the given session ID.
func requestWithCookie(id string) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	return r
}

func TestSessionCreateAndGet(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	data := &Data{
		UserID:      uuid.New(),
		Phone:       "+40712345678",
		DisplayName: "Test User",
		Role:        models.RolePrinter,
	}

	id, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("empty session ID")
	}

	// Verify the cookie was set with the right attributes.
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
			break
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != id {
		t.Errorf("cookie value = %q, want session ID", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Errorf("session cookie is not HttpOnly")
	}

	got, err := store.Get(ctx, requestWithCookie(id))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("stored session not found")
	}
	if got.UserID != data.UserID || got.Phone != data.Phone || got.Role != models.RolePrinter {
		t.Errorf("session round-trip mismatch: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Errorf("CreatedAt not stamped on create")
	}
}

func TestSessionGetWithoutCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	got, err := store.Get(context.Background(), httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("session returned for cookieless request")
	}
}

func TestSessionGetUnknownID(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	got, err := store.Get(context.Background(), requestWithCookie("deadbeef"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("session returned for unknown ID")
	}
}

func TestSessionUpdate(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	data := &Data{UserID: uuid.New(), Role: models.RoleSuperAdmin, TwoFADone: false}
	id, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Complete the TOTP step without rotating the session ID.
	data.TwoFADone = true
	if err := store.Update(ctx, requestWithCookie(id), data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(ctx, requestWithCookie(id))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.TwoFADone {
		t.Errorf("update not persisted")
	}
	if !got.IsSuperAdmin() {
		t.Errorf("admin session with completed 2FA not recognized as super admin")
	}
}

func TestSessionDestroy(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	id, err := store.Create(ctx, w, &Data{UserID: uuid.New(), Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	w2 := httptest.NewRecorder()
	if err := store.Destroy(ctx, w2, requestWithCookie(id)); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	got, err := store.Get(ctx, requestWithCookie(id))
	if err != nil {
		t.Fatalf("Get after destroy: %v", err)
	}
	if got != nil {
		t.Errorf("session survived Destroy")
	}

	// The cookie is expired on the response.
	var cleared *http.Cookie
	for _, c := range w2.Result().Cookies() {
		if c.Name == CookieName {
			cleared = c
			break
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Errorf("session cookie not expired on destroy")
	}
}

func TestDataIsSuperAdmin(t *testing.T) {
	tests := []struct {
		name string
		data Data
		want bool
	}{
		{"admin with 2fa", Data{Role: models.RoleSuperAdmin, TwoFADone: true}, true},
		{"admin before 2fa", Data{Role: models.RoleSuperAdmin, TwoFADone: false}, false},
		{"regular user", Data{Role: models.RoleUser, TwoFADone: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.IsSuperAdmin(); got != tt.want {
				t.Errorf("IsSuperAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}
