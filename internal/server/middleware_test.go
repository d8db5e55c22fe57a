package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthCache_FreshHit(t *testing.T) {
	cache := newAuthCache(time.Minute)
	cache.set("wck_abc", &authClient{ID: "c1", Name: "ci"})

	client, hit, refresh := cache.get("wck_abc")
	if !hit || refresh {
		t.Fatalf("expected fresh hit, got hit=%v refresh=%v", hit, refresh)
	}
	if client.ID != "c1" {
		t.Fatalf("wrong client: %+v", client)
	}
}

func TestAuthCache_Miss(t *testing.T) {
	cache := newAuthCache(time.Minute)
	if _, hit, _ := cache.get("wck_missing"); hit {
		t.Fatal("expected miss")
	}
}

func TestAuthCache_StaleRefreshesOnce(t *testing.T) {
	cache := newAuthCache(-time.Second) // entries are stale immediately
	cache.set("wck_abc", &authClient{ID: "c1"})

	client, hit, refresh := cache.get("wck_abc")
	if !hit || client == nil {
		t.Fatal("stale entries should still serve")
	}
	if !refresh {
		t.Fatal("first stale read should claim the refresh")
	}

	// Subsequent reads must not claim a second refresh while one is pending.
	if _, _, refresh := cache.get("wck_abc"); refresh {
		t.Fatal("refresh claimed twice")
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer wck_abc123", "wck_abc123", true},
		{"missing", "", "", false},
		{"wrong scheme", "Basic dXNlcg==", "", false},
		{"bare token", "wck_abc123", "", false},
		{"empty token", "Bearer ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/workers", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got, ok := extractBearerToken(req)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("got (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}
