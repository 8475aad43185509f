package httpapi

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"gnwpos/backend/internal/domain"
	"gnwpos/backend/internal/store/memory"
)

func newTestAuth(t *testing.T) (*AuthManager, *memory.Store) {
	t.Helper()
	t.Setenv("SEED_ADMIN_PASSWORD", "admin-test-pass")
	t.Setenv("SEED_BRANCH_PASSWORD", "branch-test-pass")
	repo := memory.NewSeeded()
	return NewAuthManager(strings.Repeat("k", 32), time.Hour, repo), repo
}

func TestLoginIssuesParseableToken(t *testing.T) {
	auth, _ := newTestAuth(t)

	resp, err := auth.Login(domain.LoginRequest{Username: "MainBranch", Password: "branch-test-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != domain.RoleBranch || resp.BranchID != "branch-main" {
		t.Fatalf("response = %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "mainbranch" || actor.Role != domain.RoleBranch || actor.BranchID != "branch-main" {
		t.Fatalf("actor = %+v", actor)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, _ := newTestAuth(t)

	if _, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "wrong"}); err == nil {
		t.Fatal("wrong password accepted")
	}
	if _, err := auth.Login(domain.LoginRequest{Username: "ghost", Password: "whatever"}); err == nil {
		t.Fatal("unknown user accepted")
	}
	if _, err := auth.Login(domain.LoginRequest{Username: "admin", Password: ""}); err == nil {
		t.Fatal("empty password accepted")
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	auth, repo := newTestAuth(t)
	other := NewAuthManager(strings.Repeat("x", 32), time.Hour, repo)

	resp, err := other.Login(domain.LoginRequest{Username: "admin", Password: "admin-test-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("token signed with a different secret accepted")
	}
	if _, err := auth.ParseToken("not-a-jwt"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	auth, _ := newTestAuth(t)
	auth.tokenTTL = -time.Minute

	resp, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "admin-test-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestBootstrapUpgradesPlaintextPasswords(t *testing.T) {
	t.Setenv("SEED_ADMIN_PASSWORD", "admin-test-pass")
	t.Setenv("SEED_BRANCH_PASSWORD", "branch-test-pass")
	repo := memory.NewSeeded()

	legacy := domain.UserAccount{
		Username: "legacy",
		Password: "plain-old-password",
		Role:     domain.RoleBranch,
		BranchID: "branch-main",
		Active:   true,
	}
	if err := repo.CreateUser(context.Background(), legacy); err != nil {
		t.Fatalf("create user: %v", err)
	}

	auth := NewAuthManager(strings.Repeat("k", 32), time.Hour, repo)

	users, err := repo.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	upgraded := false
	for _, u := range users {
		if !isPasswordHash(u.Password) {
			t.Fatalf("user %s still has a plain-text password", u.Username)
		}
		if u.Username == "legacy" {
			upgraded = true
		}
	}
	if !upgraded {
		t.Fatal("legacy user missing after bootstrap")
	}

	// The original plain-text password still logs in after the upgrade.
	if _, err := auth.Login(domain.LoginRequest{Username: "legacy", Password: "plain-old-password"}); err != nil {
		t.Fatalf("legacy login after upgrade: %v", err)
	}
}

func TestLoginRateLimiter(t *testing.T) {
	api := newTestAPI(t)

	bad := domain.LoginRequest{Username: "admin", Password: "wrong"}
	for i := 0; i < 5; i++ {
		if rec := api.do(t, http.MethodPost, "/auth/login", "", bad); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d", i+1, rec.Code)
		}
	}
	if rec := api.do(t, http.MethodPost, "/auth/login", "", bad); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth attempt status = %d, want 429", rec.Code)
	}
}

func TestAttemptLimiterWindow(t *testing.T) {
	limiter := newAttemptLimiter(2, 50*time.Millisecond)

	if !limiter.Allow("ip") || !limiter.Allow("ip") {
		t.Fatal("first attempts should pass")
	}
	if limiter.Allow("ip") {
		t.Fatal("third attempt inside window should fail")
	}
	if !limiter.Allow("other") {
		t.Fatal("keys must be independent")
	}

	time.Sleep(60 * time.Millisecond)
	if !limiter.Allow("ip") {
		t.Fatal("attempt after window should pass")
	}
}
