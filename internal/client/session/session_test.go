package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mukkai/mukkai-go/internal/client/api"
	"github.com/mukkai/mukkai-go/internal/client/clienterr"
	"github.com/mukkai/mukkai-go/internal/client/storage"
	"github.com/mukkai/mukkai-go/internal/constants"
)

// fakeBackend 模拟登录与用户信息端点
type fakeBackend struct {
	consumerToken string
	merchantToken string
	loginFails    bool
	profileFails  bool
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status, code int, description string, body interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{
				"resultCode":        code,
				"resultMessage":     map[bool]string{true: "SUCCESS", false: "FAIL"}[code == 0],
				"resultDescription": description,
			},
			"body": body,
		})
	}

	mux.HandleFunc("/open-api/user/login", func(w http.ResponseWriter, r *http.Request) {
		if b.loginFails {
			write(w, http.StatusUnauthorized, 401, "邮箱或密码错误", nil)
			return
		}
		write(w, http.StatusOK, 0, "", map[string]interface{}{
			"user":        map[string]interface{}{"id": 1, "email": "user@example.com", "name": "消费者"},
			"accessToken": b.consumerToken,
		})
	})
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		if b.profileFails || r.Header.Get("Authorization") != "Bearer "+b.consumerToken {
			write(w, http.StatusUnauthorized, 401, "登录已过期", nil)
			return
		}
		write(w, http.StatusOK, 0, "", map[string]interface{}{
			"id": 1, "email": "user@example.com", "name": "消费者",
		})
	})
	mux.HandleFunc("/open-api/store-user/login", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, 0, "", map[string]interface{}{
			"storeUser":   map[string]interface{}{"id": 5, "email": "owner@example.com", "storeId": 7},
			"accessToken": b.merchantToken,
		})
	})
	mux.HandleFunc("/api/store-user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.merchantToken {
			write(w, http.StatusUnauthorized, 401, "登录已过期", nil)
			return
		}
		write(w, http.StatusOK, 0, "", map[string]interface{}{
			"id": 5, "email": "owner@example.com", "storeId": 7,
		})
	})
	return mux
}

func setupSessionTest(t *testing.T, backend *fakeBackend) (*api.Client, storage.Store) {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)
	client, err := api.NewClient(api.Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client, storage.NewMemoryStore()
}

func TestConsumerLoginPersistsState(t *testing.T) {
	backend := &fakeBackend{consumerToken: "consumer-jwt"}
	client, store := setupSessionTest(t, backend)
	session := NewConsumerSession(client, store)

	if err := session.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.State() != StateAuthenticated {
		t.Fatalf("state want authenticated got %s", session.State())
	}
	user := session.User()
	if user == nil || user.Email != "user@example.com" {
		t.Fatalf("profile not cached: %+v", user)
	}

	token, err := store.Get(constants.StorageKeyAccessToken)
	if err != nil || token != "consumer-jwt" {
		t.Fatalf("token not persisted: %q %v", token, err)
	}
	email, err := store.Get(constants.StorageKeyLastLoginEmail)
	if err != nil || email != "user@example.com" {
		t.Fatalf("email not persisted: %q %v", email, err)
	}
	if _, err := store.Get(constants.StorageKeyConsumerProfile); err != nil {
		t.Fatalf("profile not persisted: %v", err)
	}
	if session.LastLoginEmail() != "user@example.com" {
		t.Fatalf("last login email mismatch")
	}
}

func TestLoginRejectsEmptyInput(t *testing.T) {
	backend := &fakeBackend{consumerToken: "consumer-jwt"}
	client, store := setupSessionTest(t, backend)
	session := NewConsumerSession(client, store)

	if err := session.Login(context.Background(), "  ", "password"); !errors.Is(err, clienterr.ErrValidation) {
		t.Fatalf("empty email want ErrValidation got %v", err)
	}
	if err := session.Login(context.Background(), "user@example.com", ""); !errors.Is(err, clienterr.ErrValidation) {
		t.Fatalf("empty password want ErrValidation got %v", err)
	}
}

func TestFailedLoginPurgesAndExposesError(t *testing.T) {
	backend := &fakeBackend{loginFails: true}
	client, store := setupSessionTest(t, backend)
	session := NewConsumerSession(client, store)

	err := session.Login(context.Background(), "user@example.com", "wrong")
	if err == nil {
		t.Fatalf("login should fail")
	}
	if session.State() != StateError {
		t.Fatalf("state want error got %s", session.State())
	}
	if session.Err() == nil || !strings.Contains(session.Err().Error(), "邮箱或密码错误") {
		t.Fatalf("readable error expected, got %v", session.Err())
	}
	if _, err := store.Get(constants.StorageKeyAccessToken); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("token should be purged, got %v", err)
	}
	if client.Token(api.RoleConsumer) != "" {
		t.Fatalf("client token should be cleared")
	}
}

func TestLoadUserWithoutTokenStaysLoggedOut(t *testing.T) {
	backend := &fakeBackend{consumerToken: "consumer-jwt"}
	client, store := setupSessionTest(t, backend)
	session := NewConsumerSession(client, store)

	err := session.LoadUser(context.Background())
	if !errors.Is(err, clienterr.ErrAuthRequired) {
		t.Fatalf("no token want ErrAuthRequired got %v", err)
	}
	if session.State() != StateLoggedOut {
		t.Fatalf("state want logged_out got %s", session.State())
	}
}

func TestLoadUserRestoresFromStoredToken(t *testing.T) {
	backend := &fakeBackend{consumerToken: "consumer-jwt"}
	client, store := setupSessionTest(t, backend)
	if err := store.Set(constants.StorageKeyAccessToken, "consumer-jwt"); err != nil {
		t.Fatalf("seed token failed: %v", err)
	}
	session := NewConsumerSession(client, store)

	if err := session.LoadUser(context.Background()); err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if session.State() != StateAuthenticated {
		t.Fatalf("state want authenticated got %s", session.State())
	}
	if session.User() == nil {
		t.Fatalf("profile should be cached")
	}
}

func TestLoadUserWithStaleTokenFailsClosed(t *testing.T) {
	backend := &fakeBackend{consumerToken: "fresh-jwt"}
	client, store := setupSessionTest(t, backend)
	if err := store.Set(constants.StorageKeyAccessToken, "stale-jwt"); err != nil {
		t.Fatalf("seed token failed: %v", err)
	}
	session := NewConsumerSession(client, store)

	err := session.LoadUser(context.Background())
	if !errors.Is(err, clienterr.ErrAuthExpired) {
		t.Fatalf("stale token want ErrAuthExpired got %v", err)
	}
	if session.State() != StateLoggedOut {
		t.Fatalf("state want logged_out got %s", session.State())
	}
	if _, err := store.Get(constants.StorageKeyAccessToken); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("stale token should be purged, got %v", err)
	}
	if client.Token(api.RoleConsumer) != "" {
		t.Fatalf("client token should be cleared")
	}
}

func TestLogoutLeavesOtherIdentityIntact(t *testing.T) {
	backend := &fakeBackend{consumerToken: "consumer-jwt", merchantToken: "merchant-jwt"}
	client, store := setupSessionTest(t, backend)
	consumer := NewConsumerSession(client, store)
	merchant := NewMerchantSession(client, store)

	if err := consumer.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("consumer login failed: %v", err)
	}
	if err := merchant.Login(context.Background(), "owner@example.com", "password123"); err != nil {
		t.Fatalf("merchant login failed: %v", err)
	}
	if merchant.StoreID() != 7 {
		t.Fatalf("merchant store want 7 got %d", merchant.StoreID())
	}

	consumer.Logout()

	if consumer.State() != StateLoggedOut {
		t.Fatalf("consumer state want logged_out got %s", consumer.State())
	}
	if client.Token(api.RoleConsumer) != "" {
		t.Fatalf("consumer token should be cleared")
	}
	if merchant.State() != StateAuthenticated {
		t.Fatalf("merchant should stay authenticated, got %s", merchant.State())
	}
	if client.Token(api.RoleMerchant) != "merchant-jwt" {
		t.Fatalf("merchant token should survive consumer logout")
	}
	if _, err := store.Get(constants.StorageKeyMerchantAccessToken); err != nil {
		t.Fatalf("merchant token should stay persisted: %v", err)
	}
	if _, err := store.Get(constants.StorageKeyAccessToken); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("consumer token should be purged, got %v", err)
	}
}

func TestLogoutKeepsLastLoginEmail(t *testing.T) {
	backend := &fakeBackend{consumerToken: "consumer-jwt"}
	client, store := setupSessionTest(t, backend)
	session := NewConsumerSession(client, store)

	if err := session.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	session.Logout()

	if session.LastLoginEmail() != "user@example.com" {
		t.Fatalf("last login email should survive logout")
	}
}
