package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testKeyID  = "test-key-cp"
	testIssuer = "https://idp.test/realms/portal"
)

// generateTestKey генерирует RSA ключ для тестов.
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

// buildJWKSetJSON строит JWKS JSON из RSA публичного ключа.
func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}
	data, _ := json.Marshal(jwks)
	return data
}

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJWTAuth(t *testing.T, key *rsa.PrivateKey) *JWTAuth {
	t.Helper()
	kf, err := keyfunc.NewJWKSetJSON(buildJWKSetJSON(&key.PublicKey, testKeyID))
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}
	return NewJWTAuthWithKeyfunc(kf, testIssuer, testLogger())
}

// signToken подписывает claims ключом key, заполняя недостающие стандартные поля.
func signToken(t *testing.T, key *rsa.PrivateKey, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["iss"]; !ok {
		claims["iss"] = testIssuer
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	token := jwt.NewWithClaims(method, claims)
	token.Header["kid"] = testKeyID
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return tokenStr
}

// TestJWTAuth_ValidToken — sub из токена становится владельцем.
func TestJWTAuth_ValidToken(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key)

	var gotOwner string
	var gotClaims *AuthClaims
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner = OwnerFromContext(r.Context())
		gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tokenStr := signToken(t, key, jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":                "owner-42",
		"preferred_username": "agency",
		"email":              "agency@example.com",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался статус 200, получен %d, тело: %s", rec.Code, rec.Body.String())
	}
	if gotOwner != "owner-42" {
		t.Errorf("OwnerFromContext = %q, ожидался %q", gotOwner, "owner-42")
	}
	if gotClaims == nil || gotClaims.PreferredUsername != "agency" || gotClaims.Email != "agency@example.com" {
		t.Errorf("claims = %+v", gotClaims)
	}
}

// TestJWTAuth_Rejected — все варианты отказа дают 401.
func TestJWTAuth_Rejected(t *testing.T) {
	key := generateTestKey(t)
	otherKey := generateTestKey(t)
	auth := newTestJWTAuth(t, key)

	tests := []struct {
		name   string
		header string
	}{
		{"нет заголовка", ""},
		{"не Bearer", "Basic dXNlcjpwYXNz"},
		{"пустой токен", "Bearer "},
		{"мусор", "Bearer not-a-jwt"},
		{"просрочен", "Bearer " + signToken(t, key, jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "owner-1",
			"exp": jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		})},
		{"без exp", "Bearer " + func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "owner-1", "iss": testIssuer})
			token.Header["kid"] = testKeyID
			s, _ := token.SignedString(key)
			return s
		}()},
		{"чужой issuer", "Bearer " + signToken(t, key, jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "owner-1",
			"iss": "https://evil.test",
		})},
		{"чужой ключ", "Bearer " + signToken(t, otherKey, jwt.SigningMethodRS256, jwt.MapClaims{"sub": "owner-1"})},
		{"без sub", "Bearer " + signToken(t, key, jwt.SigningMethodRS256, jwt.MapClaims{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				t.Error("обработчик не должен вызываться")
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("ожидался статус 401, получен %d", rec.Code)
			}
			var body map[string]map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("тело ответа не JSON: %v", err)
			}
			if body["error"]["code"] != "UNAUTHORIZED" {
				t.Errorf("code = %q, ожидался UNAUTHORIZED", body["error"]["code"])
			}
		})
	}
}

func TestOwnerFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := OwnerFromContext(req.Context()); got != "" {
		t.Errorf("OwnerFromContext = %q, ожидалась пустая строка", got)
	}
	ctx := WithClaims(req.Context(), &AuthClaims{Subject: "owner-7"})
	if got := OwnerFromContext(ctx); got != "owner-7" {
		t.Errorf("OwnerFromContext = %q, ожидался owner-7", got)
	}
}

func TestJWKSReadinessChecker(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus string
	}{
		{"ключи есть", http.StatusOK, `{"keys":[{"kty":"RSA"}]}`, "ok"},
		{"нет ключей", http.StatusOK, `{"keys":[]}`, "degraded"},
		{"невалидный JSON", http.StatusOK, `not json`, "degraded"},
		{"ошибка сервера", http.StatusInternalServerError, `{}`, "fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			status, msg := NewJWKSReadinessChecker(srv.URL, time.Second).CheckReady()
			if status != tt.wantStatus {
				t.Errorf("CheckReady() = %q (%s), ожидался %q", status, msg, tt.wantStatus)
			}
		})
	}
}
