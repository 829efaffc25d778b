package firebaseauth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestAudienceMatches(t *testing.T) {
	cases := []struct {
		name    string
		aud     any
		project string
		want    bool
	}{
		{name: "string match", aud: "artwall", project: "artwall", want: true},
		{name: "string mismatch", aud: "artwall", project: "other", want: false},
		{name: "slice any match", aud: []any{"other", "artwall"}, project: "artwall", want: true},
		{name: "slice any mismatch", aud: []any{"other", 1}, project: "artwall", want: false},
		{name: "slice string match", aud: []string{"artwall", "alt"}, project: "artwall", want: true},
		{name: "missing", aud: nil, project: "artwall", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := audienceMatches(tc.aud, tc.project); got != tc.want {
				t.Fatalf("audienceMatches(%v, %q) = %v, want %v", tc.aud, tc.project, got, tc.want)
			}
		})
	}
}

type keyServer struct {
	key   *rsa.PrivateKey
	kid   string
	hits  atomic.Int32
	serve *httptest.Server
}

func newKeyServer(t *testing.T) *keyServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	ks := &keyServer{key: key, kid: "k1"}
	ks.serve = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ks.hits.Add(1)
		pub := ks.key.PublicKey
		set := jwks{Keys: []jwk{{
			Kid: ks.kid,
			Kty: "RSA",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}}
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(ks.serve.Close)
	return ks
}

func (ks *keyServer) sign(t *testing.T, kid string, claims map[string]any) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "RS256", "kid": kid, "typ": "JWT"})
	payload, _ := json.Marshal(claims)
	input := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(payload)
	hashed := sha256.Sum256([]byte(input))
	sig, err := rsa.SignPKCS1v15(rand.Reader, ks.key, crypto.SHA256, hashed[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return input + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func validClaims(now time.Time) map[string]any {
	return map[string]any{
		"iss":            issuerPrefix + "artwall",
		"aud":            "artwall",
		"sub":            "uid-1",
		"email":          "owner@example.com",
		"email_verified": true,
		"iat":            now.Add(-time.Minute).Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func TestVerifyIDToken(t *testing.T) {
	ks := newKeyServer(t)
	now := time.Now()
	v := NewVerifier("artwall", ks.serve.URL, ks.serve.Client())

	id, err := v.VerifyIDToken(context.Background(), ks.sign(t, "k1", validClaims(now)))
	if err != nil {
		t.Fatalf("VerifyIDToken() error: %v", err)
	}
	if id.UID != "uid-1" || id.Email != "owner@example.com" || !id.EmailVerified {
		t.Fatalf("VerifyIDToken() = %+v", id)
	}

	if _, err := v.VerifyIDToken(context.Background(), ks.sign(t, "k1", validClaims(now))); err != nil {
		t.Fatalf("second VerifyIDToken() error: %v", err)
	}
	if got := ks.hits.Load(); got != 1 {
		t.Fatalf("expected cached keys, fetched %d times", got)
	}
}

func TestVerifyIDTokenRejects(t *testing.T) {
	ks := newKeyServer(t)
	now := time.Now()
	v := NewVerifier("artwall", ks.serve.URL, ks.serve.Client())

	mutate := func(f func(map[string]any)) map[string]any {
		c := validClaims(now)
		f(c)
		return c
	}
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "garbage", token: "not-a-jwt", wantErr: ErrInvalidToken},
		{name: "wrong issuer", token: ks.sign(t, "k1", mutate(func(c map[string]any) { c["iss"] = "https://accounts.google.com" })), wantErr: ErrInvalidToken},
		{name: "wrong audience", token: ks.sign(t, "k1", mutate(func(c map[string]any) { c["aud"] = "other" })), wantErr: ErrInvalidToken},
		{name: "expired", token: ks.sign(t, "k1", mutate(func(c map[string]any) { c["exp"] = now.Add(-time.Minute).Unix() })), wantErr: ErrExpired},
		{name: "empty subject", token: ks.sign(t, "k1", mutate(func(c map[string]any) { c["sub"] = "" })), wantErr: ErrInvalidToken},
		{name: "unknown kid", token: ks.sign(t, "k9", validClaims(now)), wantErr: ErrInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.VerifyIDToken(context.Background(), tc.token)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("VerifyIDToken() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
