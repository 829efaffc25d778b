// Package firebaseauth verifies Firebase Authentication ID tokens against the
// public keys Google publishes for the securetoken service account.
package firebaseauth

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

const issuerPrefix = "https://securetoken.google.com/"

const keyCacheTTL = time.Hour

var (
	ErrInvalidToken = errors.New("firebaseauth: invalid token")
	ErrExpired      = errors.New("firebaseauth: token expired")
)

// Identity is the verified subset of the ID token claims.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Verifier checks signature, issuer, audience and expiry of ID tokens for
// one Firebase project. Keys are cached for an hour and refetched on an
// unknown kid.
type Verifier struct {
	projectID  string
	jwksURL    string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.RWMutex
	cache   map[string]*rsa.PublicKey
	fetched time.Time
}

// NewVerifier creates a verifier. A nil client gets a 10s timeout client.
func NewVerifier(projectID, jwksURL string, client *http.Client) *Verifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Verifier{
		projectID:  projectID,
		jwksURL:    jwksURL,
		httpClient: client,
		now:        time.Now,
		cache:      make(map[string]*rsa.PublicKey),
	}
}

func (v *Verifier) VerifyIDToken(ctx context.Context, token string) (*Identity, error) {
	header, payload, signature, signingInput, err := parseJWT(token)
	if err != nil {
		return nil, err
	}
	if alg, _ := header["alg"].(string); alg != "RS256" {
		return nil, fmt.Errorf("%w: unexpected alg %q", ErrInvalidToken, alg)
	}
	if err := v.ensureKeys(ctx); err != nil {
		return nil, err
	}
	kid, _ := header["kid"].(string)
	key, ok := v.keyFor(kid)
	if !ok {
		if err := v.refresh(ctx); err != nil {
			return nil, err
		}
		key, ok = v.keyFor(kid)
		if !ok {
			return nil, fmt.Errorf("%w: unknown kid", ErrInvalidToken)
		}
	}
	hashed := sha256.Sum256([]byte(signingInput))
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, hashed[:], signature); err != nil {
		return nil, fmt.Errorf("%w: bad signature", ErrInvalidToken)
	}
	if iss, _ := payload["iss"].(string); iss != issuerPrefix+v.projectID {
		return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}
	if !audienceMatches(payload["aud"], v.projectID) {
		return nil, fmt.Errorf("%w: invalid audience", ErrInvalidToken)
	}
	now := v.now().Unix()
	exp, ok := payload["exp"].(float64)
	if !ok || now > int64(exp) {
		return nil, ErrExpired
	}
	if iat, ok := payload["iat"].(float64); ok && int64(iat) > now+60 {
		return nil, fmt.Errorf("%w: issued in the future", ErrInvalidToken)
	}
	sub, _ := payload["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	id := &Identity{UID: sub}
	id.Email, _ = payload["email"].(string)
	id.EmailVerified, _ = payload["email_verified"].(bool)
	id.Name, _ = payload["name"].(string)
	return id, nil
}

func (v *Verifier) ensureKeys(ctx context.Context) error {
	v.mu.RLock()
	fresh := v.now().Sub(v.fetched) < keyCacheTTL && len(v.cache) > 0
	v.mu.RUnlock()
	if fresh {
		return nil
	}
	return v.refresh(ctx)
}

func (v *Verifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("firebaseauth: fetch keys: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("firebaseauth: fetch keys: status %d", resp.StatusCode)
	}
	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("firebaseauth: decode keys: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey)
	for _, key := range set.Keys {
		if key.Kty != "RSA" {
			continue
		}
		pub, err := rsaKeyFromJWK(key)
		if err != nil {
			continue
		}
		keys[key.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("firebaseauth: no keys fetched")
	}
	v.mu.Lock()
	v.cache = keys
	v.fetched = v.now()
	v.mu.Unlock()
	return nil
}

func (v *Verifier) keyFor(kid string) (*rsa.PublicKey, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	pk, ok := v.cache[kid]
	return pk, ok
}

func audienceMatches(aud any, projectID string) bool {
	switch a := aud.(type) {
	case string:
		return a == projectID
	case []any:
		for _, item := range a {
			if s, ok := item.(string); ok && s == projectID {
				return true
			}
		}
	case []string:
		for _, s := range a {
			if s == projectID {
				return true
			}
		}
	}
	return false
}

func rsaKeyFromJWK(j jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}

func parseJWT(token string) (map[string]any, map[string]any, []byte, string, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, nil, nil, "", ErrInvalidToken
	}
	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, nil, "", ErrInvalidToken
	}
	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, nil, "", ErrInvalidToken
	}
	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, nil, nil, "", ErrInvalidToken
	}
	var header map[string]any
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, nil, "", ErrInvalidToken
	}
	var payload map[string]any
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, nil, nil, "", ErrInvalidToken
	}
	return header, payload, signature, parts[0] + "." + parts[1], nil
}
