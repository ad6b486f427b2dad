package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProject = "blood-donate-test"

type jwksServer struct {
	*httptest.Server
	hits   atomic.Int32
	status atomic.Int32
	delay  atomic.Int64
}

func newJWKSServer(t *testing.T, keys ...jose.JSONWebKey) *jwksServer {
	t.Helper()
	body, err := json.Marshal(jose.JSONWebKeySet{Keys: keys})
	require.NoError(t, err)

	s := &jwksServer{}
	s.status.Store(http.StatusOK)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		time.Sleep(time.Duration(s.delay.Load()))
		if code := int(s.status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=600, must-revalidate")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func publicJWK(key *rsa.PrivateKey, kid string) jose.JSONWebKey {
	return jose.JSONWebKey{Key: &key.PublicKey, KeyID: kid, Algorithm: "RS256", Use: "sig"}
}

func validClaims() *Claims {
	now := time.Now()
	return &Claims{
		Email:         "Donor@Example.com",
		EmailVerified: true,
		Name:          "Donor",
		RegisteredClaims: gjwt.RegisteredClaims{
			Issuer:    firebaseIssuerPrefix + testProject,
			Audience:  gjwt.ClaimStrings{testProject},
			Subject:   "uid-1",
			IssuedAt:  gjwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: gjwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func sign(t *testing.T, key *rsa.PrivateKey, kid string, claims *Claims) string {
	t.Helper()
	token := gjwt.NewWithClaims(gjwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerifier_ValidToken(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, publicJWK(key, "k1"))
	v := NewVerifier(testProject, NewKeySet(srv.URL, time.Hour, srv.Client()))

	claims, err := v.ValidateToken(context.Background(), sign(t, key, "k1", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "donor@example.com", claims.Email)
	assert.Equal(t, "uid-1", claims.Subject)
	assert.True(t, claims.EmailVerified)

	_, err = v.ValidateToken(context.Background(), sign(t, key, "k1", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load(), "keys are cached between validations")
}

func TestVerifier_Rejections(t *testing.T) {
	key := newRSAKey(t)
	other := newRSAKey(t)
	srv := newJWKSServer(t, publicJWK(key, "k1"))
	v := NewVerifier(testProject, NewKeySet(srv.URL, time.Hour, srv.Client()))

	wrongAudience := validClaims()
	wrongAudience.Audience = gjwt.ClaimStrings{"another-project"}

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://securetoken.google.com/another-project"

	noEmail := validClaims()
	noEmail.Email = ""

	expired := validClaims()
	expired.ExpiresAt = gjwt.NewNumericDate(time.Now().Add(-time.Hour))

	hmac := gjwt.NewWithClaims(gjwt.SigningMethodHS256, validClaims())
	hmac.Header["kid"] = "k1"
	hmacToken, err := hmac.SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong audience", sign(t, key, "k1", wrongAudience), ErrInvalidToken},
		{"wrong issuer", sign(t, key, "k1", wrongIssuer), ErrInvalidToken},
		{"missing email", sign(t, key, "k1", noEmail), ErrInvalidToken},
		{"wrong signing key", sign(t, other, "k1", validClaims()), ErrInvalidToken},
		{"hmac algorithm", hmacToken, ErrInvalidToken},
		{"expired", sign(t, key, "k1", expired), ErrExpiredToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateToken(context.Background(), tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVerifier_UnknownKidRefetchesOnce(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, publicJWK(key, "k1"))
	keys := NewKeySet(srv.URL, time.Hour, srv.Client())
	keys.minRefresh = 0
	v := NewVerifier(testProject, keys)

	_, err := v.ValidateToken(context.Background(), sign(t, key, "k1", validClaims()))
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), sign(t, key, "rotated", validClaims()))
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestVerifier_KeyEndpointDown(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, publicJWK(key, "k1"))
	srv.status.Store(http.StatusInternalServerError)
	v := NewVerifier(testProject, NewKeySet(srv.URL, time.Hour, srv.Client()))

	_, err := v.ValidateToken(context.Background(), sign(t, key, "k1", validClaims()))
	assert.ErrorIs(t, err, ErrKeysUnavailable)
}

func TestVerifier_StaleKeysServedWhileEndpointDown(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, publicJWK(key, "k1"))
	keys := NewKeySet(srv.URL, time.Hour, srv.Client())
	v := NewVerifier(testProject, keys)

	_, err := v.ValidateToken(context.Background(), sign(t, key, "k1", validClaims()))
	require.NoError(t, err)

	keys.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	srv.status.Store(http.StatusBadGateway)

	_, err = v.ValidateToken(context.Background(), sign(t, key, "k1", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestVerifier_MissingProject(t *testing.T) {
	v := NewVerifier("", NewKeySet("http://127.0.0.1:0", time.Hour, nil))
	_, err := v.ValidateToken(context.Background(), "x.y.z")
	assert.ErrorIs(t, err, ErrKeysUnavailable)
}

func TestKeySet_ConcurrentFirstFetchShared(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, publicJWK(key, "k1"))
	keys := NewKeySet(srv.URL, time.Hour, srv.Client())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := keys.Key(context.Background(), "k1")
			assert.NoError(t, err)
			assert.NotNil(t, got)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestKeySet_CanceledCallerDoesNotFailWaiters(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, publicJWK(key, "k1"))
	srv.delay.Store(int64(100 * time.Millisecond))
	keys := NewKeySet(srv.URL, time.Hour, srv.Client())

	first, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	var waiterErr error
	go func() {
		defer wg.Done()
		time.Sleep(time.Millisecond)
		_, waiterErr = keys.Key(context.Background(), "k1")
	}()

	_, err := keys.Key(first, "k1")
	require.ErrorIs(t, err, ErrKeysUnavailable)

	wg.Wait()
	require.NoError(t, waiterErr)
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 600*time.Second, maxAge("public, max-age=600, must-revalidate"))
	assert.Equal(t, time.Duration(0), maxAge("no-cache"))
	assert.Equal(t, time.Duration(0), maxAge("max-age=abc"))
	assert.Equal(t, time.Duration(0), maxAge(""))
}
