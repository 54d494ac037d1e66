package auth

import (
	"testing"
	"time"

	"github.com/essenza-market/essenza-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "essenza-test",
		ExpirationDays: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, IsAdmin: true})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("UserID = %s, want %s", claims.UserID, userID)
	}
	if !claims.IsAdmin {
		t.Fatal("IsAdmin not preserved")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("Issuer = %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("jti should be populated")
	}

	wantExpiry := now.Add(30 * 24 * time.Hour)
	if got := claims.ExpiresAt.Time; got.Sub(wantExpiry) > time.Second || wantExpiry.Sub(got) > time.Second {
		t.Fatalf("ExpiresAt = %s, want ~%s", got, wantExpiry)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now()
	payload := AccessTokenPayload{UserID: uuid.New()}

	cfg := testJWTConfig()
	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, now, payload); err == nil {
		t.Fatal("missing secret should fail")
	}

	cfg = testJWTConfig()
	cfg.Issuer = ""
	if _, err := MintAccessToken(cfg, now, payload); err == nil {
		t.Fatal("missing issuer should fail")
	}

	cfg = testJWTConfig()
	cfg.ExpirationDays = 0
	if _, err := MintAccessToken(cfg, now, payload); err == nil {
		t.Fatal("zero expiration should fail")
	}

	if _, err := MintAccessToken(testJWTConfig(), now, AccessTokenPayload{}); err == nil {
		t.Fatal("nil user id should fail")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().Add(-31 * 24 * time.Hour)

	signed, err := MintAccessToken(cfg, past, AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expired token should be rejected")
	}
}

func TestParseAccessTokenRejectsWrongIssuerAndAlg(t *testing.T) {
	cfg := testJWTConfig()

	signed, err := MintAccessToken(config.JWTConfig{Secret: cfg.Secret, Issuer: "other", ExpirationDays: 1}, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("wrong issuer should be rejected")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{
		UserID:           uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: cfg.Issuer},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := ParseAccessToken(cfg, unsigned); err == nil {
		t.Fatal("alg=none should be rejected")
	}
}
