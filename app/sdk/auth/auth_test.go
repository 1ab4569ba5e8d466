package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/app/sdk/auth"
	"github.com/hexalytics/portal/business/types/role"
	"github.com/hexalytics/portal/foundation/keystore"
	"github.com/hexalytics/portal/foundation/logger"
)

const (
	kid    = "test-key"
	issuer = "portal test"
)

func newTestAuth(t *testing.T) *auth.Auth {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %s", err)
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	ks := keystore.New()
	if err := ks.Add(kid, string(privatePEM)); err != nil {
		t.Fatalf("adding key: %s", err)
	}

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	return auth.New(auth.Config{
		Log:       log,
		KeyLookup: ks,
		Issuer:    issuer,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	ath := newTestAuth(t)
	ctx := context.Background()

	userID := uuid.New()

	token, err := ath.GenerateToken(kid, userID, role.Admin)
	if err != nil {
		t.Fatalf("generating token: %s", err)
	}

	claims, err := ath.Authenticate(ctx, "Bearer "+token)
	if err != nil {
		t.Fatalf("authenticating: %s", err)
	}

	if claims.Subject != userID.String() {
		t.Errorf("subject: got %s, want %s", claims.Subject, userID)
	}

	if claims.Role != "ADMIN" {
		t.Errorf("role: got %s, want ADMIN", claims.Role)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	ath := newTestAuth(t)
	ctx := context.Background()

	if _, err := ath.Authenticate(ctx, "no bearer prefix"); err == nil {
		t.Error("expected error for missing Bearer prefix")
	}

	if _, err := ath.Authenticate(ctx, "Bearer not.a.token"); err == nil {
		t.Error("expected error for a malformed token")
	}

	// A token from a different signing key must be rejected.
	other := newTestAuth(t)
	token, err := other.GenerateToken(kid, uuid.New(), role.User)
	if err != nil {
		t.Fatalf("generating token: %s", err)
	}

	if _, err := ath.Authenticate(ctx, "Bearer "+token); err == nil {
		t.Error("expected error for a token signed with a foreign key")
	}
}

func TestAuthorize(t *testing.T) {
	ath := newTestAuth(t)
	ctx := context.Background()

	claims := auth.Claims{Role: "USER"}

	if err := ath.Authorize(ctx, claims, role.User); err != nil {
		t.Errorf("allowed role: unexpected error: %s", err)
	}

	if err := ath.Authorize(ctx, claims, role.Admin); err == nil {
		t.Error("USER should not pass an ADMIN only check")
	}

	// No configured roles means deny.
	if err := ath.Authorize(ctx, claims); err == nil {
		t.Error("empty role list should deny")
	}
}
