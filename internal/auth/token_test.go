package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func testCodec(t *testing.T, current *time.Time, opts ...CodecOption) *TokenCodec {
	t.Helper()
	opts = append([]CodecOption{
		WithIssuer("roomtime-test"),
		WithClock(func() time.Time { return *current }),
	}, opts...)
	codec, err := NewTokenCodec("test-signing-secret", opts...)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func TestTokenCodecRoundTrip(t *testing.T) {
	current := time.Now()
	codec := testCodec(t, &current)

	token, expiresAt, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got, want := expiresAt.Sub(current.UTC()), codec.TTL(); got != want {
		t.Fatalf("expiry %v from now, want %v", got, want)
	}

	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
}

func TestTokenCodecExpiry(t *testing.T) {
	current := time.Now()
	codec := testCodec(t, &current, WithTTL(time.Minute))

	token, _, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Decode(token); err != nil {
		t.Fatalf("Decode before expiry: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := codec.Decode(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenCodecRejectsTamperedPayload(t *testing.T) {
	current := time.Now()
	codec := testCodec(t, &current)

	token, _, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		t.Fatalf("unexpected token shape %q", token)
	}
	payload, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	forged := strings.Replace(string(payload), "user-1", "user-2", 1)
	segments[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	if _, err := codec.Decode(strings.Join(segments, ".")); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenCodecRejectsForeignSecret(t *testing.T) {
	current := time.Now()
	codec := testCodec(t, &current)

	foreign, err := NewTokenCodec("some-other-secret",
		WithIssuer("roomtime-test"),
		WithClock(func() time.Time { return current }),
	)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	token, _, err := foreign.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Decode(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenCodecRejectsGarbage(t *testing.T) {
	current := time.Now()
	codec := testCodec(t, &current)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d", "not.a.jwt"} {
		if _, err := codec.Decode(raw); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Decode(%q): expected ErrTokenMalformed, got %v", raw, err)
		}
	}
}

func TestTokenCodecRequiresSecretAndSubject(t *testing.T) {
	if _, err := NewTokenCodec("  "); err == nil {
		t.Fatalf("expected error for blank secret")
	}
	current := time.Now()
	codec := testCodec(t, &current)
	if _, _, err := codec.Issue(" "); err == nil {
		t.Fatalf("expected error for blank subject")
	}
}
