package stores

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/authstate/codec"
	"github.com/google/go-cmp/cmp"
)

func TestCredentialReadAbsent(t *testing.T) {
	f := newStoresTest(t, nil)

	creds, err := f.creds.Read(context.Background(), "1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if creds != nil {
		t.Fatalf("expected nil credentials, got %v", creds)
	}
}

func TestCredentialWriteReadRoundTrip(t *testing.T) {
	f := newStoresTest(t, nil)
	ctx := context.Background()

	want := map[string]any{
		"noiseKey":       map[string]any{"private": []byte{0, 1, 254, 255}},
		"registrationId": json.Number("4021"),
		"me":             nil,
	}
	if err := f.creds.Write(ctx, "7", want, 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ttl := f.mr.TTL("baileys:session:7:creds"); ttl != 0 {
		t.Fatalf("expected no expiry, got %s", ttl)
	}

	got, err := f.creds.Read(ctx, "7")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("credentials mismatch (-want +got):\n%s", diff)
	}
}

func TestCredentialWriteTTL(t *testing.T) {
	f := newStoresTest(t, nil)
	ctx := context.Background()

	if err := f.creds.Write(ctx, "1", map[string]any{"a": "b"}, time.Hour); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ttl := f.mr.TTL("baileys:session:1:creds"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}

	if err := f.creds.Write(ctx, "2", "x", 1500*time.Millisecond); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ttl := f.mr.TTL("baileys:session:2:creds"); ttl != 2*time.Second {
		t.Fatalf("expected sub-second remainder rounded up to 2s, got %s", ttl)
	}
}

func TestCredentialReadCorrupt(t *testing.T) {
	f := newStoresTest(t, nil)
	if err := f.mr.Set("baileys:session:1:creds", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	creds, err := f.creds.Read(context.Background(), "1")
	if !errors.Is(err, codec.ErrMalformed) {
		t.Fatalf("expected codec.ErrMalformed, got %v", err)
	}
	if creds != nil {
		t.Fatalf("expected nil credentials on failure, got %v", creds)
	}
}

func TestCredentialStoreDown(t *testing.T) {
	f := newStoresTest(t, nil)
	f.mr.Close()
	ctx := context.Background()

	if _, err := f.creds.Read(ctx, "1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("read: expected ErrStoreUnavailable, got %v", err)
	}
	if err := f.creds.Write(ctx, "1", "x", 0); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("write: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestCredentialWriteEncodeFailure(t *testing.T) {
	f := newStoresTest(t, nil)
	bad := map[string]any{"type": "Buffer", "data": "AA=="}

	if err := f.creds.Write(context.Background(), "1", bad, 0); !errors.Is(err, codec.ErrReservedShape) {
		t.Fatalf("expected codec.ErrReservedShape, got %v", err)
	}
	if f.mr.Exists("baileys:session:1:creds") {
		t.Fatal("nothing must be written when encoding fails")
	}
}

func TestWholeSeconds(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		-time.Second:       0,
		0:                  0,
		time.Millisecond:   time.Second,
		time.Second:        time.Second,
		90*time.Second + 1: 91 * time.Second,
		24 * time.Hour:     24 * time.Hour,
	}
	for in, want := range cases {
		if got := WholeSeconds(in); got != want {
			t.Fatalf("WholeSeconds(%s) = %s, want %s", in, got, want)
		}
	}
}
