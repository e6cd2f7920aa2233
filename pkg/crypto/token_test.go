package crypto

import (
	"encoding/base64"
	"regexp"
	"testing"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateHashedToken(t *testing.T) {
	pair, err := GenerateHashedToken()
	if err != nil {
		t.Fatalf("GenerateHashedToken() error = %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(pair.Token)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != DefaultTokenLength {
		t.Errorf("token carries %d bytes, want %d", len(raw), DefaultTokenLength)
	}
	if !hexDigest.MatchString(pair.Hash) {
		t.Errorf("hash %q is not a SHA-256 hex digest", pair.Hash)
	}
	if pair.Hash != HashToken(pair.Token) {
		t.Error("hash does not match HashToken(token)")
	}
}

// Requirement: session ids are unguessable; no two issued tokens collide.
func TestGenerateHashedToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		pair, err := GenerateHashedToken()
		if err != nil {
			t.Fatalf("GenerateHashedToken() error = %v", err)
		}
		if seen[pair.Token] {
			t.Fatalf("duplicate token after %d iterations", i)
		}
		seen[pair.Token] = true
	}
}

func TestHashToken(t *testing.T) {
	// sha256("abc")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashToken("abc"); got != want {
		t.Errorf("HashToken(abc) = %s, want %s", got, want)
	}
	if HashToken("abc") == HashToken("abd") {
		t.Error("different tokens hashed equal")
	}
}
