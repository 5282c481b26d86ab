package secret

import (
	"strings"
	"testing"
)

func TestObfuscateRoundTrip(t *testing.T) {
	kr, err := NewKeyring()
	if err != nil {
		t.Fatalf("NewKeyring() error: %v", err)
	}

	tests := []string{
		"hunter2",
		"비밀번호123",
		"a",
		strings.Repeat("x", 100), // longer than the key
	}

	for _, plain := range tests {
		obf := kr.Obfuscate(plain)
		if obf == plain {
			t.Errorf("Obfuscate(%q) returned the plaintext", plain)
		}
		if got := kr.Reveal(obf); got != plain {
			t.Errorf("Reveal(Obfuscate(%q)) = %q", plain, got)
		}
	}
}

func TestObfuscateEmpty(t *testing.T) {
	kr := NewKeyringFromSeed([]byte("seed"))
	if kr.Obfuscate("") != "" {
		t.Error("Obfuscate of empty string should be empty")
	}
	if kr.Reveal("") != "" {
		t.Error("Reveal of empty string should be empty")
	}
}

func TestRevealInvalidBase64(t *testing.T) {
	kr := NewKeyringFromSeed([]byte("seed"))
	if got := kr.Reveal("not base64!!!"); got != "" {
		t.Errorf("Reveal of invalid input = %q, want empty", got)
	}
}

func TestKeyringsAreIndependent(t *testing.T) {
	a, _ := NewKeyring()
	b, _ := NewKeyring()

	obf := a.Obfuscate("password")
	if got := b.Reveal(obf); got == "password" {
		t.Error("a credential obfuscated under one keyring should not reveal under another")
	}
}

func TestSeededKeyringIsDeterministic(t *testing.T) {
	a := NewKeyringFromSeed([]byte("fixed"))
	b := NewKeyringFromSeed([]byte("fixed"))
	if a.Obfuscate("pw") != b.Obfuscate("pw") {
		t.Error("same seed should produce the same obfuscation")
	}
}
