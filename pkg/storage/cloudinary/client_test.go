package cloudinary

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func TestSign(t *testing.T) {
	client := &Client{apiSecret: "shhh"}

	got := client.sign(map[string]string{
		"timestamp": "1700000000",
		"folder":    "essenza/products",
	})

	// Parameters must be sorted alphabetically before hashing.
	sum := sha1.Sum([]byte("folder=essenza/products&timestamp=1700000000" + "shhh"))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Fatalf("sign = %s, want %s", got, want)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := sanitizeFileName("  "); got != "upload" {
		t.Fatalf("blank name = %q", got)
	}
	if got := sanitizeFileName("bottle.jpg"); got != "bottle.jpg" {
		t.Fatalf("name = %q", got)
	}
}
