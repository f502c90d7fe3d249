package helpers

import "testing"

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher()

	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !h.Compare(hash, "password123") {
		t.Fatal("Compare rejected the correct password")
	}
	if h.Compare(hash, "wrong") {
		t.Fatal("Compare accepted a wrong password")
	}
}
