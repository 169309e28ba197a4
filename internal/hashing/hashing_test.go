package hashing

import "testing"

func TestHashAndVerify(t *testing.T) {
	h := New(DefaultCost)

	digest, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !h.Verify("correct horse battery staple", digest) {
		t.Fatal("expected matching plaintext to verify")
	}
	if h.Verify("wrong password", digest) {
		t.Fatal("expected mismatched plaintext to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := New(DefaultCost)

	first, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == second {
		t.Fatal("expected two hashes of the same plaintext to differ")
	}
	if !h.Verify("same input", first) || !h.Verify("same input", second) {
		t.Fatal("expected both digests to verify")
	}
}

func TestVerifyMalformedDigestFailsClosed(t *testing.T) {
	h := New(DefaultCost)

	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$garbage"} {
		if h.Verify("anything", digest) {
			t.Fatalf("expected malformed digest %q to fail verification", digest)
		}
	}
}

func TestNewClampsCost(t *testing.T) {
	h := New(99)
	if h.cost != DefaultCost {
		t.Fatalf("expected out-of-range cost to fall back to %d, got %d", DefaultCost, h.cost)
	}
}
