package helpers_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/oksasatya/user-management-api/pkg/helpers"
)

func TestHashPassword(t *testing.T) {
	hash, err := helpers.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" || hash == "secret1" {
		t.Fatalf("hash must be non-empty and differ from plaintext, got %q", hash)
	}
	if !helpers.CompareHashAndPassword(hash, "secret1") {
		t.Fatalf("expected password to verify")
	}
	if helpers.CompareHashAndPassword(hash, "secret2") {
		t.Fatalf("wrong password must not verify")
	}
	if helpers.CompareHashAndPassword("", "secret1") {
		t.Fatalf("empty hash must never verify")
	}

	again, _ := helpers.HashPassword("secret1")
	if again == hash {
		t.Fatalf("hashes should be salted")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	long := strings.Repeat("x", helpers.MaxPasswordBytes+1)
	if _, err := helpers.HashPassword(long); !errors.Is(err, helpers.ErrPasswordTooLong) {
		t.Fatalf("got %v, want ErrPasswordTooLong", err)
	}
	if _, err := helpers.HashPassword(long[:helpers.MaxPasswordBytes]); err != nil {
		t.Fatalf("72 bytes should hash: %v", err)
	}
}

func TestCompareDummy(t *testing.T) {
	if helpers.CompareDummy("not-a-real-password") {
		t.Fatalf("CompareDummy must never report a match")
	}
}
