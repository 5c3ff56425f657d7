package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hashed == "correct horse battery" {
		t.Fatal("expected the stored value to be a hash")
	}
	if err := CheckPassword(hashed, "correct horse battery"); err != nil {
		t.Fatalf("expected the right password to verify, got %v", err)
	}
	if err := CheckPassword(hashed, "wrong password"); err == nil {
		t.Fatal("expected an error for a wrong password")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Fatal("expected too-short password to be rejected")
	}
	if err := ValidatePassword("long enough now"); err != nil {
		t.Fatalf("expected password to pass, got %v", err)
	}
}
