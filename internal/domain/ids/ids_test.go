package ids

import "testing"

func TestNewULID(t *testing.T) {
	id, err := NewULID()
	if err != nil {
		t.Fatalf("new ulid: %v", err)
	}
	if !IsULID(id) {
		t.Fatalf("generated id is not a valid ULID: %q", id)
	}
}

func TestValidateULID(t *testing.T) {
	valid := []string{
		"01HQZX3Y4K6F7G8H9J0K1M2N3P",
		"01hqzx3y4k6f7g8h9j0k1m2n3p",
	}
	for _, value := range valid {
		if err := ValidateULID(value); err != nil {
			t.Fatalf("expected %q to validate, got %v", value, err)
		}
	}

	invalid := []string{
		"",
		"not-a-valid-id",
		"01HQZX3Y4K6F7G8H9J0K1M2N3",   // too short
		"01HQZX3Y4K6F7G8H9J0K1M2N3PP", // too long
		"01HQZX3Y4K6F7G8H9J0K1M2NIL",  // I and L excluded from Crockford base32
	}
	for _, value := range invalid {
		if err := ValidateULID(value); err == nil {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}
