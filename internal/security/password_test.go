package security

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("senha-secreta")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword() returned empty hash")
	}
	if hash == "senha-secreta" {
		t.Fatal("HashPassword() returned the plaintext password")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("senha-secreta")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"correct password", "senha-secreta", true},
		{"wrong password", "outra-senha", false},
		{"empty password", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckPassword(tt.password, hash)
			if result != tt.expected {
				t.Errorf("CheckPassword(%q) = %v, want %v", tt.password, result, tt.expected)
			}
		})
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	if CheckPassword("senha", "not-a-bcrypt-hash") {
		t.Error("CheckPassword() should return false for a malformed hash")
	}
}
