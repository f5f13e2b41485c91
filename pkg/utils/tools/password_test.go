package tools

import (
	"strings"
	"testing"
)

func TestRandomPassword(t *testing.T) {
	// 测试默认长度（16位）
	password := RandomPassword(0)
	if len(password) != 16 {
		t.Errorf("Expected password length 16, got %d", len(password))
	}

	// 测试自定义长度
	customPassword := RandomPassword(20)
	if len(customPassword) != 20 {
		t.Errorf("Expected password length 20, got %d", len(customPassword))
	}

	for _, c := range customPassword {
		if !strings.ContainsRune(passwordChars, c) {
			t.Errorf("Unexpected char %q in password", c)
		}
	}
}

func TestCryptography(t *testing.T) {
	crypto := NewCryptography("approvalctl")

	texts := []string{
		"",
		"codelieche",
		"0123456789abcdef",
		"eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.signature",
	}

	for _, text := range texts {
		encrypted, err := crypto.Encrypt(text)
		if err != nil {
			t.Fatalf("Encryption failed: %v", err)
		}
		if len(encrypted)%32 != 0 {
			t.Errorf("Encrypted length should be multiple of 32, got %d", len(encrypted))
		}

		decrypted, err := crypto.Decrypt(encrypted)
		if err != nil {
			t.Fatalf("Decryption failed: %v", err)
		}
		if decrypted != text {
			t.Errorf("Expected %q, got %q", text, decrypted)
		}
	}

	// 每次使用随机IV，相同明文的密文不同
	first, _ := crypto.Encrypt("codelieche")
	second, _ := crypto.Encrypt("codelieche")
	if first == second {
		t.Errorf("Encrypt should use a random IV, got %s twice", first)
	}
	if first[:32] == second[:32] {
		t.Errorf("IV should differ between calls, got %s", first[:32])
	}

	// 只有一个块时没有密文
	if _, err := crypto.Decrypt(first[:32]); err == nil {
		t.Error("Expected IV-only input to fail")
	}
}

func TestCheckCanDecrypt(t *testing.T) {
	crypto := NewCryptography("a-very-long-secret-key-over-16")

	encrypted, _ := crypto.Encrypt("token")
	ok, value := crypto.CheckCanDecrypt(encrypted)
	if !ok || value != "token" {
		t.Errorf("Expected to decrypt token, got %v %q", ok, value)
	}

	if ok, _ := crypto.CheckCanDecrypt("not-hex"); ok {
		t.Error("Expected invalid hex to fail")
	}
	if ok, _ := crypto.CheckCanDecrypt("abcd"); ok {
		t.Error("Expected short ciphertext to fail")
	}
}
