package helpers

import (
	"strings"
	"testing"
)

func TestGenInviteCodeShape(t *testing.T) {
	code, err := GenInviteCode("agi", InviteCodeRandLen)
	if err != nil {
		t.Fatalf("GenInviteCode: %v", err)
	}
	if !strings.HasPrefix(code, "agi") {
		t.Fatalf("code %q missing prefix", code)
	}
	if len(code) != len("agi")+InviteCodeRandLen {
		t.Fatalf("code %q has wrong length", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(inviteCodeAlphabet, r) {
			t.Fatalf("code %q contains %q outside the alphabet", code, r)
		}
	}
}

func TestGenInviteCodeDefaultsLength(t *testing.T) {
	code, err := GenInviteCode("x", 0)
	if err != nil {
		t.Fatalf("GenInviteCode: %v", err)
	}
	if len(code) != 1+InviteCodeRandLen {
		t.Fatalf("code %q should fall back to the default random length", code)
	}
}

func TestGenInviteCodeCoversAlphabet(t *testing.T) {
	seen := map[rune]bool{}
	// 500 codes x 4 chars; the odds of any of the 36 characters never
	// showing up in 2000 uniform draws are negligible.
	for i := 0; i < 500; i++ {
		code, err := GenInviteCode("", InviteCodeRandLen)
		if err != nil {
			t.Fatalf("GenInviteCode: %v", err)
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteCodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
			seen[r] = true
		}
	}
	if len(seen) != len(inviteCodeAlphabet) {
		t.Fatalf("only %d of %d alphabet characters were ever generated", len(seen), len(inviteCodeAlphabet))
	}
}

func TestGenInviteCodeVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenInviteCode("agi", InviteCodeRandLen)
		if err != nil {
			t.Fatalf("GenInviteCode: %v", err)
		}
		seen[code] = true
	}
	// 36^4 codes; 50 draws colliding down to a couple of distinct values
	// would mean the generator is broken.
	if len(seen) < 10 {
		t.Fatalf("generated only %d distinct codes in 50 draws", len(seen))
	}
}
