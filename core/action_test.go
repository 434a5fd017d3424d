package core

import (
	"encoding/json"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		method string
		want   ActionKind
		ok     bool
	}{
		{"getPublicKey", ActionGetPublicKey, true},
		{"signMessage", ActionSignMessage, true},
		{"signIn", ActionSignIn, true},
		{"send", ActionSend, true},
		{"mintToken", ActionMintToken, true},
		{"alive", ActionAlive, true},
		// reserved for in-process callers
		{"sharePublicKey", 0, false},
		{"teleport", 0, false},
		{"", 0, false},
		{"GetPublicKey", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, ok := ParseKind(tt.method)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseKind(%q) = (%v, %v), want (%v, %v)", tt.method, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestKindJSON(t *testing.T) {
	b, err := json.Marshal(ActionSend)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"send"` {
		t.Errorf("marshal = %s, want \"send\"", b)
	}

	var kind ActionKind
	if err := json.Unmarshal([]byte(`"sharePublicKey"`), &kind); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if kind != ActionSharePublicKey {
		t.Errorf("kind = %v, want ActionSharePublicKey", kind)
	}

	if err := json.Unmarshal([]byte(`"teleport"`), &kind); err != nil {
		t.Fatalf("unmarshal unknown: %v", err)
	}
	if kind != 0 {
		t.Errorf("unknown name must map to the zero kind, got %v", kind)
	}
}

func TestKindFromName(t *testing.T) {
	for kind, name := range map[ActionKind]string{
		ActionGetPublicKey:   "getPublicKey",
		ActionSharePublicKey: "sharePublicKey",
		ActionMintToken:      "mintToken",
	} {
		if got := KindFromName(name); got != kind {
			t.Errorf("KindFromName(%q) = %v, want %v", name, got, kind)
		}
	}

	if got := KindFromName("nope"); got != 0 {
		t.Errorf("KindFromName(nope) = %v, want 0", got)
	}
}
