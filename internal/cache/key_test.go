package cache

import "testing"

func TestKey_Deterministic(t *testing.T) {
	k1 := Key("mars rover photos", "nasa", 10)
	k2 := Key("mars rover photos", "nasa", 10)
	if k1 != k2 {
		t.Errorf("Key() not deterministic: %q != %q", k1, k2)
	}
}

func TestKey_NormalizesQuery(t *testing.T) {
	k1 := Key("  Mars   Rover photos ", "nasa", 10)
	k2 := Key("mars rover photos", "nasa", 10)
	if k1 != k2 {
		t.Errorf("normalization mismatch: %q != %q", k1, k2)
	}
}

func TestKey_DistinguishesInputs(t *testing.T) {
	base := Key("mars rover", "nasa", 10)

	if Key("mars rover", "arxiv", 10) == base {
		t.Error("different providers must produce different keys")
	}
	if Key("mars rover", "nasa", 5) == base {
		t.Error("different limits must produce different keys")
	}
	if Key("jupiter moons", "nasa", 10) == base {
		t.Error("different queries must produce different keys")
	}
}
