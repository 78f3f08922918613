package text

import "testing"

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"Hello, world!",
		"チビロボ",
		"piko-piko ハンマー",
	}
	for _, s := range tests {
		encoded, err := Encode(s)
		if err != nil {
			t.Fatalf("Encode(%q): %v", s, err)
		}
		decoded, err := encoded.Decode()
		if err != nil {
			t.Fatalf("Decode(%q): %v", s, err)
		}
		if decoded != s {
			t.Errorf("round trip of %q = %q", s, decoded)
		}
	}
}

func TestEncodeUnmappable(t *testing.T) {
	if _, err := Encode("€"); err == nil {
		t.Error("Encode should fail for characters outside CP932")
	}
}

func TestEqual(t *testing.T) {
	a, _ := Encode("abc")
	b, _ := Encode("abc")
	c, _ := Encode("abd")
	if !a.Equal(b) {
		t.Error("equal strings compared unequal")
	}
	if a.Equal(c) {
		t.Error("unequal strings compared equal")
	}
}
