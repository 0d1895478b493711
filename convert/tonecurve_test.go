package convert

import "testing"

func TestParseToneCurve(t *testing.T) {
	tests := []struct {
		input    string
		expected ToneCurve
		wantErr  bool
	}{
		{"", ToneCurve{{0, 0}, {255, 255}}, false},
		{"0 0 1 1", ToneCurve{{0, 0}, {255, 255}}, false},
		{"0.5 0.25", ToneCurve{{0, 0}, {127, 63}, {255, 255}}, false},
		{"1 0.5 0 0.2", ToneCurve{{0, 51}, {255, 127}}, false},
		{"0.5 0.5 0.5 0.1", ToneCurve{{0, 0}, {127, 25}, {255, 255}}, false},
		{"0.5", nil, true},
		{"0.5 x", nil, true},
		{"1.5 0", nil, true},
	}

	for _, test := range tests {
		got, err := ParseToneCurve(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseToneCurve(%q): expected an error", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseToneCurve(%q) failed: %v", test.input, err)
			continue
		}
		if len(got) != len(test.expected) {
			t.Errorf("ParseToneCurve(%q): expected %v, got %v", test.input, test.expected, got)
			continue
		}
		for i := range got {
			if got[i] != test.expected[i] {
				t.Errorf("ParseToneCurve(%q): expected %v, got %v", test.input, test.expected, got)
				break
			}
		}
	}
}

func TestToneCurveLUT(t *testing.T) {
	identity := ToneCurve{}.LUT()
	for i, v := range identity {
		if int(v) != i {
			t.Fatalf("Expected identity for an empty curve, lut[%d] = %d", i, v)
		}
	}

	curve, err := ParseToneCurve(DefaultToneCurve)
	if err != nil {
		t.Fatalf("ParseToneCurve() failed: %v", err)
	}
	lut := curve.LUT()

	expected := map[int]uint8{0: 0, 61: 0, 82: 1, 90: 12, 100: 25, 128: 51, 200: 102, 254: 255, 255: 255}
	for x, y := range expected {
		if lut[x] != y {
			t.Errorf("lut[%d]: expected %d, got %d", x, y, lut[x])
		}
	}
	for i := 1; i < len(lut); i++ {
		if lut[i] < lut[i-1] {
			t.Errorf("Expected a non-decreasing table, lut[%d] = %d < lut[%d] = %d", i, lut[i], i-1, lut[i-1])
		}
	}

	half, _ := ParseToneCurve("0.5 0.25")
	if lut := half.LUT(); lut[127] != 63 || lut[64] != 31 {
		t.Errorf("Unexpected interpolation: lut[127] = %d, lut[64] = %d", lut[127], lut[64])
	}
}
