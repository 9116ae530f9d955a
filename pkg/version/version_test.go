package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Firmware
		wantErr bool
	}{
		{"3.4.0", Firmware{3, 4, 0}, false},
		{"0.0.0", Firmware{}, false},
		{"255.255.255", Firmware{255, 255, 255}, false},
		{"3.4", Firmware{}, true},
		{"3.4.0.1", Firmware{}, true},
		{"3..0", Firmware{}, true},
		{"a.b.c", Firmware{}, true},
		{"256.0.0", Firmware{}, true},
		{"", Firmware{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	v := Firmware{3, 4, 12}
	parsed, err := Parse(v.String())
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if parsed != v {
		t.Errorf("round trip: got %v, want %v", parsed, v)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b Firmware
		want int
	}{
		{Firmware{3, 4, 0}, Firmware{3, 4, 0}, 0},
		{Firmware{3, 4, 0}, Firmware{3, 4, 1}, -1},
		{Firmware{3, 5, 0}, Firmware{3, 4, 9}, 1},
		{Firmware{4, 0, 0}, Firmware{3, 9, 9}, 1},
		{Firmware{2, 9, 9}, Firmware{3, 0, 0}, -1},
	}

	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	if !(Firmware{3, 5, 0}).AtLeast(Firmware{3, 4, 0}) {
		t.Error("3.5.0 should be at least 3.4.0")
	}
	if (Firmware{3, 3, 0}).AtLeast(Firmware{3, 4, 0}) {
		t.Error("3.3.0 should not be at least 3.4.0")
	}
}
