package versions

import "testing"

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestCompareLoose(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "2.0", -1},
		{"1.0", "1.0", 0},
		{"1.2.10", "1.2.9", 1},
		{"1.10", "1.9", 1},
		{"1.01", "1.1", 0},
		{"", "", 0},
		{"1", "", 1},
		{"1.0~rc1", "1.0", -1},
		{"~", "", -1},
		{"1.0a", "1.0b", -1},
		{"1.0a", "1.0", 1},
		{"1.1.1w", "1.1.1k", 1},
		{"1.1.1w", "3.0.0", -1},
		{"2.13.1.1", "2.13.1", 1},
		{"2.6.32", "2.6.32.1", -1},
		{"1.0.0-rc10", "1.0.0-rc9", 1},
		{"1-2", "1.2", -1},
		{"1_2", "1.2", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := sign(compareLoose(tt.a, tt.b)); got != tt.want {
				t.Errorf("compareLoose(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := sign(compareLoose(tt.b, tt.a)); got != -tt.want {
				t.Errorf("compareLoose(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestOrder(t *testing.T) {
	tests := []struct {
		c    byte
		want int
	}{
		{'0', 0},
		{0, 0},
		{'a', int('a')},
		{'Z', int('Z')},
		{'~', -1},
		{'.', int('.') + 256},
		{'_', int('_') + 256},
	}
	for _, tt := range tests {
		if got := order(tt.c); got != tt.want {
			t.Errorf("order(%q) = %d, want %d", tt.c, got, tt.want)
		}
	}
}
