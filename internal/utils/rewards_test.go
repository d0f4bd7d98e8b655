package utils

import "testing"

func TestRedeemAffordability(t *testing.T) {
	tests := []struct {
		points, required int64
		can              bool
		short, projected int64
	}{
		{500, 500, true, 0, 0},
		{499, 500, false, 1, -1},
		{1200, 500, true, 0, 700},
		{0, 100, false, 100, -100},
	}
	for _, tt := range tests {
		if got := CanRedeem(tt.points, tt.required); got != tt.can {
			t.Errorf("CanRedeem(%d, %d) = %v, want %v", tt.points, tt.required, got, tt.can)
		}
		if got := PointsShort(tt.points, tt.required); got != tt.short {
			t.Errorf("PointsShort(%d, %d) = %d, want %d", tt.points, tt.required, got, tt.short)
		}
		if got := ProjectedBalance(tt.points, tt.required); got != tt.projected {
			t.Errorf("ProjectedBalance(%d, %d) = %d, want %d", tt.points, tt.required, got, tt.projected)
		}
	}
}
