package progress

import "testing"

func TestUpdatePercent(t *testing.T) {
	tests := []struct {
		name string
		u    Update
		want float64
	}{
		{name: "unknown total", u: Update{Bytes: 10}, want: -1},
		{name: "negative total", u: Update{Bytes: 10, Total: -1}, want: -1},
		{name: "half", u: Update{Bytes: 50, Total: 100}, want: 50},
		{name: "done", u: Update{Bytes: 100, Total: 100}, want: 100},
		{name: "overshoot clamped", u: Update{Bytes: 150, Total: 100}, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.u.Percent(); got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}
