package services

import "testing"

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		name    string
		totalXP int64
		want    int
	}{
		{"zero xp is level 1", 0, 1},
		{"just below first threshold", 99, 1},
		{"exactly at threshold levels up", 100, 2},
		{"mid level", 150, 2},
		{"exactly 250", 250, 3},
		{"exactly 1000", 1000, 5},
		{"exactly at max threshold", 25000, 15},
		{"far beyond the table", 1_000_000, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateLevel(tt.totalXP); got != tt.want {
				t.Errorf("CalculateLevel(%d) = %d, want %d", tt.totalXP, got, tt.want)
			}
		})
	}
}

// Every threshold is an inclusive lower bound: landing exactly on it puts you
// in that level, one XP under keeps you in the previous one.
func TestCalculateLevelBoundaries(t *testing.T) {
	for i, threshold := range LevelThresholds {
		if got := CalculateLevel(threshold); got != i+1 {
			t.Errorf("CalculateLevel(%d) = %d, want %d", threshold, got, i+1)
		}
		if i == 0 {
			continue
		}
		if got := CalculateLevel(threshold - 1); got != i {
			t.Errorf("CalculateLevel(%d) = %d, want %d", threshold-1, got, i)
		}
	}
}

func TestCalculateLevelMonotonic(t *testing.T) {
	prev := CalculateLevel(0)
	for xp := int64(1); xp <= 26000; xp += 7 {
		level := CalculateLevel(xp)
		if level < prev {
			t.Fatalf("level dropped from %d to %d at %d XP", prev, level, xp)
		}
		prev = level
	}
}

func TestXPForNextLevel(t *testing.T) {
	tests := []struct {
		name    string
		totalXP int64
		want    int64
	}{
		{"fresh account", 0, 100},
		{"one xp in", 1, 99},
		{"just leveled", 100, 150},
		{"mid table", 1200, 550},
		{"at max level", 25000, 0},
		{"beyond max level", 99999, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := XPForNextLevel(tt.totalXP); got != tt.want {
				t.Errorf("XPForNextLevel(%d) = %d, want %d", tt.totalXP, got, tt.want)
			}
		})
	}
}
