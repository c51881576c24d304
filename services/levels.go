package services

// LevelThresholds maps level N to its XP floor: index 0 is level 1 (0 XP).
// Thresholds are inclusive lower bounds: landing exactly on a threshold
// puts you in that level. Above the last entry there is no further leveling.
var LevelThresholds = []int64{
	0,     // 1
	100,   // 2
	250,   // 3
	500,   // 4
	1000,  // 5
	1750,  // 6
	2750,  // 7
	4000,  // 8
	5500,  // 9
	7500,  // 10
	10000, // 11
	13000, // 12
	16500, // 13
	20500, // 14
	25000, // 15
}

// MaxLevel is the cap implied by the threshold table.
var MaxLevel = len(LevelThresholds)

// CalculateLevel maps total XP to a level by scanning thresholds from the
// top down. Pure function, no storage.
func CalculateLevel(totalXP int64) int {
	for i := len(LevelThresholds) - 1; i >= 0; i-- {
		if totalXP >= LevelThresholds[i] {
			return i + 1
		}
	}
	return 1
}

// XPForNextLevel returns how much XP is missing until the next level,
// or 0 when already at the max level.
func XPForNextLevel(totalXP int64) int64 {
	level := CalculateLevel(totalXP)
	if level >= MaxLevel {
		return 0
	}
	return LevelThresholds[level] - totalXP
}
