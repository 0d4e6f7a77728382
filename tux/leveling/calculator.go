package leveling

import (
	"math"
)

const (
	defaultExponent = 2.0
	xpScale         = 500.0
	levelScale      = 5.0
)

// Calculator converts between XP and level. The two functions are exact
// inverses up to integer truncation: XPForLevel(L) is the minimum XP that
// LevelForXP maps back to L.
type Calculator struct {
	exponent float64
}

func NewCalculator(exponent float64) *Calculator {
	if exponent <= 0 {
		exponent = defaultExponent
	}
	return &Calculator{exponent: exponent}
}

// XPForLevel returns the XP required to reach a level.
func (c *Calculator) XPForLevel(level int) float64 {
	if level <= 0 {
		return 0
	}
	return xpScale * math.Pow(float64(level)/levelScale, c.exponent)
}

// LevelForXP returns the level an XP total corresponds to.
func (c *Calculator) LevelForXP(xp float64) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Pow(xp/xpScale, 1/c.exponent) * levelScale)
}
