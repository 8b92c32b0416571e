package power

import "github.com/cory-johannsen/tactics/internal/game/dice"

// RewardsPerMission is how many powers a completed mission grants.
const RewardsPerMission = 4

// RewardTable is the weighted pool that mission rewards are drawn from.
// Duplicated entries make a power more likely.
type RewardTable []Power

// DefaultRewardTable returns the standard 24-entry mission reward table.
func DefaultRewardTable() RewardTable {
	var t RewardTable
	add := func(p Power, n int) {
		for i := 0; i < n; i++ {
			t = append(t, p)
		}
	}
	add(NewAddDice(dice.New(dice.D4)), 4)
	add(NewAddDice(dice.New(dice.D6)), 2)
	add(NewAddDice(dice.New(dice.D8)), 1)
	add(NewAddDice(dice.New(dice.D12)), 1)
	add(NewAdvantage(), 5)
	add(NewSplitDice(), 4)
	add(NewStaticBonus(1), 4)
	add(NewStaticBonus(2), 2)
	add(NewStaticBonus(3), 1)
	return t
}

// Draw samples n entries from t without replacement.
//
// Precondition: src must be non-nil; n >= 0.
// Postcondition: len(result) == min(n, len(t)); t is not modified.
func (t RewardTable) Draw(src dice.Source, n int) []Power {
	pool := make([]Power, len(t))
	copy(pool, t)
	n = min(n, len(pool))
	for i := 0; i < n; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
