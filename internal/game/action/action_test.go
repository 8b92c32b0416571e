package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/action"
	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// fixedSrc always returns val, so every uniform die rolls val+1.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func standard() action.Choice {
	return action.Choice{Title: "Strike", Fail: 2, Success: 6, CriticalSuccess: 9}
}

func TestEvaluate_Table(t *testing.T) {
	c := standard()
	cases := []struct {
		roll int
		want action.Result
		gap  int
	}{
		{0, action.CriticalFail, 2},
		{1, action.CriticalFail, 1},
		{2, action.Fail, 4},
		{5, action.Fail, 1},
		{6, action.Success, 0},
		{8, action.Success, 2},
		{9, action.CriticalSuccess, 0},
		{14, action.CriticalSuccess, 5},
	}
	for _, tc := range cases {
		res, gap := c.Evaluate(tc.roll)
		assert.Equal(t, tc.want, res, "roll %d", tc.roll)
		assert.Equal(t, tc.gap, gap, "roll %d", tc.roll)
	}
}

func TestEvaluate_BoundariesBelongToHigherTier(t *testing.T) {
	c := standard()
	assert.Equal(t, action.Fail, c.Tier(c.Fail))
	assert.Equal(t, action.Success, c.Tier(c.Success))
	assert.Equal(t, action.CriticalSuccess, c.Tier(c.CriticalSuccess))
}

func TestEvaluate_MonotonicAndGapNonNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fail := rapid.IntRange(0, 20).Draw(rt, "fail")
		success := fail + rapid.IntRange(1, 20).Draw(rt, "dSuccess")
		crit := success + rapid.IntRange(1, 20).Draw(rt, "dCrit")
		c := action.Choice{Fail: fail, Success: success, CriticalSuccess: crit}
		a := rapid.IntRange(0, 80).Draw(rt, "a")
		b := a + rapid.IntRange(0, 20).Draw(rt, "delta")
		ra, gapA := c.Evaluate(a)
		rb, _ := c.Evaluate(b)
		if rb < ra {
			rt.Fatalf("roll %d -> %s but roll %d -> %s", a, ra, b, rb)
		}
		if gapA < 0 {
			rt.Fatalf("negative gap %d for roll %d", gapA, a)
		}
	})
}

func TestResolve_SingleD12(t *testing.T) {
	c := action.DefaultChoice()
	rolled := c.Pools.RollDetailed(fixedSrc{val: 6})
	r := c.Resolve(rolled)
	assert.Equal(t, 7, r.Roll)
	assert.Equal(t, action.Success, r.Result)
	assert.Equal(t, 1, r.Gap)
}

func TestResolve_PoolSumIsAdditive(t *testing.T) {
	c := action.DefaultChoice()
	c.Pools = c.Pools.Append(dice.NewPool(dice.Constant(3)))
	r := c.Resolve(c.Pools.RollDetailed(fixedSrc{val: 3}))
	assert.Equal(t, 7, r.Roll)
	assert.Equal(t, action.Success, r.Result)
	assert.Equal(t, 1, r.Gap)
	assert.Equal(t, []int{4, 3}, r.Detail.Values)
}

func TestResolve_EmptyPoolRollsOne(t *testing.T) {
	c := standard()
	r := c.Resolve(c.Pools.RollDetailed(fixedSrc{val: 9}))
	assert.Equal(t, 1, r.Roll)
	assert.Equal(t, action.CriticalFail, r.Result)
	assert.Equal(t, 1, r.Gap)
}

func TestValidate(t *testing.T) {
	require.NoError(t, action.DefaultChoice().Validate())
	for _, c := range []action.Choice{
		{Fail: 6, Success: 6, CriticalSuccess: 9},
		{Fail: 2, Success: 9, CriticalSuccess: 9},
		{Fail: 7, Success: 6, CriticalSuccess: 9},
	} {
		assert.ErrorIs(t, c.Validate(), action.ErrThresholdOrder)
	}
	bad := action.DefaultChoice()
	bad.Pools = dice.PoolSet{{}}
	assert.Error(t, bad.Validate())
}

func TestChoice_YAML_DefaultsFillGaps(t *testing.T) {
	var c action.Choice
	require.NoError(t, yaml.Unmarshal([]byte("title: Parry\nsuccess: 5\n"), &c))
	assert.Equal(t, "Parry", c.Title)
	assert.Equal(t, 2, c.Fail)
	assert.Equal(t, 5, c.Success)
	assert.Equal(t, 9, c.CriticalSuccess)
	assert.Equal(t, dice.PoolSet{dice.NewPool(dice.New(dice.D12))}, c.Pools)
}

func TestDefinition_YAML(t *testing.T) {
	src := `
- choice:
    title: Slash
    fail: 3
    success: 7
    critical_success: 10
    dice_pool:
      - dice: D8
      - dice: D4
        pool: Advantage
  action_type:
    Attack:
      base_damage: 2
- choice:
    title: Taunt
  action_type: Text
- choice:
    title: Hex
  action_type:
    script:
      hook: hex_damage
      base_damage: 1
`
	var defs []action.Definition
	require.NoError(t, yaml.Unmarshal([]byte(src), &defs))
	require.Len(t, defs, 3)
	assert.Equal(t, action.AttackType(2), defs[0].Type)
	assert.Equal(t, dice.PoolSet{
		dice.NewPool(dice.New(dice.D8)),
		dice.NewPool(dice.New(dice.D4)).WithAdvantage(),
	}, defs[0].Choice.Pools)
	assert.Equal(t, action.TextType(), defs[1].Type)
	assert.Equal(t, action.ScriptType("hex_damage", 1), defs[2].Type)

	for _, bad := range []string{
		"action_type: fireball",
		"action_type: {attack: {base_damage: -1}}",
		"action_type: {script: {hook: ''}}",
	} {
		var d action.Definition
		assert.Error(t, yaml.Unmarshal([]byte(bad), &d), bad)
	}
}

func TestDamage_Policy(t *testing.T) {
	atk := action.AttackType(3)
	player := map[action.Result]int{
		action.CriticalFail: 0, action.Fail: 0, action.Success: 3, action.CriticalSuccess: 6,
	}
	challenger := map[action.Result]int{
		action.CriticalFail: 6, action.Fail: 3, action.Success: 0, action.CriticalSuccess: 0,
	}
	for r, want := range player {
		assert.Equal(t, want, atk.Damage(action.PlayerSide, r), "player %s", r)
	}
	for r, want := range challenger {
		assert.Equal(t, want, atk.Damage(action.ChallengerSide, r), "challenger %s", r)
	}
	assert.Zero(t, action.TextType().Damage(action.PlayerSide, action.CriticalSuccess))
	assert.Zero(t, action.ScriptType("x", 2).Damage(action.ChallengerSide, action.CriticalFail))
}

func TestResult_Strings(t *testing.T) {
	assert.Equal(t, "Failed Badly", action.CriticalFail.Narrative())
	assert.Equal(t, "Failed", action.Fail.Narrative())
	assert.Equal(t, "Succeeded!", action.Success.Narrative())
	assert.Equal(t, "Amazing Success!", action.CriticalSuccess.Narrative())
	assert.Equal(t, "critical_success", action.CriticalSuccess.String())
}
