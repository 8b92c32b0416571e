package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// seqSrc replays vals in order and counts draws. Each value is returned as-is,
// so a die roll yields val+1.
type seqSrc struct {
	vals  []int
	calls int
}

func (s *seqSrc) Intn(_ int) int {
	v := s.vals[s.calls%len(s.vals)]
	s.calls++
	return v
}

var uniformKinds = []dice.Kind{dice.D2, dice.D3, dice.D4, dice.D6, dice.D8, dice.D12}

func TestDie_Roll_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for _, k := range uniformKinds {
		d := dice.New(k)
		for i := 0; i < 2000; i++ {
			v := d.Roll(src)
			require.GreaterOrEqual(t, v, 1, "%s rolled below 1", d)
			require.LessOrEqual(t, v, k.Sides(), "%s rolled above its sides", d)
		}
	}
}

func TestDie_Roll_InRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.SampledFrom(uniformKinds).Draw(rt, "kind")
		seed := rapid.Uint64().Draw(rt, "seed")
		src := dice.NewSeededSource(seed, 1)
		d := dice.New(k)
		for i := 0; i < 50; i++ {
			v := d.Roll(src)
			if v < 1 || v > k.Sides() {
				rt.Fatalf("%s rolled %d", d, v)
			}
		}
	})
}

func TestDie_Static_ConsumesNoDraws(t *testing.T) {
	src := &seqSrc{vals: []int{5}}
	d := dice.Constant(4)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 4, d.Roll(src))
	}
	assert.Equal(t, 0, src.calls, "static die must not draw from the source")
}

func TestPool_Advantage_TakesMaxOfTwoDraws(t *testing.T) {
	cases := []struct {
		name string
		vals []int
		want int
	}{
		{"second higher", []int{2, 9}, 10},
		{"first higher", []int{9, 2}, 10},
		{"equal", []int{4, 4}, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &seqSrc{vals: tc.vals}
			p := dice.NewPool(dice.New(dice.D12)).WithAdvantage()
			assert.Equal(t, tc.want, p.Roll(src))
			assert.Equal(t, 2, src.calls, "advantage must consume exactly two draws")
		})
	}
}

func TestPool_Advantage_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.SampledFrom(uniformKinds).Draw(rt, "kind")
		a := rapid.IntRange(0, k.Sides()-1).Draw(rt, "a")
		b := rapid.IntRange(0, k.Sides()-1).Draw(rt, "b")
		src := &seqSrc{vals: []int{a, b}}
		got := dice.NewPool(dice.New(k)).WithAdvantage().Roll(src)
		assert.Equal(rt, max(a, b)+1, got)
		assert.Equal(rt, 2, src.calls)
	})
}

func TestPool_Single_ConsumesOneDraw(t *testing.T) {
	src := &seqSrc{vals: []int{6}}
	assert.Equal(t, 7, dice.NewPool(dice.New(dice.D8)).Roll(src))
	assert.Equal(t, 1, src.calls)
}

func TestPoolSet_Empty_RollsOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		src := dice.NewSeededSource(seed, 7)
		assert.Equal(rt, 1, dice.PoolSet{}.Roll(src))
		assert.Equal(rt, 1, dice.PoolSet(nil).Roll(src))
	})
	src := &seqSrc{vals: []int{3}}
	assert.Equal(t, dice.EmptyRoll, dice.PoolSet{}.Roll(src))
	assert.Equal(t, 0, src.calls)
}

func TestPoolSet_Roll_SumsPools(t *testing.T) {
	// d12 draws 3 -> 4; +3 draws nothing.
	src := &seqSrc{vals: []int{3}}
	set := dice.PoolSet{dice.NewPool(dice.New(dice.D12)), dice.NewPool(dice.Constant(3))}
	assert.Equal(t, 7, set.Roll(src))
	assert.Equal(t, 1, src.calls)
}

func TestPoolSet_RollDetailed_MatchesRoll(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		n := rapid.IntRange(0, 6).Draw(rt, "pools")
		set := make(dice.PoolSet, n)
		for i := range set {
			set[i] = dice.NewPool(dice.New(rapid.SampledFrom(uniformKinds).Draw(rt, "kind")))
			if rapid.Bool().Draw(rt, "adv") {
				set[i] = set[i].WithAdvantage()
			}
		}
		a := set.Roll(dice.NewSeededSource(seed, 3))
		b := set.RollDetailed(dice.NewSeededSource(seed, 3))
		assert.Equal(rt, a, b.Total())
		assert.Len(rt, b.Values, n)
	})
}

func TestPoolSet_Range(t *testing.T) {
	set := dice.PoolSet{dice.NewPool(dice.New(dice.D6)), dice.NewPool(dice.New(dice.D4)).WithAdvantage(), dice.NewPool(dice.Constant(2))}
	lo, hi := set.Range()
	assert.Equal(t, 4, lo)
	assert.Equal(t, 12, hi)
	lo, hi = dice.PoolSet{}.Range()
	assert.Equal(t, 1, lo)
	assert.Equal(t, 1, hi)
}

func TestPoolSet_ReplaceAt_DoesNotMutate(t *testing.T) {
	d12 := dice.NewPool(dice.New(dice.D12))
	d4 := dice.NewPool(dice.New(dice.D4))
	set := dice.PoolSet{d4, d12, d4}
	d6 := dice.NewPool(dice.New(dice.D6))
	got := set.ReplaceAt(1, []dice.Pool{d6, d6})
	assert.Equal(t, dice.PoolSet{d4, d6, d6, d4}, got)
	assert.Equal(t, dice.PoolSet{d4, d12, d4}, set)

	appended := set.Append(d6)
	assert.Len(t, appended, 4)
	assert.Len(t, set, 3)
}

func TestStreams_SimulationDoesNotPerturbCommit(t *testing.T) {
	a := dice.NewStreams(42)
	b := dice.NewStreams(42)
	for i := 0; i < 500; i++ {
		a.Simulation.Intn(12)
	}
	for i := 0; i < 20; i++ {
		require.Equal(t, b.Commit.Intn(12), a.Commit.Intn(12), "commit draw %d diverged", i)
	}
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(99, 1)
	b := dice.NewSeededSource(99, 1)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSources_PanicOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
	assert.Panics(t, func() { dice.NewSeededSource(1, 1).Intn(-1) })
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "d12 + +3", Values: []int{4, 3}}
	assert.Equal(t, 7, r.Total())
	assert.Equal(t, "d12 + +3 → [4 3] = 7", r.String())
	assert.Panics(t, func() { _ = dice.RollResult{}.String() })
}

func TestParseDie(t *testing.T) {
	cases := map[string]dice.Die{
		"d2":  dice.New(dice.D2),
		"D3":  dice.New(dice.D3),
		"d4":  dice.New(dice.D4),
		" d6": dice.New(dice.D6),
		"d8":  dice.New(dice.D8),
		"D12": dice.New(dice.D12),
		"+3":  dice.Constant(3),
		"5":   dice.Constant(5),
	}
	for in, want := range cases {
		got, err := dice.ParseDie(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "d5", "d20", "dx", "-2", "x"} {
		_, err := dice.ParseDie(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePoolSet(t *testing.T) {
	set, err := dice.ParsePoolSet("2d6 + d12 + 2d8kh1 + 3")
	require.NoError(t, err)
	d6 := dice.NewPool(dice.New(dice.D6))
	assert.Equal(t, dice.PoolSet{
		d6, d6,
		dice.NewPool(dice.New(dice.D12)),
		dice.NewPool(dice.New(dice.D8)).WithAdvantage(),
		dice.NewPool(dice.Constant(3)),
	}, set)

	for _, bad := range []string{"", "+", "0d6", "3d6kh1", "2d6kh2", "d7"} {
		_, err := dice.ParsePoolSet(bad)
		assert.Error(t, err, bad)
	}
}

func TestPoolSet_YAML(t *testing.T) {
	src := `
- dice: D12
- dice: D6
  pool: Advantage
- dice:
    Static:
      value: 3
- d4
- "+2"
`
	var set dice.PoolSet
	require.NoError(t, yaml.Unmarshal([]byte(src), &set))
	assert.Equal(t, dice.PoolSet{
		dice.NewPool(dice.New(dice.D12)),
		dice.NewPool(dice.New(dice.D6)).WithAdvantage(),
		dice.NewPool(dice.Constant(3)),
		dice.NewPool(dice.New(dice.D4)),
		dice.NewPool(dice.Constant(2)),
	}, set)
}

func TestPool_YAML_Errors(t *testing.T) {
	for _, src := range []string{
		"- pool: Advantage",
		"- dice: D7",
		"- dice: D6\n  pool: Disadvantage",
	} {
		var set dice.PoolSet
		assert.Error(t, yaml.Unmarshal([]byte(src), &set), src)
	}
}

func TestStrings(t *testing.T) {
	set := dice.PoolSet{dice.NewPool(dice.New(dice.D12)).WithAdvantage(), dice.NewPool(dice.Constant(3))}
	assert.Equal(t, "d12 adv + +3", set.String())
	assert.Equal(t, "(empty)", dice.PoolSet{}.String())
	assert.Equal(t, "static", dice.Static.String())
	assert.Equal(t, "advantage", dice.Advantage.String())
}
