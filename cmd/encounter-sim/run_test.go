package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/campaign"
	"github.com/cory-johannsen/tactics/internal/game/content"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/encounter"
	"github.com/cory-johannsen/tactics/internal/game/power"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

var contentDir = filepath.Join("..", "..", "content")

func newRunner(t *testing.T, seed uint64) (*runner, *bytes.Buffer) {
	t.Helper()
	lib, err := content.Load(contentDir, zap.NewNop())
	require.NoError(t, err)
	streams := dice.NewStreams(seed)
	engine := scripting.NewEngine(dice.NewLoggedRoller(streams.Commit, zap.NewNop()), zap.NewNop(), 0)
	t.Cleanup(engine.Close)
	require.NoError(t, engine.LoadDir(filepath.Join(contentDir, "scripts")))

	var out bytes.Buffer
	return &runner{
		lib:       lib,
		streams:   streams,
		roller:    dice.NewLoggedRoller(streams.Commit, zap.NewNop()),
		opts:      encounter.Options{Hook: engine},
		maxRounds: 200,
		usePowers: true,
		out:       &out,
		logger:    zap.NewNop(),
	}, &out
}

func TestRunner_EveryEncounterFinishes(t *testing.T) {
	r, out := newRunner(t, 11)
	for _, key := range r.lib.EncounterKeys() {
		d, ok := r.lib.Encounter(key)
		require.True(t, ok)
		inv := power.NewInventory(power.DefaultRewardTable().Draw(r.streams.Commit, 3)...)
		_, err := r.runEncounter(d, inv)
		require.NoError(t, err, key)
	}
	assert.Contains(t, out.String(), "== Goblin Ambush (Open Grassland) ==")
	assert.Contains(t, out.String(), "Answer Hermit")
}

func TestRunner_SpendsPowers(t *testing.T) {
	r, _ := newRunner(t, 5)
	d, _ := r.lib.Encounter("goblin_ambush")
	inv := power.NewInventory(power.NewStaticBonus(2), power.NewAdvantage())
	_, err := r.runEncounter(d, inv)
	require.NoError(t, err)
	assert.Less(t, inv.Len(), 2)
}

func TestRunner_RoundLimit(t *testing.T) {
	r, _ := newRunner(t, 3)
	r.maxRounds = 0
	d, _ := r.lib.Encounter("goblin_ambush")
	_, err := r.runEncounter(d, nil)
	assert.ErrorIs(t, err, errRoundLimit)
}

func TestRunner_CampaignFinishes(t *testing.T) {
	r, out := newRunner(t, 42)
	status, err := r.runCampaign()
	require.NoError(t, err)
	assert.Contains(t, []campaign.Status{campaign.Completed, campaign.Lost}, status)
	assert.Contains(t, out.String(), "campaign "+status.String())
}

func TestRunner_SameSeedSameTranscript(t *testing.T) {
	r1, out1 := newRunner(t, 99)
	r2, out2 := newRunner(t, 99)
	_, err := r1.runCampaign()
	require.NoError(t, err)
	_, err = r2.runCampaign()
	require.NoError(t, err)
	assert.Equal(t, out1.String(), out2.String())
}
