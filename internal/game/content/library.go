package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/action"
)

// Subdirectories of a content root. Every .yaml file in one of them holds a
// mapping from content key to definition.
const (
	ChallengersDir = "challengers"
	PlayersDir     = "players"
	LocationsDir   = "locations"
	EncountersDir  = "encounters"
	MissionsDir    = "missions"
	StoryFile      = "story.yaml"
)

// Library is the loaded, validated content set.
//
// Lookups of missing keys return false and log a warning naming the closest
// known key; they never fail hard.
type Library struct {
	challengers map[string]Challenger
	players     map[string]Player
	locations   map[string]Location
	encounters  map[string]EncounterDetails
	missions    map[string]MissionTemplate
	story       *Story
	logger      *zap.Logger
}

// NewLibrary returns an empty library.
func NewLibrary(logger *zap.Logger) *Library {
	return &Library{
		challengers: make(map[string]Challenger),
		players:     make(map[string]Player),
		locations:   make(map[string]Location),
		encounters:  make(map[string]EncounterDetails),
		missions:    make(map[string]MissionTemplate),
		logger:      logger,
	}
}

// Load reads every content subdirectory under dir. Missing subdirectories and
// a missing story file are allowed.
//
// Postcondition: Returns a validated Library, or the first load error, or all
// validation errors joined.
func Load(dir string, logger *zap.Logger) (*Library, error) {
	lib := NewLibrary(logger)
	if err := loadDir(filepath.Join(dir, ChallengersDir), lib.challengers); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, PlayersDir), lib.players); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, LocationsDir), lib.locations); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, EncountersDir), lib.encounters); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, MissionsDir), lib.missions); err != nil {
		return nil, err
	}

	storyPath := filepath.Join(dir, StoryFile)
	data, err := os.ReadFile(storyPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading %q: %w", storyPath, err)
	default:
		var s Story
		if err := decodeStrict(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", storyPath, err)
		}
		lib.story = &s
	}

	if err := lib.Validate(); err != nil {
		return nil, err
	}
	logger.Info("content loaded",
		zap.String("dir", dir),
		zap.Int("challengers", len(lib.challengers)),
		zap.Int("players", len(lib.players)),
		zap.Int("locations", len(lib.locations)),
		zap.Int("encounters", len(lib.encounters)),
		zap.Int("missions", len(lib.missions)),
		zap.Bool("story", lib.story != nil),
	)
	return lib, nil
}

func loadDir[T any](dir string, into map[string]T) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		var defs map[string]T
		if err := decodeStrict(data, &defs); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		for k, v := range defs {
			if _, dup := into[k]; dup {
				return fmt.Errorf("parsing %q: duplicate key %q", path, k)
			}
			into[k] = v
		}
	}
	return nil
}

// decodeStrict decodes one YAML document, rejecting unknown fields. An empty
// document leaves out untouched.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks health, slot counts, challenger counts and every action's
// thresholds.
func (l *Library) Validate() error {
	var errs []error
	for k, c := range l.challengers {
		if c.Health < 0 {
			errs = append(errs, fmt.Errorf("challenger %q: health must be >= 0", k))
		}
		errs = append(errs, validateActions("challenger "+k, c.AvailableActions)...)
		errs = append(errs, validateActions("challenger "+k, c.PublishedActions)...)
	}
	for k, p := range l.players {
		if p.Health <= 0 {
			errs = append(errs, fmt.Errorf("player %q: health must be > 0", k))
		}
		errs = append(errs, validateActions("player "+k, p.CombatActions)...)
	}
	for k, loc := range l.locations {
		if loc.ChallengerSlots < 0 {
			errs = append(errs, fmt.Errorf("location %q: challenger_slots must be >= 0", k))
		}
	}
	for k, e := range l.encounters {
		for i, c := range e.Challengers {
			if c.Count <= 0 {
				errs = append(errs, fmt.Errorf("encounter %q: challengers[%d]: count must be > 0", k, i))
			}
		}
	}
	if l.story != nil {
		for i, p := range l.story.Phases {
			if p.MinMissions < 0 || p.MaxMissions < p.MinMissions {
				errs = append(errs, fmt.Errorf("story phase %d: need 0 <= min_missions <= max_missions", i))
			}
		}
	}
	return errors.Join(errs...)
}

func validateActions(owner string, defs []action.Definition) []error {
	var errs []error
	for _, d := range defs {
		if err := d.Choice.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", owner, err))
		}
	}
	return errs
}

// AddChallenger registers c under key.
//
// Precondition: key must not already be registered.
func (l *Library) AddChallenger(key string, c Challenger) {
	if _, dup := l.challengers[key]; dup {
		panic(fmt.Sprintf("Library.AddChallenger: precondition violated: duplicate key %q", key))
	}
	l.challengers[key] = c
}

// AddPlayer registers p under key.
//
// Precondition: key must not already be registered.
func (l *Library) AddPlayer(key string, p Player) {
	if _, dup := l.players[key]; dup {
		panic(fmt.Sprintf("Library.AddPlayer: precondition violated: duplicate key %q", key))
	}
	l.players[key] = p
}

// AddLocation registers loc under key.
//
// Precondition: key must not already be registered.
func (l *Library) AddLocation(key string, loc Location) {
	if _, dup := l.locations[key]; dup {
		panic(fmt.Sprintf("Library.AddLocation: precondition violated: duplicate key %q", key))
	}
	l.locations[key] = loc
}

// AddEncounter registers d under key.
//
// Precondition: key must not already be registered.
func (l *Library) AddEncounter(key string, d EncounterDetails) {
	if _, dup := l.encounters[key]; dup {
		panic(fmt.Sprintf("Library.AddEncounter: precondition violated: duplicate key %q", key))
	}
	l.encounters[key] = d
}

// AddMission registers m under key.
//
// Precondition: key must not already be registered.
func (l *Library) AddMission(key string, m MissionTemplate) {
	if _, dup := l.missions[key]; dup {
		panic(fmt.Sprintf("Library.AddMission: precondition violated: duplicate key %q", key))
	}
	l.missions[key] = m
}

// SetStory replaces the story.
func (l *Library) SetStory(s Story) { l.story = &s }

// Challenger returns the challenger at key.
func (l *Library) Challenger(key string) (Challenger, bool) {
	return lookup(l, "challenger", l.challengers, key)
}

// Player returns the player at key.
func (l *Library) Player(key string) (Player, bool) {
	return lookup(l, "player", l.players, key)
}

// Location returns the location at key.
func (l *Library) Location(key string) (Location, bool) {
	return lookup(l, "location", l.locations, key)
}

// Encounter returns the encounter template at key.
func (l *Library) Encounter(key string) (EncounterDetails, bool) {
	return lookup(l, "encounter", l.encounters, key)
}

// Mission returns the mission template at key.
func (l *Library) Mission(key string) (MissionTemplate, bool) {
	return lookup(l, "mission", l.missions, key)
}

// Story returns the story, if one was loaded.
func (l *Library) Story() (Story, bool) {
	if l.story == nil {
		return Story{}, false
	}
	return *l.story, true
}

// EncounterKeys returns every encounter key in sorted order.
func (l *Library) EncounterKeys() []string { return sortedKeys(l.encounters) }

func lookup[T any](l *Library, kind string, m map[string]T, key string) (T, bool) {
	v, ok := m[key]
	if ok {
		return v, true
	}
	fields := []zap.Field{zap.String("kind", kind), zap.String("key", key)}
	if s := Suggest(key, sortedKeys(m)); s != "" {
		fields = append(fields, zap.String("did_you_mean", s))
	}
	l.logger.Warn("content key not found", fields...)
	return v, false
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Suggest returns the candidate closest to key by edit distance, or "" when
// none is close enough. Ties go to the earlier candidate.
func Suggest(key string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(key), strings.ToLower(c))
		if d > suggestLimit(len(c)) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
