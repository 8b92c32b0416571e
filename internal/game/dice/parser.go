package dice

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var kindsBySides = map[int]Kind{2: D2, 3: D3, 4: D4, 6: D6, 8: D8, 12: D12}

// ParseDie parses a single die.
// Supported forms: "d4", "D12", "+3", "3".
//
// Postcondition: Returns a valid Die or a descriptive error.
func ParseDie(s string) (Die, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Die{}, fmt.Errorf("dice: empty die")
	}
	if strings.HasPrefix(s, "d") {
		sides, err := strconv.Atoi(s[1:])
		if err != nil {
			return Die{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
		}
		k, ok := kindsBySides[sides]
		if !ok {
			return Die{}, fmt.Errorf("dice: unsupported die %q: sides must be one of 2, 3, 4, 6, 8, 12", raw)
		}
		return New(k), nil
	}
	v, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return Die{}, fmt.Errorf("dice: invalid die %q: %w", raw, err)
	}
	if v < 0 {
		return Die{}, fmt.Errorf("dice: static die %q must not be negative", raw)
	}
	return Constant(v), nil
}

// ParsePoolSet parses a "+"-separated pool-set expression.
// Supported terms: "d6", "2d6" (two Single pools), "2d12kh1" (one Advantage
// d12), and constants such as "3".
//
// Precondition: expr must be non-empty.
// Postcondition: Returns a non-empty PoolSet or a descriptive error.
func ParsePoolSet(expr string) (PoolSet, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("dice: empty expression")
	}
	var set PoolSet
	for _, term := range strings.Split(strings.ToLower(expr), "+") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		pools, err := parseTerm(term)
		if err != nil {
			return nil, fmt.Errorf("dice: parsing %q: %w", expr, err)
		}
		set = append(set, pools...)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("dice: expression %q has no terms", expr)
	}
	return set, nil
}

func parseTerm(term string) ([]Pool, error) {
	dIdx := strings.Index(term, "d")
	if dIdx < 0 {
		d, err := ParseDie(term)
		if err != nil {
			return nil, err
		}
		return []Pool{NewPool(d)}, nil
	}

	count := 1
	if dIdx > 0 {
		n, err := strconv.Atoi(term[:dIdx])
		if err != nil {
			return nil, fmt.Errorf("invalid die count in %q: %w", term, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("invalid die count in %q: must be >= 1", term)
		}
		count = n
	}

	rest := term[dIdx:]
	keepHighest := false
	if khIdx := strings.Index(rest, "kh"); khIdx >= 0 {
		if rest[khIdx+2:] != "1" || count != 2 {
			return nil, fmt.Errorf("keep-highest in %q must be written 2dNkh1", term)
		}
		rest = rest[:khIdx]
		keepHighest = true
	}

	d, err := ParseDie(rest)
	if err != nil {
		return nil, err
	}
	if keepHighest {
		return []Pool{NewPool(d).WithAdvantage()}, nil
	}
	pools := make([]Pool, count)
	for i := range pools {
		pools[i] = NewPool(d)
	}
	return pools, nil
}

// UnmarshalYAML accepts "D12", "d12", "+3", 3, or the tagged constant form
// {Static: {value: 3}}.
func (d *Die) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseDie(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*d = parsed
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 || !strings.EqualFold(node.Content[0].Value, "static") {
			return fmt.Errorf("line %d: dice: expected a single Static entry", node.Line)
		}
		val := node.Content[1]
		var v int
		if val.Kind == yaml.MappingNode {
			var tagged struct {
				Value int `yaml:"value"`
			}
			if err := val.Decode(&tagged); err != nil {
				return fmt.Errorf("line %d: dice: %w", val.Line, err)
			}
			v = tagged.Value
		} else if err := val.Decode(&v); err != nil {
			return fmt.Errorf("line %d: dice: %w", val.Line, err)
		}
		if v < 0 {
			return fmt.Errorf("line %d: dice: static value must not be negative", val.Line)
		}
		*d = Constant(v)
		return nil
	default:
		return fmt.Errorf("line %d: dice: unexpected YAML node for die", node.Line)
	}
}

// UnmarshalYAML accepts "Single" or "Advantage", case-insensitively.
func (m *Mode) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(node.Value)) {
	case "single", "":
		*m = Single
	case "advantage":
		*m = Advantage
	default:
		return fmt.Errorf("line %d: dice: unknown pool mode %q", node.Line, node.Value)
	}
	return nil
}

// UnmarshalYAML accepts {dice: D8, pool: Advantage} or a bare die scalar.
// A missing pool field defaults to Single.
func (p *Pool) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var d Die
		if err := d.UnmarshalYAML(node); err != nil {
			return err
		}
		*p = NewPool(d)
		return nil
	}
	var raw struct {
		Dice *Die `yaml:"dice"`
		Pool Mode `yaml:"pool"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Dice == nil {
		return fmt.Errorf("line %d: dice: pool is missing its dice field", node.Line)
	}
	*p = Pool{Die: *raw.Dice, Mode: raw.Pool}
	return nil
}
