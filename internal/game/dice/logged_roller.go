package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged pool-set rolls.
// All rolls are logged at debug level with the pool set, per-pool values, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the Source r draws from.
func (r *Roller) Source() Source { return r.src }

// Roll rolls set once and logs the result at debug level.
//
// Postcondition: result.Total() is the committed roll value.
func (r *Roller) Roll(set PoolSet) RollResult {
	result := set.RollDetailed(r.src)
	r.logger.Debug("dice roll",
		zap.String("pools", result.Expression),
		zap.Ints("values", result.Values),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr with ParsePoolSet and rolls it, logging the result.
//
// Precondition: expr must be a valid pool-set expression.
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	set, err := ParsePoolSet(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(set), nil
}
