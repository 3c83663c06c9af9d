package tumbler

import (
	"fmt"
	"time"
)

// TimeCondition gates decryption until an absolute unlock instant.
// Its transforms are identity; the condition only gates.
type TimeCondition struct {
	unlock time.Time
	clock  Clock
}

// Time returns a condition that unlocks d after the clock's current time.
// d must be non-negative. A nil clock uses SystemClock.
func Time(d time.Duration, clock Clock) (*TimeCondition, error) {
	if d < 0 {
		return nil, fmt.Errorf("%w: negative duration %s", ErrInvalidCondition, d)
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &TimeCondition{unlock: clock.Now().Add(d), clock: clock}, nil
}

// TimeAt returns a condition that unlocks at the given instant.
// Use it to restore a time lock from a Manifest.
func TimeAt(unlock time.Time, clock Clock) *TimeCondition {
	if clock == nil {
		clock = SystemClock()
	}
	return &TimeCondition{unlock: unlock, clock: clock}
}

// UnlockAt returns the instant from which the condition is satisfied.
func (c *TimeCondition) UnlockAt() time.Time {
	return c.unlock
}

// Remaining returns how long until the condition is satisfied, or zero.
func (c *TimeCondition) Remaining() time.Duration {
	if d := c.unlock.Sub(c.clock.Now()); d > 0 {
		return d
	}
	return 0
}

// Satisfied reports whether the clock has reached the unlock instant.
func (c *TimeCondition) Satisfied() bool {
	return !c.clock.Now().Before(c.unlock)
}

func (c *TimeCondition) Forward(data []byte) ([]byte, error) {
	return identity(data), nil
}

func (c *TimeCondition) Inverse(data []byte) ([]byte, error) {
	if !c.Satisfied() {
		return nil, fmt.Errorf("%w: time lock opens in %s", ErrConditionNotSatisfied, c.Remaining().Round(time.Second))
	}
	return identity(data), nil
}

// Describe implements Describer. The unlock instant is rounded up to the
// next millisecond, the coarsest precision a codec stores, so a restored
// lock never opens before the original.
func (c *TimeCondition) Describe() ConditionSpec {
	unlock := c.unlock.Truncate(time.Millisecond)
	if unlock.Before(c.unlock) {
		unlock = unlock.Add(time.Millisecond)
	}
	return ConditionSpec{Kind: KindTime, UnlockAt: &unlock}
}
