package node

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

// The task leaves below cover the recurring chores of variable-driven
// trees: set variables, check variables, clear variables. All of them
// are cheap and side-effect free outside the state, so they are marked
// adaptable and compose into cooperative trees unchanged.

// AssignConfig configures an Assign leaf.
type AssignConfig struct {
	// Assignments maps variable names to the values assigned on every
	// execution.
	Assignments map[string]any `mapstructure:"assignments"`
}

// Assign writes configured values into state variables. Always SUCCESS.
type Assign struct {
	Leaf
	cfg AssignConfig
}

// NewAssign creates an Assign leaf.
func NewAssign(name string, cfg AssignConfig) *Assign {
	return &Assign{Leaf: NewAdaptableLeaf(name), cfg: cfg}
}

func (n *Assign) Execute(state *domain.State) (domain.Status, error) {
	for name, value := range n.cfg.Assignments {
		state.Vars()[name] = value
	}
	return domain.StatusSuccess, nil
}

// Check is a single comparison applied to one variable's value.
type Check struct {
	// Op is one of "eq", "gt", "gte", "lt", "lte", "intersects".
	Op string `mapstructure:"op"`
	// Value is the right-hand side of the comparison.
	Value any `mapstructure:"value"`
	// Invert negates the comparison result.
	Invert bool `mapstructure:"invert"`
}

// ConditionConfig configures a Condition leaf.
type ConditionConfig struct {
	// Conditions maps variable names to the checks applied to them. All
	// checks of all variables must pass for SUCCESS.
	Conditions map[string][]Check `mapstructure:"conditions"`
	// FailUninitialized makes an uninitialized variable count as a
	// failure. When false (default) the leaf returns RUNNING instead,
	// i.e. "ask me again once the variable arrives".
	FailUninitialized bool `mapstructure:"fail_uninitialized"`
}

// Condition evaluates state variables against configured checks.
//
// Returns SUCCESS when every check passes; FAILED as soon as one check
// fails (or a variable is uninitialized and FailUninitialized is set);
// RUNNING when no check failed but at least one variable is still
// uninitialized.
type Condition struct {
	Leaf
	cfg ConditionConfig
}

// NewCondition creates a Condition leaf, validating every check's
// operator up front.
func NewCondition(name string, cfg ConditionConfig) (*Condition, error) {
	for variable, checks := range cfg.Conditions {
		for _, check := range checks {
			switch check.Op {
			case "eq", "gt", "gte", "lt", "lte", "intersects":
			default:
				return nil, fmt.Errorf("condition %s: unknown op %q for variable %q", name, check.Op, variable)
			}
		}
	}
	return &Condition{Leaf: NewAdaptableLeaf(name), cfg: cfg}, nil
}

func (n *Condition) Execute(state *domain.State) (domain.Status, error) {
	result := domain.StatusSuccess

	for variable, checks := range n.cfg.Conditions {
		value, ok := state.Vars()[variable]
		if !ok || value == nil {
			if n.cfg.FailUninitialized {
				return domain.StatusFailed, nil
			}
			result = domain.StatusRunning
			continue
		}

		for _, check := range checks {
			passed, err := evalCheck(check, value)
			if err != nil {
				return domain.StatusFailed, fmt.Errorf("condition %s, variable %q: %w", n.Name(), variable, err)
			}
			if passed == check.Invert {
				return domain.StatusFailed, nil
			}
		}
	}

	return result, nil
}

func evalCheck(check Check, value any) (bool, error) {
	switch check.Op {
	case "eq":
		return looseEqual(value, check.Value), nil
	case "gt", "gte", "lt", "lte":
		left, ok := asFloat(value)
		if !ok {
			return false, fmt.Errorf("op %q needs a numeric variable, got %T", check.Op, value)
		}
		right, ok := asFloat(check.Value)
		if !ok {
			return false, fmt.Errorf("op %q needs a numeric value, got %T", check.Op, check.Value)
		}
		switch check.Op {
		case "gt":
			return left > right, nil
		case "gte":
			return left >= right, nil
		case "lt":
			return left < right, nil
		default:
			return left <= right, nil
		}
	case "intersects":
		left, ok := asSlice(value)
		if !ok {
			return false, fmt.Errorf("op intersects needs a list variable, got %T", value)
		}
		right, ok := asSlice(check.Value)
		if !ok {
			return false, fmt.Errorf("op intersects needs a list value, got %T", check.Value)
		}
		for _, l := range left {
			for _, r := range right {
				if looseEqual(l, r) {
					return true, nil
				}
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("unknown op %q", check.Op)
}

// looseEqual compares two JSON-ish scalar values, treating all numeric
// types as one domain so that YAML ints compare equal to JSON floats.
func looseEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}

// DefinedConfig configures a Defined leaf.
type DefinedConfig struct {
	// Variables lists the variable names to check. Must not be empty.
	Variables []string `mapstructure:"variables"`
	// Invert flips the check: succeed only when every variable is
	// uninitialized.
	Invert bool `mapstructure:"invert"`
}

// Defined succeeds when every listed variable is initialized (non-nil),
// FAILED otherwise. With Invert set it succeeds only when every listed
// variable is uninitialized.
type Defined struct {
	Leaf
	cfg DefinedConfig
}

// NewDefined creates a Defined leaf.
func NewDefined(name string, cfg DefinedConfig) (*Defined, error) {
	if len(cfg.Variables) == 0 {
		return nil, fmt.Errorf("defined %s: variables must not be empty", name)
	}
	return &Defined{Leaf: NewAdaptableLeaf(name), cfg: cfg}, nil
}

func (n *Defined) Execute(state *domain.State) (domain.Status, error) {
	for _, variable := range n.cfg.Variables {
		value, ok := state.Vars()[variable]
		initialized := ok && value != nil
		if initialized == n.cfg.Invert {
			return domain.StatusFailed, nil
		}
	}
	return domain.StatusSuccess, nil
}

// ClearConfig configures a Clear leaf.
type ClearConfig struct {
	// Variables lists the variables to delete. Empty means all.
	Variables []string `mapstructure:"variables"`
}

// Clear deletes state variables. Always SUCCESS.
type Clear struct {
	Leaf
	cfg ClearConfig
}

// NewClear creates a Clear leaf.
func NewClear(name string, cfg ClearConfig) *Clear {
	return &Clear{Leaf: NewAdaptableLeaf(name), cfg: cfg}
}

func (n *Clear) Execute(state *domain.State) (domain.Status, error) {
	if len(n.cfg.Variables) == 0 {
		for name := range state.Vars() {
			delete(state.Vars(), name)
		}
		return domain.StatusSuccess, nil
	}
	for _, variable := range n.cfg.Variables {
		delete(state.Vars(), variable)
	}
	return domain.StatusSuccess, nil
}
