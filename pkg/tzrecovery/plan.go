package tzrecovery

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrSpaceTooLarge is returned when a plan cannot be indexed with 64 bits.
var ErrSpaceTooLarge = errors.New("search space too large to index")

// PlanConfig binds fragment lists to template slots.
// A slot is active when its list is non-empty.
type PlanConfig struct {
	Prefix     []string    // L
	Variable   []string    // V, only used when WithVariable is set
	Components [4][]string // W, X, Y, Z
	Extra      []string    // E

	// WithVariable lets the variable salt move among the components.
	WithVariable bool

	MinLen int
	MaxLen int
}

// Flags derives the template flags from the non-empty slot lists.
func (c PlanConfig) Flags() TemplateFlags {
	return TemplateFlags{
		Literal:  len(c.Prefix) > 0,
		Variable: c.WithVariable && len(c.Variable) > 0,
		Comp1:    len(c.Components[0]) > 0,
		Comp2:    len(c.Components[1]) > 0,
		Comp3:    len(c.Components[2]) > 0,
		Comp4:    len(c.Components[3]) > 0,
		Extra:    len(c.Extra) > 0,
	}
}

// Plan is an indexable candidate space: every template expanded into the
// Cartesian product of its slot lists. Index i addresses template
// i / PerTemplate and, within it, a mixed-radix tuple with the last slot
// moving fastest. Plans are immutable and safe for concurrent use.
type Plan struct {
	templates   []string
	lists       map[rune][]string
	perTemplate uint64
	size        uint64
	space       *big.Int
	active      int
	minLen      int
	maxLen      int
}

// NewPlan validates the config and builds the template set.
func NewPlan(cfg PlanConfig) (*Plan, error) {
	if err := checkLengthBounds(cfg.MinLen, cfg.MaxLen); err != nil {
		return nil, err
	}

	flags := cfg.Flags()
	var templates []string
	if cfg.WithVariable {
		templates = TemplatesWithVariable(flags)
	} else {
		templates = TemplatesWithoutVariable(flags)
	}

	lists := map[rune][]string{
		SlotLiteral:  cfg.Prefix,
		SlotVariable: cfg.Variable,
		SlotComp1:    cfg.Components[0],
		SlotComp2:    cfg.Components[1],
		SlotComp3:    cfg.Components[2],
		SlotComp4:    cfg.Components[3],
		SlotExtra:    cfg.Extra,
	}

	p := &Plan{
		templates: templates,
		lists:     make(map[rune][]string),
		active:    flags.ActiveCount(cfg.WithVariable),
		minLen:    cfg.MinLen,
		maxLen:    cfg.MaxLen,
	}
	// Every template uses the same label set, so the first one names the active lists.
	var active [][]string
	for _, label := range templates[0] {
		p.lists[label] = lists[label]
		active = append(active, lists[label])
	}

	p.space = CountSpace(active, p.active)
	if !p.space.IsUint64() {
		return nil, fmt.Errorf("%w: %s candidates", ErrSpaceTooLarge, p.space.String())
	}
	p.size = p.space.Uint64()
	p.perTemplate = p.size / uint64(len(templates))
	return p, nil
}

// Templates returns a copy of the slot orderings.
func (p *Plan) Templates() []string {
	return append([]string(nil), p.templates...)
}

// ActiveSlots returns the number of permuted slots.
func (p *Plan) ActiveSlots() int { return p.active }

// Space returns the number of tuples before length filtering.
func (p *Plan) Space() *big.Int { return new(big.Int).Set(p.space) }

// Len returns Space as an index bound.
func (p *Plan) Len() uint64 { return p.size }

// LengthBounds returns the candidate length window.
func (p *Plan) LengthBounds() (minLen, maxLen int) { return p.minLen, p.maxLen }

// SlotList returns the fragment list bound to label, nil for inactive slots.
func (p *Plan) SlotList(label rune) []string {
	return p.lists[label]
}

func (p *Plan) templateLists(tmpl string) [][]string {
	lists := make([][]string, 0, len(tmpl))
	for _, label := range tmpl {
		lists = append(lists, p.lists[label])
	}
	return normalizeLists(lists)
}

// decode maps a global index to a template and a tuple within it.
func (p *Plan) decode(index uint64) (int, [][]string, []int) {
	t := int(index / p.perTemplate)
	rem := index % p.perTemplate
	lists := p.templateLists(p.templates[t])
	idx := make([]int, len(lists))
	for i := len(lists) - 1; i >= 0; i-- {
		n := uint64(len(lists[i]))
		idx[i] = int(rem % n)
		rem /= n
	}
	return t, lists, idx
}

// At returns the candidate at index without applying the length filter.
func (p *Plan) At(index uint64) (string, error) {
	if index >= p.size {
		return "", fmt.Errorf("index %d out of range [0, %d)", index, p.size)
	}
	_, lists, idx := p.decode(index)
	return join(lists, idx), nil
}

// Each streams the candidates from index from onwards, in index order,
// skipping those outside the length window. It stops when fn returns false or
// ctx is cancelled.
func (p *Plan) Each(ctx context.Context, from uint64, fn func(index uint64, candidate string) bool) error {
	if from >= p.size {
		return nil
	}
	t, lists, idx := p.decode(from)
	index := from
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		candidate := join(lists, idx)
		if inLengthBounds(candidate, p.minLen, p.maxLen) && !fn(index, candidate) {
			return nil
		}
		index++
		if !nextMixedTuple(idx, lists) {
			t++
			if t >= len(p.templates) {
				return nil
			}
			lists = p.templateLists(p.templates[t])
			idx = make([]int, len(lists))
		}
	}
}

// Candidates materialises the plan through MixCandidates, template by template.
func (p *Plan) Candidates() (MixResult, error) {
	var total MixResult
	for _, tmpl := range p.templates {
		res, err := MixCandidates(p.templateLists(tmpl), p.minLen, p.maxLen)
		if err != nil {
			return MixResult{}, err
		}
		total.Candidates = append(total.Candidates, res.Candidates...)
		total.Considered += res.Considered
		total.Kept += res.Kept
	}
	return total, nil
}

func join(lists [][]string, idx []int) string {
	var sb strings.Builder
	for i, j := range idx {
		sb.WriteString(lists[i][j])
	}
	return sb.String()
}
