package tzrecovery

// Slot labels used in templates.
const (
	SlotLiteral  = 'L' // prefix salt
	SlotVariable = 'V' // variable salt
	SlotComp1    = 'W'
	SlotComp2    = 'X'
	SlotComp3    = 'Y'
	SlotComp4    = 'Z'
	SlotExtra    = 'E' // trailing salt
)

// TemplateFlags selects the slots taking part in a template.
// L and E have fixed positions; the remaining active slots are permuted.
type TemplateFlags struct {
	Literal  bool
	Variable bool
	Comp1    bool
	Comp2    bool
	Comp3    bool
	Comp4    bool
	Extra    bool
}

// ActiveCount returns the number of permuted slots.
func (f TemplateFlags) ActiveCount(withVariable bool) int {
	return len(f.orderedLabels(withVariable))
}

func (f TemplateFlags) orderedLabels(withVariable bool) []rune {
	var labels []rune
	if withVariable && f.Variable {
		labels = append(labels, SlotVariable)
	}
	for _, s := range []struct {
		on    bool
		label rune
	}{
		{f.Comp1, SlotComp1},
		{f.Comp2, SlotComp2},
		{f.Comp3, SlotComp3},
		{f.Comp4, SlotComp4},
	} {
		if s.on {
			labels = append(labels, s.label)
		}
	}
	return labels
}

// TemplatesWithVariable returns one template per ordering of the active slots
// among V, W, X, Y and Z.
func TemplatesWithVariable(f TemplateFlags) []string {
	return buildTemplates(f, f.orderedLabels(true))
}

// TemplatesWithoutVariable returns one template per ordering of the active
// component slots W, X, Y and Z. The variable flag is ignored.
func TemplatesWithoutVariable(f TemplateFlags) []string {
	return buildTemplates(f, f.orderedLabels(false))
}

// buildTemplates walks every k-tuple over the k labels and keeps the ones
// without a repeated label, which leaves the k! permutations in product order.
func buildTemplates(f TemplateFlags, labels []rune) []string {
	var templates []string
	idx := make([]int, len(labels))
	tmpl := make([]rune, 0, len(labels)+2)
	for {
		if distinctInts(idx) {
			tmpl = tmpl[:0]
			if f.Literal {
				tmpl = append(tmpl, SlotLiteral)
			}
			for _, j := range idx {
				tmpl = append(tmpl, labels[j])
			}
			if f.Extra {
				tmpl = append(tmpl, SlotExtra)
			}
			templates = append(templates, string(tmpl))
		}
		if !nextTuple(idx, len(labels)) {
			break
		}
	}
	return templates
}

func distinctInts(xs []int) bool {
	var seen uint64
	for _, x := range xs {
		bit := uint64(1) << uint(x)
		if seen&bit != 0 {
			return false
		}
		seen |= bit
	}
	return true
}
