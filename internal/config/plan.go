package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/mahdiidarabi/tzpass-recovery/internal/wordlist"
	"github.com/mahdiidarabi/tzpass-recovery/pkg/tzrecovery"
)

// PlanConfig builds the slot lists. A component slot holds the component
// itself, then its word list, then its generated fragments. Salt lists that
// only contain the empty salt leave their slot inactive.
func (c Config) PlanConfig() (tzrecovery.PlanConfig, error) {
	pc := tzrecovery.PlanConfig{
		WithVariable: c.Generation.WithVariable,
		MinLen:       c.PasswordConstraints.MinLength,
		MaxLen:       c.PasswordConstraints.MaxLength,
	}

	var err error
	if pc.Prefix, err = saltList("prefix", c.Generation.PrefixSalt); err != nil {
		return pc, err
	}
	if pc.Variable, err = saltList("variable", c.Generation.VariableSalt); err != nil {
		return pc, err
	}
	if pc.Extra, err = saltList("extra", c.Generation.ExtraSalt); err != nil {
		return pc, err
	}

	slots := c.Generation.Slots.List()
	for i, comp := range c.Components.List() {
		list, err := c.slotList(comp, slots[i])
		if err != nil {
			return pc, fmt.Errorf("component%d: %w", i+1, err)
		}
		pc.Components[i] = list
	}
	return pc, nil
}

// Plan validates the config and builds the candidate plan.
func (c Config) Plan() (*tzrecovery.Plan, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	pc, err := c.PlanConfig()
	if err != nil {
		return nil, err
	}
	return tzrecovery.NewPlan(pc)
}

func saltList(name string, s Salt) ([]string, error) {
	salts, err := tzrecovery.MixSalts(tzrecovery.SaltConfig{
		Chars:        s.Chars,
		Arity:        s.Arity,
		IncludeEmpty: s.IncludeEmpty,
		AllowRepeat:  s.AllowRepeat,
	})
	if err != nil {
		return nil, fmt.Errorf("%s salt: %w", name, err)
	}
	if len(salts) == 1 && salts[0] == "" {
		return nil, nil
	}
	return salts, nil
}

func (c Config) slotList(component string, slot Slot) ([]string, error) {
	var list []string
	if component != "" {
		list = append(list, component)
	}

	if slot.Wordlist != "" {
		path := slot.Wordlist
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		words, err := wordlist.Load(path)
		if err != nil {
			return nil, fmt.Errorf("word list %s: %w", path, err)
		}
		log.Printf("Loaded %d fragments from %s", len(words), path)
		list = append(list, words...)
	}

	if f := slot.Fragments; f != nil {
		fragments, err := tzrecovery.BuildFragments(tzrecovery.FragmentConfig{
			Alphabet:    f.Alphabet,
			MinLen:      f.MinLength,
			MaxLen:      f.MaxLength,
			RepeatLimit: f.RepeatLimit,
			Capitalize: tzrecovery.Capitalization{
				First: f.Capitalize.First,
				Each:  f.Capitalize.Each,
				All:   f.Capitalize.All,
			},
		})
		if err != nil {
			return nil, err
		}
		list = append(list, fragments...)
	}
	return dedupe(list), nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
