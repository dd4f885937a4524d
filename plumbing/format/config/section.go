package config

import (
	"fmt"
	"strings"
)

func isCaseInsensitiveEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Sections is an ordered list of top-level config sections.
type Sections []*Section

// GoString implements fmt.GoStringer for diagnostic printing and test
// comparisons.
func (s Sections) GoString() string {
	var parts []string
	for _, sec := range s {
		parts = append(parts, sec.GoString())
	}
	return strings.Join(parts, ", ")
}

// Section is a named group of options and subsections, e.g. "[core]" or
// "[remote]" before any subsection name is introduced.
type Section struct {
	Name        string
	Options     Options
	Subsections Subsections
}

// GoString implements fmt.GoStringer.
func (s *Section) GoString() string {
	var opts []string
	for _, o := range s.Options {
		opts = append(opts, o.GoString())
	}
	return fmt.Sprintf("&config.Section{Name:%q, Options:%s, Subsections:%s}",
		s.Name, strings.Join(opts, ", "), s.Subsections.GoString())
}

// IsName reports whether s is named name, case-insensitively.
func (s *Section) IsName(name string) bool { return isCaseInsensitiveEqual(s.Name, name) }

// Subsection returns the named subsection, creating it if absent.
func (s *Section) Subsection(name string) *Subsection {
	for _, ss := range s.Subsections {
		if ss.Name == name {
			return ss
		}
	}
	ss := &Subsection{Name: name}
	s.Subsections = append(s.Subsections, ss)
	return ss
}

// HasSubsection reports whether s has a subsection named name.
func (s *Section) HasSubsection(name string) bool {
	for _, ss := range s.Subsections {
		if ss.Name == name {
			return true
		}
	}
	return false
}

// RemoveSubsection removes the named subsection, if present, and returns s
// for chaining.
func (s *Section) RemoveSubsection(name string) *Section {
	var kept Subsections
	for _, ss := range s.Subsections {
		if ss.Name != name {
			kept = append(kept, ss)
		}
	}
	s.Subsections = kept
	return s
}

// Option returns the value of the last option named key, or "" if absent.
// Git config semantics say the last definition wins when a key repeats.
func (s *Section) Option(key string) string {
	found := s.Options.withKey(key)
	if len(found) == 0 {
		return ""
	}
	return found[len(found)-1].Value
}

// OptionAll returns every value of options named key, in insertion order.
func (s *Section) OptionAll(key string) []string {
	var out []string
	for _, o := range s.Options.withKey(key) {
		out = append(out, o.Value)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// HasOption reports whether s has any option named key.
func (s *Section) HasOption(key string) bool { return len(s.Options.withKey(key)) > 0 }

// AddOption appends a new key/value pair even if key already exists,
// matching Git's "multi-valued config" semantics.
func (s *Section) AddOption(key, value string) *Section {
	s.Options = append(s.Options, &Option{Key: key, Value: value})
	return s
}

// SetOption sets key's value, replacing an existing single definition or
// appending a fresh one. When len(value) > 1 it replaces every existing
// definition with the list given.
func (s *Section) SetOption(key string, value ...string) *Section {
	s.Options = setOption(s.Options, key, value...)
	return s
}

// RemoveOption removes every option named key.
func (s *Section) RemoveOption(key string) *Section {
	s.Options = removeOption(s.Options, key)
	return s
}

// GetAllOptions is the section-level entry point used by Config.GetAllOptions.
func (s *Section) GetAllOptions(key string) []string { return s.OptionAll(key) }

// GetOption is the section-level entry point used by Config.GetOption.
func (s *Section) GetOption(key string) string { return s.Option(key) }

// Subsections is an ordered list of named subsections inside one section,
// e.g. the per-remote "[remote \"origin\"]" blocks.
type Subsections []*Subsection

// GoString implements fmt.GoStringer.
func (ss Subsections) GoString() string {
	var parts []string
	for _, s := range ss {
		parts = append(parts, s.GoString())
	}
	return strings.Join(parts, ", ")
}

// Subsection is a named, nested config block.
type Subsection struct {
	Name    string
	Options Options
}

// GoString implements fmt.GoStringer.
func (s *Subsection) GoString() string {
	var opts []string
	for _, o := range s.Options {
		opts = append(opts, o.GoString())
	}
	return fmt.Sprintf("&config.Subsection{Name:%q, Options:%s}", s.Name, strings.Join(opts, ", "))
}

// IsName reports whether s is named name. Unlike a top-level Section,
// subsection names are case-sensitive (Git treats remote and tag names
// literally).
func (s *Subsection) IsName(name string) bool { return s.Name == name }

func (s *Subsection) Option(key string) string {
	found := s.Options.withKey(key)
	if len(found) == 0 {
		return ""
	}
	return found[len(found)-1].Value
}

func (s *Subsection) OptionAll(key string) []string {
	var out []string
	for _, o := range s.Options.withKey(key) {
		out = append(out, o.Value)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func (s *Subsection) HasOption(key string) bool { return len(s.Options.withKey(key)) > 0 }

func (s *Subsection) AddOption(key, value string) *Subsection {
	s.Options = append(s.Options, &Option{Key: key, Value: value})
	return s
}

func (s *Subsection) SetOption(key string, value ...string) *Subsection {
	s.Options = setOption(s.Options, key, value...)
	return s
}

func (s *Subsection) RemoveOption(key string) *Subsection {
	s.Options = removeOption(s.Options, key)
	return s
}

func (s *Subsection) GetAllOptions(key string) []string { return s.OptionAll(key) }
func (s *Subsection) GetOption(key string) string       { return s.Option(key) }

// setOption implements Git's two SetOption shapes. With a single value it
// replaces whatever is currently set for key with exactly that one
// definition, appended fresh at the end. With multiple values it instead
// reconciles in place: a target value already present at some index is
// left untouched there, and only the entries that don't already hold one
// of the target values are overwritten (or trimmed/appended) to match the
// rest of the list. This keeps an unrelated edit from needlessly
// reordering a multi-valued key such as core.attributesfile.
func setOption(opts Options, key string, values ...string) Options {
	if len(values) == 0 {
		return opts
	}
	if len(values) == 1 {
		return append(removeOption(opts, key), &Option{Key: key, Value: values[0]})
	}

	var indices []int
	for i, o := range opts {
		if o.IsKey(key) {
			indices = append(indices, i)
		}
	}

	satisfied := make([]bool, len(values))
	usedIdx := map[int]bool{}
	for _, idx := range indices {
		for vi, v := range values {
			if !satisfied[vi] && opts[idx].Value == v {
				satisfied[vi] = true
				usedIdx[idx] = true
				break
			}
		}
	}

	var leftoverValues []string
	for vi, v := range values {
		if !satisfied[vi] {
			leftoverValues = append(leftoverValues, v)
		}
	}
	var leftoverIdx []int
	for _, idx := range indices {
		if !usedIdx[idx] {
			leftoverIdx = append(leftoverIdx, idx)
		}
	}

	n := len(leftoverIdx)
	if len(leftoverValues) < n {
		n = len(leftoverValues)
	}
	for i := 0; i < n; i++ {
		opts[leftoverIdx[i]].Value = leftoverValues[i]
	}

	switch {
	case len(leftoverIdx) > len(leftoverValues):
		toRemove := map[int]bool{}
		for _, idx := range leftoverIdx[len(leftoverValues):] {
			toRemove[idx] = true
		}
		var kept Options
		for i, o := range opts {
			if !toRemove[i] {
				kept = append(kept, o)
			}
		}
		return kept
	case len(leftoverValues) > len(leftoverIdx):
		for _, v := range leftoverValues[len(leftoverIdx):] {
			opts = append(opts, &Option{Key: key, Value: v})
		}
	}
	return opts
}

func removeOption(opts Options, key string) Options {
	var kept Options
	for _, o := range opts {
		if !o.IsKey(key) {
			kept = append(kept, o)
		}
	}
	return kept
}
