package uci

import (
	"fmt"
	"strconv"
	"strings"
)

// OptionType distinguishes scalar options from list options.
type OptionType int

const (
	// TypeOption is a scalar set by an "option" statement.
	TypeOption OptionType = iota
	// TypeList is an ordered multi-value built from "list" statements.
	TypeList
)

// Option is a single keyed value inside a section. A scalar holds
// exactly one element in Values; a list holds its elements in
// appearance order.
type Option struct {
	Name   string
	Type   OptionType
	Values []string
}

// NewOption creates an option with the given type and values.
func NewOption(name string, typ OptionType, values ...string) *Option {
	return &Option{Name: name, Type: typ, Values: values}
}

// SetValues replaces the option's values.
func (o *Option) SetValues(values ...string) {
	o.Values = values
}

// MergeValues folds new values into the option. A scalar is replaced;
// a list appends elements not already present.
func (o *Option) MergeValues(values ...string) {
	if o.Type == TypeOption {
		o.Values = values
		return
	}
	for _, v := range values {
		found := false
		for _, have := range o.Values {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			o.Values = append(o.Values, v)
		}
	}
}

func (o *Option) clone() *Option {
	return &Option{
		Name:   o.Name,
		Type:   o.Type,
		Values: append([]string(nil), o.Values...),
	}
}

// Section is a named or anonymous block introduced by a "config"
// statement. Options keep insertion order; within a section an option
// name appears at most once.
type Section struct {
	Type    string
	Name    string
	Options []*Option
}

// NewSection creates an empty section. An empty name makes the section
// anonymous.
func NewSection(typ, name string) *Section {
	return &Section{Type: typ, Name: name}
}

// Get returns the option with the given name, or nil.
func (s *Section) Get(name string) *Option {
	for _, opt := range s.Options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

// Add appends an option without looking for an existing one.
func (s *Section) Add(opt *Option) {
	s.Options = append(s.Options, opt)
}

// SetScalar sets name to a single scalar value. An existing option of
// either kind is overridden in place, keeping its position.
func (s *Section) SetScalar(name, value string) {
	if opt := s.Get(name); opt != nil {
		opt.Type = TypeOption
		opt.Values = []string{value}
		return
	}
	s.Add(NewOption(name, TypeOption, value))
}

// AppendList appends value to the list under name. An existing scalar
// under the same name is discarded and a fresh list started: the later
// statement's kind wins.
func (s *Section) AppendList(name, value string) {
	if opt := s.Get(name); opt != nil {
		if opt.Type != TypeList {
			opt.Type = TypeList
			opt.Values = []string{value}
			return
		}
		opt.Values = append(opt.Values, value)
		return
	}
	s.Add(NewOption(name, TypeList, value))
}

// Merge folds opt into the section, merging values when the name
// already exists.
func (s *Section) Merge(opt *Option) {
	if have := s.Get(opt.Name); have != nil {
		have.Type = opt.Type
		have.MergeValues(opt.Values...)
		return
	}
	s.Add(opt)
}

// Del removes the named option. It reports whether an option was
// removed.
func (s *Section) Del(name string) bool {
	for i, opt := range s.Options {
		if opt.Name == name {
			s.Options = append(s.Options[:i], s.Options[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Section) clone() *Section {
	c := &Section{Type: s.Type, Name: s.Name}
	for _, opt := range s.Options {
		c.Options = append(c.Options, opt.clone())
	}
	return c
}

// Config is one parsed UCI package: an ordered sequence of sections.
// Name is the package tag supplied by the caller (by convention the
// file name). PkgName is set only when the file itself carries a
// "package" directive and is re-emitted on serialization.
type Config struct {
	Name     string
	PkgName  string
	Sections []*Section
	Modified bool
}

// NewConfig creates an empty package with the given name tag.
func NewConfig(name string) *Config {
	return &Config{Name: name}
}

// Get resolves a section reference. A plain name returns the first
// section with that name (anonymous sections are not name-addressable).
// A selector of the form "@type[index]" addresses the index-th section
// of that type; a negative index counts from the end. A miss returns
// ErrNotFound; a malformed selector returns a syntax error.
func (c *Config) Get(ref string) (*Section, error) {
	if strings.HasPrefix(ref, "@") {
		return c.getUnnamed(ref)
	}
	if ref == "" {
		return nil, fmt.Errorf("section %q: %w", ref, ErrNotFound)
	}
	for _, sec := range c.Sections {
		if sec.Name == ref {
			return sec, nil
		}
	}
	return nil, fmt.Errorf("section %q: %w", ref, ErrNotFound)
}

func (c *Config) getUnnamed(ref string) (*Section, error) {
	typ, idx, err := parseSelector(ref)
	if err != nil {
		return nil, err
	}
	count := c.Count(typ)
	if idx < 0 {
		idx += count
	}
	if idx < 0 || idx >= count {
		return nil, fmt.Errorf("section %q: index out of bounds: %w", ref, ErrNotFound)
	}
	n := 0
	for _, sec := range c.Sections {
		if sec.Type == typ {
			if n == idx {
				return sec, nil
			}
			n++
		}
	}
	return nil, fmt.Errorf("section %q: %w", ref, ErrNotFound)
}

// Count returns the number of sections of the given type.
func (c *Config) Count(typ string) int {
	n := 0
	for _, sec := range c.Sections {
		if sec.Type == typ {
			n++
		}
	}
	return n
}

// SectionName returns the addressable name of sec: its own name, or the
// generated "@type[i]" selector for anonymous sections, where i is the
// position among sections of the same type.
func (c *Config) SectionName(sec *Section) string {
	if sec.Name != "" {
		return sec.Name
	}
	i := 0
	for _, s := range c.Sections {
		if s.Type != sec.Type {
			continue
		}
		if s == sec {
			break
		}
		i++
	}
	return fmt.Sprintf("@%s[%d]", sec.Type, i)
}

// Add appends a section and returns it.
func (c *Config) Add(sec *Section) *Section {
	c.Sections = append(c.Sections, sec)
	return sec
}

// Merge folds sec into the config. When a section with the same
// addressable name exists its options are merged; otherwise sec is
// appended.
func (c *Config) Merge(sec *Section) *Section {
	name := c.SectionName(sec)
	for _, have := range c.Sections {
		if c.SectionName(have) == name {
			for _, opt := range sec.Options {
				have.Merge(opt.clone())
			}
			return have
		}
	}
	return c.Add(sec)
}

// Del removes the first section whose addressable name matches ref.
func (c *Config) Del(ref string) {
	for i, sec := range c.Sections {
		if c.SectionName(sec) == ref {
			c.Sections = append(c.Sections[:i], c.Sections[i+1:]...)
			return
		}
	}
}

// DelAll removes every section of the given type.
func (c *Config) DelAll(typ string) {
	kept := c.Sections[:0]
	for _, sec := range c.Sections {
		if sec.Type != typ {
			kept = append(kept, sec)
		}
	}
	c.Sections = kept
}

// Clone creates a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	n := &Config{Name: c.Name, PkgName: c.PkgName, Modified: c.Modified}
	for _, sec := range c.Sections {
		n.Sections = append(n.Sections, sec.clone())
	}
	return n
}

// Format renders the config as canonical UCI text, the inverse of
// Parse. Sections appear in document order, options in insertion
// order, one "list" line per element. The rendering is deterministic:
// parsing the output again yields a structurally equal config and a
// byte-identical second rendering.
func (c *Config) Format() string {
	var b strings.Builder
	if c.PkgName != "" {
		fmt.Fprintf(&b, "package %s\n", quoteValue(c.PkgName))
	}
	for _, sec := range c.Sections {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if sec.Name == "" {
			fmt.Fprintf(&b, "config %s\n", sec.Type)
		} else {
			fmt.Fprintf(&b, "config %s %s\n", sec.Type, quoteValue(sec.Name))
		}
		for _, opt := range sec.Options {
			switch opt.Type {
			case TypeOption:
				fmt.Fprintf(&b, "\toption %s %s\n", opt.Name, quoteValue(opt.Values[0]))
			case TypeList:
				for _, v := range opt.Values {
					fmt.Fprintf(&b, "\tlist %s %s\n", opt.Name, quoteValue(v))
				}
			}
		}
	}
	return b.String()
}

// quoteValue renders a value for output. Values are always quoted:
// single quotes by default, switching to double quotes with escaping
// when the value itself contains a single quote.
func quoteValue(v string) string {
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	escaped := strings.ReplaceAll(v, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// parseSelector splits an "@type[index]" section selector. The index
// may be negative to count from the last section of the type.
func parseSelector(ref string) (string, int, error) {
	if len(ref) < 5 || ref[0] != '@' {
		return "", 0, fmt.Errorf("invalid section selector %q: want @type[index]", ref)
	}
	bra := strings.IndexByte(ref, '[')
	if bra <= 1 || ref[len(ref)-1] != ']' {
		return "", 0, fmt.Errorf("invalid section selector %q: want @type[index]", ref)
	}
	typ := ref[1:bra]
	if strings.ContainsAny(typ, "@[]") || strings.ContainsAny(ref[bra+1:len(ref)-1], "@[]") {
		return "", 0, fmt.Errorf("invalid section selector %q: want @type[index]", ref)
	}
	idx, err := strconv.Atoi(ref[bra+1 : len(ref)-1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid section selector %q: index must be numeric", ref)
	}
	return typ, idx, nil
}
