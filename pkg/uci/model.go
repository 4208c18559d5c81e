package uci

import "fmt"

// SectionInfo identifies a section by type and addressable name.
// Anonymous sections are reported with their generated "@type[i]"
// selector.
type SectionInfo struct {
	Type string
	Name string
}

// Uci wraps a parsed Config and exposes the query and mutation surface.
// Reads never mutate. The value itself is not synchronized; callers
// sharing one Uci across goroutines must impose their own locking.
type Uci struct {
	cfg *Config
}

// New creates an empty package model with the given name tag.
func New(name string) *Uci {
	return &Uci{cfg: NewConfig(name)}
}

// FromConfig wraps an already parsed config.
func FromConfig(cfg *Config) *Uci {
	return &Uci{cfg: cfg}
}

// ParseModel parses input and wraps the result with the package tag.
func ParseModel(name, input string) (*Uci, error) {
	cfg, err := Parse(name, input)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg), nil
}

// Config returns the underlying document.
func (u *Uci) Config() *Config {
	return u.cfg
}

// Package returns the package name tag.
func (u *Uci) Package() string {
	return u.cfg.Name
}

// SetPackage replaces the package name tag.
func (u *Uci) SetPackage(name string) {
	u.cfg.Name = name
	u.cfg.Modified = true
}

// Modified reports whether the document changed since it was parsed or
// last marked clean.
func (u *Uci) Modified() bool {
	return u.cfg.Modified
}

// ClearModified marks the document clean, typically after a save.
func (u *Uci) ClearModified() {
	u.cfg.Modified = false
}

// Format renders the document as canonical UCI text.
func (u *Uci) Format() string {
	return u.cfg.Format()
}

// GetSection resolves a section by name or "@type[index]" selector and
// returns its type and addressable name.
func (u *Uci) GetSection(ref string) (string, string, error) {
	sec, err := u.cfg.Get(ref)
	if err != nil {
		return "", "", err
	}
	return sec.Type, u.cfg.SectionName(sec), nil
}

// GetOption returns the option's name and its values. Scalars come
// back as a single-element slice so the shape is uniform with lists.
func (u *Uci) GetOption(section, option string) (string, []string, error) {
	opt, err := u.lookup(section, option)
	if err != nil {
		return "", nil, err
	}
	return opt.Name, append([]string(nil), opt.Values...), nil
}

// GetOptionFirst returns the first value of the option.
func (u *Uci) GetOptionFirst(section, option string) (string, error) {
	opt, err := u.lookup(section, option)
	if err != nil {
		return "", err
	}
	if len(opt.Values) == 0 {
		return "", fmt.Errorf("option %s.%s has no value: %w", section, option, ErrNotFound)
	}
	return opt.Values[0], nil
}

// GetOptionLast returns the last value of the option.
func (u *Uci) GetOptionLast(section, option string) (string, error) {
	opt, err := u.lookup(section, option)
	if err != nil {
		return "", err
	}
	if len(opt.Values) == 0 {
		return "", fmt.Errorf("option %s.%s has no value: %w", section, option, ErrNotFound)
	}
	return opt.Values[len(opt.Values)-1], nil
}

// AllOptions returns the section's options in insertion order.
func (u *Uci) AllOptions(section string) ([]*Option, error) {
	sec, err := u.cfg.Get(section)
	if err != nil {
		return nil, err
	}
	return append([]*Option(nil), sec.Options...), nil
}

// AllSections lists every section in document order.
func (u *Uci) AllSections() []SectionInfo {
	infos := make([]SectionInfo, 0, len(u.cfg.Sections))
	for _, sec := range u.cfg.Sections {
		infos = append(infos, SectionInfo{Type: sec.Type, Name: u.cfg.SectionName(sec)})
	}
	return infos
}

// SectionsOfType lists the sections of the given type in document
// order.
func (u *Uci) SectionsOfType(typ string) []SectionInfo {
	var infos []SectionInfo
	for _, sec := range u.cfg.Sections {
		if sec.Type == typ {
			infos = append(infos, SectionInfo{Type: sec.Type, Name: u.cfg.SectionName(sec)})
		}
	}
	return infos
}

// FirstOfType returns the first section of the given type.
func (u *Uci) FirstOfType(typ string) (SectionInfo, bool) {
	for _, sec := range u.cfg.Sections {
		if sec.Type == typ {
			return SectionInfo{Type: sec.Type, Name: u.cfg.SectionName(sec)}, true
		}
	}
	return SectionInfo{}, false
}

// LastOfType returns the last section of the given type.
func (u *Uci) LastOfType(typ string) (SectionInfo, bool) {
	for i := len(u.cfg.Sections) - 1; i >= 0; i-- {
		sec := u.cfg.Sections[i]
		if sec.Type == typ {
			return SectionInfo{Type: sec.Type, Name: u.cfg.SectionName(sec)}, true
		}
	}
	return SectionInfo{}, false
}

// ForEach calls fn for every section of the given type, in document
// order.
func (u *Uci) ForEach(typ string, fn func(*Section)) {
	for _, sec := range u.cfg.Sections {
		if sec.Type == typ {
			fn(sec)
		}
	}
}

// AddSection adds a section. Adding a named section that already exists
// with the same type is a no-op; with a different type the old section
// is replaced. Anonymous sections always append.
func (u *Uci) AddSection(typ, name string) error {
	if name == "" {
		u.cfg.Add(NewSection(typ, ""))
		u.cfg.Modified = true
		return nil
	}
	if sec, err := u.cfg.Get(name); err == nil {
		if sec.Type == typ {
			return nil
		}
		u.cfg.Del(name)
	}
	u.cfg.Add(NewSection(typ, name))
	u.cfg.Modified = true
	return nil
}

// SetOption sets an option on an existing section. A single value
// makes a scalar; multiple values make a list.
func (u *Uci) SetOption(section, option string, values ...string) error {
	if len(values) == 0 {
		return fmt.Errorf("set %s.%s: no values given", section, option)
	}
	sec, err := u.cfg.Get(section)
	if err != nil {
		return err
	}
	typ := TypeOption
	if len(values) > 1 {
		typ = TypeList
	}
	if opt := sec.Get(option); opt != nil {
		opt.Type = typ
		opt.SetValues(values...)
	} else {
		sec.Add(NewOption(option, typ, values...))
	}
	u.cfg.Modified = true
	return nil
}

// AddList appends a value to the list under option, creating the list
// if needed. A value already present is not appended again.
func (u *Uci) AddList(section, option, value string) error {
	sec, err := u.cfg.Get(section)
	if err != nil {
		return err
	}
	if opt := sec.Get(option); opt != nil {
		opt.Type = TypeList
		opt.MergeValues(value)
	} else {
		sec.Add(NewOption(option, TypeList, value))
	}
	u.cfg.Modified = true
	return nil
}

// DelOption removes an option. Removing from an absent section or an
// absent option is not an error.
func (u *Uci) DelOption(section, option string) error {
	sec, err := u.cfg.Get(section)
	if err != nil {
		return nil
	}
	if sec.Del(option) {
		u.cfg.Modified = true
	}
	return nil
}

// DelSection removes the section with the given addressable name.
func (u *Uci) DelSection(section string) {
	u.cfg.Del(section)
	u.cfg.Modified = true
}

// DelAll removes every section of the given type.
func (u *Uci) DelAll(typ string) {
	u.cfg.DelAll(typ)
	u.cfg.Modified = true
}

func (u *Uci) lookup(section, option string) (*Option, error) {
	sec, err := u.cfg.Get(section)
	if err != nil {
		return nil, err
	}
	opt := sec.Get(option)
	if opt == nil {
		return nil, fmt.Errorf("option %s.%s: %w", section, option, ErrNotFound)
	}
	return opt, nil
}

// IsBoolValue reports whether value is one of the conventional UCI
// boolean spellings.
func IsBoolValue(value string) bool {
	switch value {
	case "1", "on", "true", "yes", "enabled",
		"0", "off", "false", "no", "disabled":
		return true
	}
	return false
}

// BoolValue interprets a UCI boolean spelling. Unknown spellings are
// false.
func BoolValue(value string) bool {
	switch value {
	case "1", "on", "true", "yes", "enabled":
		return true
	}
	return false
}
