package uci

import (
	"errors"
	"reflect"
	"testing"
)

const wanInput = `config interface 'wan'
	option ifname 'eth0.2'
	option proto 'dhcp'
`

func TestModelScenario(t *testing.T) {
	u, err := ParseModel("network", wanInput)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	typ, name, err := u.GetSection("wan")
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if typ != "interface" || name != "wan" {
		t.Errorf("expected (interface, wan), got (%s, %s)", typ, name)
	}

	optName, values, err := u.GetOption("wan", "ifname")
	if err != nil {
		t.Fatalf("GetOption: %v", err)
	}
	if optName != "ifname" || !reflect.DeepEqual(values, []string{"eth0.2"}) {
		t.Errorf("expected (ifname, [eth0.2]), got (%s, %v)", optName, values)
	}

	if _, _, err := u.GetOption("wan", "mtu"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absent option, got %v", err)
	}
	if _, _, err := u.GetOption("lan", "proto"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absent section, got %v", err)
	}
}

func TestModelPackage(t *testing.T) {
	u := New("wireless")
	if u.Package() != "wireless" {
		t.Errorf("expected wireless, got %q", u.Package())
	}
	u.SetPackage("network")
	if u.Package() != "network" {
		t.Errorf("expected network, got %q", u.Package())
	}
	if !u.Modified() {
		t.Error("SetPackage must mark the document modified")
	}
}

func TestModelAnonymousAccess(t *testing.T) {
	input := `config rule
	option target 'ACCEPT'

config rule
	option target 'DROP'
`
	u, err := ParseModel("firewall", input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if _, _, err := u.GetSection(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("anonymous sections must not resolve by name, got %v", err)
	}

	typ, name, err := u.GetSection("@rule[1]")
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	if typ != "rule" || name != "@rule[1]" {
		t.Errorf("expected (rule, @rule[1]), got (%s, %s)", typ, name)
	}

	_, values, err := u.GetOption("@rule[1]", "target")
	if err != nil {
		t.Fatalf("GetOption via selector: %v", err)
	}
	if !reflect.DeepEqual(values, []string{"DROP"}) {
		t.Errorf("expected [DROP], got %v", values)
	}
}

func TestModelSectionListing(t *testing.T) {
	input := `config zone 'lan'

config rule

config rule

config zone 'wan'
`
	u, err := ParseModel("firewall", input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	all := u.AllSections()
	want := []SectionInfo{
		{"zone", "lan"},
		{"rule", "@rule[0]"},
		{"rule", "@rule[1]"},
		{"zone", "wan"},
	}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("AllSections: got %v, want %v", all, want)
	}

	zones := u.SectionsOfType("zone")
	if len(zones) != 2 || zones[0].Name != "lan" || zones[1].Name != "wan" {
		t.Errorf("SectionsOfType: got %v", zones)
	}

	if first, ok := u.FirstOfType("zone"); !ok || first.Name != "lan" {
		t.Errorf("FirstOfType: got %v, %v", first, ok)
	}
	if last, ok := u.LastOfType("zone"); !ok || last.Name != "wan" {
		t.Errorf("LastOfType: got %v, %v", last, ok)
	}
	if _, ok := u.FirstOfType("nat"); ok {
		t.Error("FirstOfType for absent type must report false")
	}

	var visited []string
	u.ForEach("rule", func(sec *Section) {
		visited = append(visited, u.Config().SectionName(sec))
	})
	if !reflect.DeepEqual(visited, []string{"@rule[0]", "@rule[1]"}) {
		t.Errorf("ForEach order: got %v", visited)
	}
}

func TestModelGetOptionFirstLast(t *testing.T) {
	input := `config timeserver 'ntp'
	list server 'a'
	list server 'b'
	list server 'c'
`
	u, err := ParseModel("system", input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, err := u.GetOptionFirst("ntp", "server"); err != nil || v != "a" {
		t.Errorf("first: got %q, %v", v, err)
	}
	if v, err := u.GetOptionLast("ntp", "server"); err != nil || v != "c" {
		t.Errorf("last: got %q, %v", v, err)
	}
}

func TestModelMutation(t *testing.T) {
	u := New("network")
	if err := u.AddSection("interface", "lan"); err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	if err := u.SetOption("lan", "proto", "static"); err != nil {
		t.Fatalf("SetOption: %v", err)
	}
	if err := u.AddList("lan", "dns", "8.8.8.8"); err != nil {
		t.Fatalf("AddList: %v", err)
	}
	if err := u.AddList("lan", "dns", "9.9.9.9"); err != nil {
		t.Fatalf("AddList: %v", err)
	}
	// Duplicate element is dropped.
	if err := u.AddList("lan", "dns", "8.8.8.8"); err != nil {
		t.Fatalf("AddList: %v", err)
	}

	_, values, err := u.GetOption("lan", "dns")
	if err != nil {
		t.Fatalf("GetOption: %v", err)
	}
	if !reflect.DeepEqual(values, []string{"8.8.8.8", "9.9.9.9"}) {
		t.Errorf("expected deduplicated append order, got %v", values)
	}

	// Multi-value SetOption produces a list.
	if err := u.SetOption("lan", "dns", "1.1.1.1", "1.0.0.1"); err != nil {
		t.Fatalf("SetOption multi: %v", err)
	}
	_, values, _ = u.GetOption("lan", "dns")
	if !reflect.DeepEqual(values, []string{"1.1.1.1", "1.0.0.1"}) {
		t.Errorf("expected replacement list, got %v", values)
	}

	if err := u.SetOption("wan", "proto", "dhcp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetOption on absent section: expected ErrNotFound, got %v", err)
	}

	if err := u.DelOption("lan", "proto"); err != nil {
		t.Fatalf("DelOption: %v", err)
	}
	if _, _, err := u.GetOption("lan", "proto"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected proto gone, got %v", err)
	}

	u.DelSection("lan")
	if _, _, err := u.GetSection("lan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected lan gone, got %v", err)
	}
}

func TestModelAddSectionSemantics(t *testing.T) {
	u := New("network")
	if err := u.AddSection("interface", "lan"); err != nil {
		t.Fatal(err)
	}
	if err := u.SetOption("lan", "proto", "static"); err != nil {
		t.Fatal(err)
	}

	// Same name, same type: no-op, options kept.
	if err := u.AddSection("interface", "lan"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := u.GetOption("lan", "proto"); err != nil {
		t.Errorf("re-adding the same section must keep options: %v", err)
	}

	// Same name, different type: replaced.
	if err := u.AddSection("alias", "lan"); err != nil {
		t.Fatal(err)
	}
	typ, _, err := u.GetSection("lan")
	if err != nil {
		t.Fatal(err)
	}
	if typ != "alias" {
		t.Errorf("expected replaced type alias, got %s", typ)
	}
	if _, _, err := u.GetOption("lan", "proto"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected old options discarded, got %v", err)
	}

	// Anonymous sections always append.
	u.DelAll("rule")
	if err := u.AddSection("rule", ""); err != nil {
		t.Fatal(err)
	}
	if err := u.AddSection("rule", ""); err != nil {
		t.Fatal(err)
	}
	if n := len(u.SectionsOfType("rule")); n != 2 {
		t.Errorf("expected 2 anonymous rule sections, got %d", n)
	}
}

func TestModelDelAll(t *testing.T) {
	u, err := ParseModel("firewall", `config rule
	option target 'ACCEPT'

config zone 'lan'

config rule
	option target 'DROP'
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	u.DelAll("rule")
	if got := u.AllSections(); len(got) != 1 || got[0].Type != "zone" {
		t.Errorf("expected only zone left, got %v", got)
	}
}

func TestModelModifiedFlag(t *testing.T) {
	u, err := ParseModel("network", wanInput)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Modified() {
		t.Error("freshly parsed document must not be modified")
	}
	if err := u.SetOption("wan", "mtu", "1500"); err != nil {
		t.Fatal(err)
	}
	if !u.Modified() {
		t.Error("mutation must set the modified flag")
	}
	u.ClearModified()
	if u.Modified() {
		t.Error("ClearModified must reset the flag")
	}
}

func TestBoolValues(t *testing.T) {
	truthy := []string{"1", "on", "true", "yes", "enabled"}
	falsy := []string{"0", "off", "false", "no", "disabled"}
	for _, v := range truthy {
		if !IsBoolValue(v) || !BoolValue(v) {
			t.Errorf("%q: expected recognized truthy value", v)
		}
	}
	for _, v := range falsy {
		if !IsBoolValue(v) || BoolValue(v) {
			t.Errorf("%q: expected recognized falsy value", v)
		}
	}
	if IsBoolValue("maybe") || BoolValue("maybe") {
		t.Error("unknown spellings are not boolean")
	}
}
