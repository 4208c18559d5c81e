// Package cli implements the interactive UCI shell and the command
// dispatch shared with the non-interactive entry points.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ucikit/uci/pkg/uci"
	"github.com/ucikit/uci/pkg/ucistore"
)

// ErrExit is returned by Execute when the user asked to leave the
// shell.
var ErrExit = errors.New("exit")

// Shell dispatches uci commands against a store.
type Shell struct {
	store *ucistore.Store
	out   io.Writer
}

// New creates a shell over the given store, writing results to out.
func New(store *ucistore.Store, out io.Writer) *Shell {
	if out == nil {
		out = os.Stdout
	}
	return &Shell{store: store, out: out}
}

// Run starts the interactive readline loop. It returns when the user
// exits or input is closed.
func (s *Shell) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "uci> ",
		HistoryFile:     os.TempDir() + "/uci_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(),
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			fmt.Fprintf(rl.Stderr(), "uci: %v\n", err)
		}
	}
}

// Batch executes newline-separated commands from r, stopping at the
// first failure.
func (s *Shell) Batch(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return fmt.Errorf("%s: %w", line, err)
		}
	}
	return scanner.Err()
}

// Execute parses and runs a single command line.
func (s *Shell) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "show":
		return s.show(args)
	case "get":
		return s.get(args)
	case "set":
		return s.set(args)
	case "add":
		return s.add(args)
	case "add_list":
		return s.addList(args)
	case "delete", "del":
		return s.del(args)
	case "commit":
		return s.commit(args)
	case "revert":
		return s.revert(args)
	case "export":
		return s.export(args)
	case "packages":
		return s.listPackages()
	case "help":
		s.help()
		return nil
	case "exit", "quit":
		return ErrExit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (s *Shell) show(args []string) error {
	if len(args) == 0 {
		names, err := s.store.Packages()
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := s.showPackage(name, ""); err != nil {
				return err
			}
		}
		return nil
	}
	pkg, section, _, err := splitRef(args[0])
	if err != nil {
		return err
	}
	return s.showPackage(pkg, section)
}

func (s *Shell) showPackage(pkg, section string) error {
	u, err := s.store.Get(pkg)
	if err != nil {
		return err
	}
	for _, info := range u.AllSections() {
		if section != "" && info.Name != section {
			continue
		}
		fmt.Fprintf(s.out, "%s.%s=%s\n", pkg, info.Name, info.Type)
		opts, err := u.AllOptions(info.Name)
		if err != nil {
			return err
		}
		for _, opt := range opts {
			quoted := make([]string, len(opt.Values))
			for i, v := range opt.Values {
				quoted[i] = "'" + v + "'"
			}
			fmt.Fprintf(s.out, "%s.%s.%s=%s\n", pkg, info.Name, opt.Name, strings.Join(quoted, " "))
		}
	}
	return nil
}

func (s *Shell) get(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <package>.<section>[.<option>]")
	}
	pkg, section, option, err := splitRef(args[0])
	if err != nil {
		return err
	}
	if section == "" {
		return errors.New("usage: get <package>.<section>[.<option>]")
	}
	u, err := s.store.Get(pkg)
	if err != nil {
		return err
	}
	if option == "" {
		typ, _, err := u.GetSection(section)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, typ)
		return nil
	}
	_, values, err := u.GetOption(section, option)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, strings.Join(values, " "))
	return nil
}

func (s *Shell) set(args []string) error {
	pkg, section, option, value, err := splitAssignment(args)
	if err != nil || section == "" || option == "" {
		return errors.New("usage: set <package>.<section>.<option>=<value>")
	}
	return s.store.Set(pkg, section, option, value)
}

func (s *Shell) add(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: add <package> <section-type>")
	}
	u, err := s.store.Get(args[0])
	if err != nil {
		return err
	}
	if err := u.AddSection(args[1], ""); err != nil {
		return err
	}
	if info, ok := u.LastOfType(args[1]); ok {
		fmt.Fprintln(s.out, info.Name)
	}
	return nil
}

func (s *Shell) addList(args []string) error {
	pkg, section, option, value, err := splitAssignment(args)
	if err != nil || section == "" || option == "" {
		return errors.New("usage: add_list <package>.<section>.<option>=<value>")
	}
	u, err := s.store.Get(pkg)
	if err != nil {
		return err
	}
	return u.AddList(section, option, value)
}

func (s *Shell) del(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <package>.<section>[.<option>]")
	}
	pkg, section, option, err := splitRef(args[0])
	if err != nil {
		return err
	}
	if section == "" {
		return errors.New("usage: delete <package>.<section>[.<option>]")
	}
	return s.store.Del(pkg, section, option)
}

func (s *Shell) commit(args []string) error {
	if len(args) == 0 {
		return s.store.CommitAll()
	}
	return s.store.Commit(args[0])
}

func (s *Shell) revert(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: revert <package>")
	}
	_, err := s.store.Revert(args[0])
	return err
}

func (s *Shell) export(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: export <package>")
	}
	u, err := s.store.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, u.Format())
	return nil
}

func (s *Shell) listPackages() error {
	names, err := s.store.Packages()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(s.out, name)
	}
	return nil
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `commands:
  show [<package>[.<section>]]        print configuration
  get <pkg>.<section>[.<option>]      read a section type or option value
  set <pkg>.<section>.<option>=<val>  set a scalar option
  add <package> <section-type>        append an anonymous section
  add_list <pkg>.<sec>.<opt>=<val>    append a list element
  delete <pkg>.<section>[.<option>]   remove an option or section
  commit [<package>]                  persist pending changes
  revert <package>                    discard pending changes
  export <package>                    print canonical UCI text
  packages                            list packages in the config dir
  exit                                leave the shell
`)
}

func (s *Shell) completer() readline.AutoCompleter {
	dynamic := readline.PcItemDynamic(s.completeRefs)
	return readline.NewPrefixCompleter(
		readline.PcItem("show", dynamic),
		readline.PcItem("get", dynamic),
		readline.PcItem("set", dynamic),
		readline.PcItem("add", dynamic),
		readline.PcItem("add_list", dynamic),
		readline.PcItem("delete", dynamic),
		readline.PcItem("commit", dynamic),
		readline.PcItem("revert", dynamic),
		readline.PcItem("export", dynamic),
		readline.PcItem("packages"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// completeRefs offers package names, and section refs once a package
// prefix is typed.
func (s *Shell) completeRefs(line string) []string {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 0 && !strings.HasSuffix(line, " ") {
		arg = fields[len(fields)-1]
	}

	names, err := s.store.Packages()
	if err != nil {
		names = s.store.Loaded()
	}

	if !strings.Contains(arg, ".") {
		return names
	}

	pkg := arg[:strings.Index(arg, ".")]
	u, err := s.store.Get(pkg)
	if err != nil {
		return nil
	}
	var refs []string
	for _, info := range u.AllSections() {
		refs = append(refs, pkg+"."+info.Name)
	}
	return refs
}

// splitRef splits "pkg.section.option" into its parts. Section and
// option may be absent.
func splitRef(ref string) (pkg, section, option string, err error) {
	parts := strings.SplitN(ref, ".", 3)
	if parts[0] == "" {
		return "", "", "", fmt.Errorf("invalid reference %q", ref)
	}
	pkg = parts[0]
	if len(parts) > 1 {
		section = parts[1]
	}
	if len(parts) > 2 {
		option = parts[2]
	}
	return pkg, section, option, nil
}

// splitAssignment splits command arguments of the form
// "pkg.section.option=value"; the value may contain spaces.
func splitAssignment(args []string) (pkg, section, option, value string, err error) {
	joined := strings.Join(args, " ")
	eq := strings.Index(joined, "=")
	if eq < 0 {
		return "", "", "", "", fmt.Errorf("expected <ref>=<value> in %q", joined)
	}
	ref := joined[:eq]
	value = strings.Trim(joined[eq+1:], "'\"")
	pkg, section, option, err = splitRef(ref)
	return pkg, section, option, value, err
}

// BoolOption reads an option and interprets it as a UCI boolean.
func (s *Shell) BoolOption(pkg, section, option string) (bool, error) {
	v, err := s.store.GetValue(pkg, section, option)
	if err != nil {
		return false, err
	}
	if !uci.IsBoolValue(v) {
		return false, fmt.Errorf("option %s.%s.%s=%q is not a boolean", pkg, section, option, v)
	}
	return uci.BoolValue(v), nil
}
