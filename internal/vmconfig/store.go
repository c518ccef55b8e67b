// Package vmconfig loads and edits the per-directory VM configuration file.
//
// The file is a bash-compatible script made of KEY=value assignments for
// the settings and `profile <name> '<template>'` lines for the profile
// table. Settings lines written commented-out (#KEY=value) document the
// defaults without overriding them.
package vmconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/alessio/shellescape"
	"github.com/mitchellh/go-homedir"
	"github.com/samber/lo"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// DefaultFile is the configuration file name used when no override is given.
const DefaultFile = "qvm.conf"

var (
	// ErrAlreadyExists is returned when a file would be overwritten.
	ErrAlreadyExists = errors.New("already exists")
	// ErrProfileNotFound is returned for an unknown profile name.
	ErrProfileNotFound = errors.New("profile not found")
)

// Config is the merged result of built-in defaults and the configuration
// file. It is built once by Load and not modified afterwards.
type Config struct {
	Path     string
	Settings Settings
	profiles map[string]string
}

// Profile is a named launch template.
type Profile struct {
	Name     string `json:"name" yaml:"name"`
	Template string `json:"template,omitempty" yaml:"template,omitempty"`
}

// New builds a Config directly, mostly useful in tests.
func New(path string, settings Settings, profiles map[string]string) *Config {
	return &Config{Path: path, Settings: settings, profiles: lo.Assign(profiles)}
}

// Load reads the configuration file at path. A missing file is not an
// error: the defaults for cwd and hostOS apply and the profile table is
// empty.
func Load(path, cwd, hostOS string) (*Config, error) {
	defaults := Defaults(cwd, hostOS)
	cfg := &Config{Path: path, Settings: defaults, profiles: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(bytes.NewReader(data), path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	l := &loader{path: path, current: defaults, explicit: map[string]bool{}, profiles: cfg.profiles}
	for _, stmt := range file.Stmts {
		if err := l.statement(stmt); err != nil {
			return nil, err
		}
	}

	settings := l.parsed
	if !l.explicit["DISK"] && settings.Name != "" {
		settings.Disk = DiskFor(settings.Name)
	}
	for key := range pathKeys {
		p := settings.field(key)
		if *p == "" {
			continue
		}
		if expanded, err := homedir.Expand(*p); err == nil {
			*p = expanded
		}
	}
	// Empty fields fall back to the defaults.
	if err := mergo.Merge(&settings, defaults); err != nil {
		return nil, fmt.Errorf("failed to merge defaults: %w", err)
	}
	cfg.Settings = settings

	return cfg, nil
}

type loader struct {
	path     string
	current  Settings
	parsed   Settings
	explicit map[string]bool
	profiles map[string]string
}

func (l *loader) statement(stmt *syntax.Stmt) error {
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		if len(cmd.Args) == 0 {
			for _, as := range cmd.Assigns {
				if err := l.assign(as); err != nil {
					return err
				}
			}
			return nil
		}
		if cmd.Args[0].Lit() == "profile" {
			return l.profile(stmt, cmd)
		}
	case *syntax.DeclClause:
		if cmd.Variant.Value != "export" {
			return nil
		}
		for _, as := range cmd.Args {
			if err := l.assign(as); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *loader) assign(as *syntax.Assign) error {
	if as.Name == nil || as.Index != nil || as.Array != nil || !IsKey(as.Name.Value) {
		return nil
	}
	key := as.Name.Value

	value := ""
	if as.Value != nil {
		env := &expand.Config{Env: expand.ListEnviron(l.current.Environ()...)}
		v, err := expand.Literal(env, as.Value)
		if err != nil {
			return fmt.Errorf("%s:%d: invalid value for %s: %w", l.path, as.Pos().Line(), key, err)
		}
		value = v
	}

	*l.current.field(key) = value
	*l.parsed.field(key) = value
	l.explicit[key] = true
	if key == "NAME" && !l.explicit["DISK"] {
		l.current.Disk = DiskFor(value)
	}
	return nil
}

func (l *loader) profile(stmt *syntax.Stmt, call *syntax.CallExpr) error {
	line := stmt.Pos().Line()
	if len(call.Args) != 3 {
		return fmt.Errorf("%s:%d: profile takes a name and a template", l.path, line)
	}
	name, err := rawWord(call.Args[1])
	if err != nil {
		return fmt.Errorf("%s:%d: %w", l.path, line, err)
	}
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("%s:%d: invalid profile name %q", l.path, line, name)
	}
	template, err := rawWord(call.Args[2])
	if err != nil {
		return fmt.Errorf("%s:%d: %w", l.path, line, err)
	}
	l.profiles[name] = template
	return nil
}

// rawWord returns the text of a word with quoting removed and nothing
// expanded, so $KEY references survive until render time.
func rawWord(w *syntax.Word) (string, error) {
	var sb strings.Builder
	printer := syntax.NewPrinter()
	for _, part := range w.Parts {
		if err := rawPart(&sb, printer, part); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func rawPart(sb *strings.Builder, printer *syntax.Printer, part syntax.WordPart) error {
	switch p := part.(type) {
	case *syntax.Lit:
		sb.WriteString(p.Value)
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			if err := rawPart(sb, printer, inner); err != nil {
				return err
			}
		}
	default:
		return printer.Print(sb, p)
	}
	return nil
}

// Profiles returns the profile names in lexicographic order.
func (c *Config) Profiles() []string {
	names := lo.Keys(c.profiles)
	slices.Sort(names)
	return names
}

// Profile returns the raw template stored under name.
func (c *Config) Profile(name string) (string, error) {
	t, ok := c.profiles[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return t, nil
}

// Templates returns every profile with its template, sorted by name.
func (c *Config) Templates() []Profile {
	return lo.Map(c.Profiles(), func(name string, _ int) Profile {
		return Profile{Name: name, Template: c.profiles[name]}
	})
}

// Dump writes every setting as KEY=value, one per line, in key order.
func (c *Config) Dump(w io.Writer) error {
	for _, kv := range c.Settings.Environ() {
		if _, err := fmt.Fprintln(w, kv); err != nil {
			return err
		}
	}
	return nil
}

// Template returns the text of a fresh configuration file for a VM in cwd.
func Template(cwd, hostOS string) string {
	defaults := Defaults(cwd, hostOS)

	var b strings.Builder
	fmt.Fprintf(&b, "# qvm configuration for %s\n", defaults.Name)
	b.WriteString("#\n")
	b.WriteString("# Settings below show their defaults. Uncomment a line, or run\n")
	b.WriteString("# `qvm set KEY VALUE`, to override one. Profiles reference\n")
	b.WriteString("# settings as $KEY.\n\n")
	for _, key := range Keys {
		v, _ := defaults.Get(key)
		fmt.Fprintf(&b, "#%s=%s\n", key, shellescape.Quote(v))
	}
	b.WriteString("\n")

	profiles := StarterProfiles(hostOS)
	names := lo.Keys(profiles)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "profile %s %s\n\n", name, shellescape.Quote(profiles[name]))
	}
	return b.String()
}

// Generate writes a fresh configuration file to path. An existing file is
// only replaced when force is set.
func Generate(path, cwd, hostOS string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s %w (use --force to overwrite)", path, ErrAlreadyExists)
		}
	}
	return writeFileAtomic(path, []byte(Template(cwd, hostOS)), 0644)
}

// Set rewrites the first `name=` or `#name=` line of the file at path to
// assign value. It reports false when no such line exists; the file is
// left untouched in that case.
func Set(path, name, value string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	found := false
	for i, line := range lines {
		if !assignsKey(line, name) {
			continue
		}
		newline := ""
		if strings.HasSuffix(line, "\n") {
			newline = "\n"
		}
		lines[i] = name + "=" + shellescape.Quote(value) + newline
		found = true
		break
	}
	if !found {
		return false, nil
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := writeFileAtomic(path, []byte(strings.Join(lines, "")), mode); err != nil {
		return false, err
	}
	return true, nil
}

func assignsKey(line, name string) bool {
	if strings.HasPrefix(line, "#") {
		line = strings.TrimLeft(line[1:], " ")
	}
	return strings.HasPrefix(line, name+"=")
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
