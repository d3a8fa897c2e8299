package fixture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"

	"github.com/funvibe/calltower/internal/config"
)

// Archive member names.
const (
	WorldFile  = "world" + config.WorldFileExt
	GoldenFile = "golden"
)

// goldenSeparator splits a golden line into case name and rendering.
const goldenSeparator = " => "

// Archive is a world bundled with the expected rendering of each case:
//
//	-- world.yaml --
//	package: app
//	...
//	-- golden --
//	simple => foo{app/foo(Int)}(1): Int
//
// A plain world file loads as an archive without golden renderings.
type Archive struct {
	Path    string
	Comment string
	World   *World
	// Golden maps case names to their expected rendering; nil when the
	// source has no golden section.
	Golden map[string]string
}

// Load reads a world file or a txtar archive, chosen by extension.
func Load(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse reads data as a txtar archive or a world file depending on the
// extension of path.
func Parse(data []byte, path string) (*Archive, error) {
	if IsArchive(path) {
		return ParseArchive(data, path)
	}
	w, err := ParseWorld(data, path)
	if err != nil {
		return nil, err
	}
	return &Archive{Path: path, World: w}, nil
}

// IsArchive reports whether path names a txtar archive.
func IsArchive(path string) bool {
	return filepath.Ext(path) == config.ArchiveFileExt
}

// ParseArchive parses txtar data. The path is used only for error messages.
func ParseArchive(data []byte, path string) (*Archive, error) {
	ar := txtar.Parse(data)
	a := &Archive{Path: path, Comment: strings.TrimSpace(string(ar.Comment))}
	for _, f := range ar.Files {
		switch f.Name {
		case WorldFile:
			w, err := ParseWorld(f.Data, path+"/"+WorldFile)
			if err != nil {
				return nil, err
			}
			a.World = w
		case GoldenFile:
			g, err := parseGolden(f.Data)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", path, GoldenFile, err)
			}
			a.Golden = g
		default:
			return nil, fmt.Errorf("%s: unexpected archive member %q", path, f.Name)
		}
	}
	if a.World == nil {
		return nil, fmt.Errorf("%s: missing %s", path, WorldFile)
	}
	return a, nil
}

func parseGolden(data []byte) (map[string]string, error) {
	out := make(map[string]string)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, rendering, ok := strings.Cut(line, goldenSeparator)
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"case%srendering\"", i+1, goldenSeparator)
		}
		name = strings.TrimSpace(name)
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("line %d: duplicate case %q", i+1, name)
		}
		out[name] = strings.TrimSpace(rendering)
	}
	return out, nil
}

// FormatGolden renders the golden section for the given case names, in
// order, taking each rendering from got.
func FormatGolden(names []string, got map[string]string) []byte {
	var buf bytes.Buffer
	for _, n := range names {
		r, ok := got[n]
		if !ok {
			continue
		}
		buf.WriteString(n)
		buf.WriteString(goldenSeparator)
		buf.WriteString(r)
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// Rewrite returns the txtar source of data with its golden section replaced.
// Other members are kept byte for byte.
func Rewrite(data []byte, golden []byte) []byte {
	ar := txtar.Parse(data)
	replaced := false
	for i := range ar.Files {
		if ar.Files[i].Name == GoldenFile {
			ar.Files[i].Data = golden
			replaced = true
		}
	}
	if !replaced {
		ar.Files = append(ar.Files, txtar.File{Name: GoldenFile, Data: golden})
	}
	return txtar.Format(ar)
}
