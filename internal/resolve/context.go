package resolve

import (
	"log/slog"

	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/inference"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// Oracle decides the applicability of one candidate against the call-site
// arguments. inference.Checker is the default implementation.
type Oracle interface {
	Check(req inference.Request) inference.Verdict
}

// Index is what the engine needs from the declaration index.
type Index interface {
	symbols.MemberIndex
	symbols.ClassifierIndex
	ClassByType(typeName string) (*symbols.Class, bool)
}

// LocalScope is one local declaration layer. Layers with the same Level
// (e.g. sibling blocks at one nesting depth) form one priority group.
type LocalScope struct {
	Scope symbols.Scope
	Level int
}

// ImplicitReceiver is an enclosing `this` available without being written.
type ImplicitReceiver struct {
	Label string
	Type  typesystem.Type
	Level int
}

// ReceiverStack lists the implicit receivers visible at a call site.
type ReceiverStack interface {
	// Receivers returns the implicit receivers, innermost first.
	Receivers() []ImplicitReceiver
}

// Receivers is a ReceiverStack backed by a slice ordered innermost first.
type Receivers []ImplicitReceiver

func (r Receivers) Receivers() []ImplicitReceiver { return r }

// ImportKind orders import layers from most to least specific.
type ImportKind int

const (
	ImportExplicit ImportKind = iota // import a.b.foo
	ImportPackage                    // declarations of the current package
	ImportStar                       // import a.b.*
	ImportDefault                    // default imports
)

func (k ImportKind) String() string {
	switch k {
	case ImportExplicit:
		return "explicit"
	case ImportPackage:
		return "package"
	case ImportStar:
		return "star"
	case ImportDefault:
		return "default"
	}
	return "unknown"
}

// ImportScope is one import layer.
type ImportScope struct {
	Scope symbols.Scope
	Kind  ImportKind
}

// Context bundles everything a resolution reads. It is shared by reference
// and never written by the engine.
type Context struct {
	Types  *typesystem.Hierarchy
	Oracle Oracle
	Index  Index

	// Locals are ordered innermost first, Imports most specific first.
	Locals    []LocalScope
	Receivers ReceiverStack
	Imports   []ImportScope

	// Enclosing is the declaration being analyzed; nil for top-level code.
	Enclosing symbols.Symbol
	Package   string
	File      string

	// MaxDepth bounds recursive resolution of receivers and arguments.
	MaxDepth int

	Logger *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Context) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return config.DefaultMaxDepth
}

func (c *Context) receivers() []ImplicitReceiver {
	if c.Receivers == nil {
		return nil
	}
	return c.Receivers.Receivers()
}
