// Filter expressions control verbosity per named logger. The grammar is a
// comma-separated list: an optional bare default level, then
// component=level overrides, e.g. "info,router=debug,store=warn".
// Component names match the zap logger name set with Named(); a directive
// for "store" also covers "store.gc" and deeper names.
package lumen

import (
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FilterEnv is the environment variable consulted when Config.Filter is
// empty.
const FilterEnv = "LUMEN_FILTER"

type directive struct {
	prefix string
	level  zapcore.Level
}

// Filter is a parsed filter expression. The zero value allows info and up
// for every logger.
type Filter struct {
	def        zapcore.Level
	directives []directive
}

// ParseFilter parses a filter expression. Malformed directives are skipped
// rather than failing; an empty expression yields the info default.
func ParseFilter(expr string) Filter {
	f := Filter{def: zapcore.InfoLevel}

	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		name, levelStr, found := strings.Cut(tok, "=")
		if !found {
			// Bare token: the default level.
			if lvl, ok := lookupLevel(tok); ok {
				f.def = lvl
			}
			continue
		}

		name = strings.TrimSpace(name)
		lvl, ok := lookupLevel(strings.TrimSpace(levelStr))
		if name == "" || !ok {
			continue
		}
		f.directives = append(f.directives, directive{prefix: name, level: lvl})
	}

	// Longest prefix first so LevelFor can return the first match.
	sort.SliceStable(f.directives, func(i, j int) bool {
		return len(f.directives[i].prefix) > len(f.directives[j].prefix)
	})

	return f
}

// DefaultFilter resolves the filter for a config: the explicit expression,
// else the LUMEN_FILTER env var, else "info".
func DefaultFilter(expr string) Filter {
	if expr == "" {
		expr = os.Getenv(FilterEnv)
	}
	return ParseFilter(expr)
}

// LevelFor returns the minimum enabled level for a logger name.
func (f Filter) LevelFor(name string) zapcore.Level {
	for _, d := range f.directives {
		if name == d.prefix || strings.HasPrefix(name, d.prefix+".") {
			return d.level
		}
	}
	return f.def
}

// MinLevel returns the most verbose level any directive allows. Used as the
// floor for the logger's atomic level gate.
func (f Filter) MinLevel() zapcore.Level {
	min := f.def
	for _, d := range f.directives {
		if d.level < min {
			min = d.level
		}
	}
	return min
}

// String renders the filter back to expression form.
func (f Filter) String() string {
	parts := []string{f.def.String()}
	for _, d := range f.directives {
		parts = append(parts, d.prefix+"="+d.level.String())
	}
	return strings.Join(parts, ",")
}

// Enabled reports whether any logger could emit at the given level.
func (f Filter) Enabled(lvl zapcore.Level) bool {
	return lvl >= f.MinLevel()
}

func lookupLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(s) {
	case "debug", "trace": // trace maps to the most verbose zap level
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	case "fatal":
		return zapcore.FatalLevel, true
	case "off", "none":
		return zapcore.FatalLevel + 1, true
	default:
		return zapcore.InfoLevel, false
	}
}

// levelGate is the runtime level control shared by the logger's method fast
// path and every sink's filterCore. Until SetLevel is called it defers to the
// parsed Filter; a manual level then replaces the per-logger floors, so a
// runtime "debug" opens every sink even when the filter's default is higher.
type levelGate struct {
	filter Filter
	// manual holds InvalidLevel while no override is set. SetLevel only
	// stores levels from parseLevel, which never produces InvalidLevel.
	manual zap.AtomicLevel
}

func newLevelGate(f Filter) *levelGate {
	return &levelGate{filter: f, manual: zap.NewAtomicLevelAt(zapcore.InvalidLevel)}
}

// floorFor returns the minimum enabled level for a logger name.
func (g *levelGate) floorFor(name string) zapcore.Level {
	if m := g.manual.Level(); m != zapcore.InvalidLevel {
		return m
	}
	return g.filter.LevelFor(name)
}

// enabled reports whether any logger could emit at the given level.
func (g *levelGate) enabled(lvl zapcore.Level) bool {
	if m := g.manual.Level(); m != zapcore.InvalidLevel {
		return lvl >= m
	}
	return lvl >= g.filter.MinLevel()
}

func (g *levelGate) set(lvl zapcore.Level) {
	g.manual.SetLevel(lvl)
}

func (g *levelGate) level() zapcore.Level {
	if m := g.manual.Level(); m != zapcore.InvalidLevel {
		return m
	}
	return g.filter.MinLevel()
}

// filterCore wraps a sink core and gates entries by the entry's logger name
// through the shared levelGate. The wrapped core keeps its own level
// enabler, so the stdout/stderr split still applies underneath.
type filterCore struct {
	zapcore.Core
	gate *levelGate
}

func newFilterCore(core zapcore.Core, gate *levelGate) zapcore.Core {
	return &filterCore{Core: core, gate: gate}
}

func (c *filterCore) Enabled(lvl zapcore.Level) bool {
	return c.gate.enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *filterCore) With(fields []zapcore.Field) zapcore.Core {
	return &filterCore{Core: c.Core.With(fields), gate: c.gate}
}

func (c *filterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if entry.Level >= c.gate.floorFor(entry.LoggerName) && c.Core.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}
