// aviation/maxspeed_db.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/mmp/maxspeed/log"
	"github.com/mmp/maxspeed/math"
	"github.com/mmp/maxspeed/util"

	"github.com/goforj/godump"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iancoleman/orderedmap"
)

///////////////////////////////////////////////////////////////////////////
// MaxSpeedDB

// MaxSpeedDB maps aircraft models, series and families to their VMO/MMO
// tables. Lookups try the model first, then the series and then the
// family; names are matched ignoring case and repeated whitespace.
type MaxSpeedDB struct {
	levels [3]maxSpeedLevel // models, series, families
	cache  *lru.Cache[maxSpeedQuery, MaxSpeedMatch]
	lg     *log.Logger
}

type maxSpeedLevel struct {
	tables map[string]MaxSpeedMatch // normalized name ->
	order  []string                 // names as given in the file
}

type maxSpeedQuery struct {
	Model, Series, Family string
}

// MaxSpeedMatch records which table a lookup resolved to.
type MaxSpeedMatch struct {
	Level string // "model", "series" or "family"
	Name  string
	Spec  *LimitSpec
}

// The JSON representation of the tables; see resources/maxspeed.json.
type maxSpeedFile struct {
	Models   map[string]maxSpeedEntry `json:"models"`
	Series   map[string]maxSpeedEntry `json:"series"`
	Families map[string]maxSpeedEntry `json:"families"`
}

type maxSpeedEntry struct {
	VMO   float64        `json:"vmo,omitempty"`
	MMO   float64        `json:"mmo,omitempty"`
	Bands []maxSpeedBand `json:"bands,omitempty"`
	None  bool           `json:"none,omitempty"`
	Note  string         `json:"note,omitempty"`
}

type maxSpeedBand struct {
	Lower *float64  `json:"lower,omitempty"` // default -Inf
	Upper *float64  `json:"upper,omitempty"` // default +Inf
	Kind  string    `json:"kind"`
	Value float64   `json:"value"`
	Datum *float64  `json:"datum,omitempty"` // linear_speed; defaults to lower
	Slope []float64 `json:"slope,omitempty"` // linear_speed; [numerator, denominator]
}

const maxSpeedCacheSize = 256

var (
	defaultMaxSpeedDB     *MaxSpeedDB
	defaultMaxSpeedDBOnce sync.Once
)

// DefaultMaxSpeedDB returns the tables built into the binary; they are
// loaded the first time it is called. A corrupt embedded table is a bug,
// so it panics in that case.
func DefaultMaxSpeedDB() *MaxSpeedDB {
	defaultMaxSpeedDBOnce.Do(func() {
		const name = "maxspeed.json"
		r := util.LoadResource(name)
		defer r.Close()

		db, err := LoadMaxSpeedDB(r, nil)
		if err != nil {
			panic(fmt.Sprintf("%s: %v", name, err))
		}
		defaultMaxSpeedDB = db
	})
	return defaultMaxSpeedDB
}

// LoadMaxSpeedDB reads VMO/MMO tables in JSON format from r. All of the
// tables are validated; the returned error, which wraps ErrInvalidTable,
// reports every problem found.
func LoadMaxSpeedDB(r io.Reader, lg *log.Logger) (*MaxSpeedDB, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var e util.ErrorLogger
	for _, dup := range util.FindDuplicateJSONKeys(b) {
		e.ErrorString("%s: duplicate key %q", dup.Path, dup.Key)
	}

	var f maxSpeedFile
	if err := util.UnmarshalJSONBytes(b, &f); err != nil {
		e.Error(err)
		return nil, e.Err(ErrInvalidTable)
	}

	cache, err := lru.New[maxSpeedQuery, MaxSpeedMatch](maxSpeedCacheSize)
	if err != nil {
		return nil, err
	}
	db := &MaxSpeedDB{cache: cache, lg: lg}

	for i, sec := range []struct {
		key     string
		level   string
		entries map[string]maxSpeedEntry
	}{
		{"models", "model", f.Models},
		{"series", "series", f.Series},
		{"families", "family", f.Families},
	} {
		e.Push(sec.key)
		db.levels[i] = makeMaxSpeedLevel(sec.level, sec.entries, jsonKeyOrder(b, sec.key), &e)
		e.Pop()
	}

	if err := e.Err(ErrInvalidTable); err != nil {
		if lg != nil {
			e.PrintErrors(lg)
		}
		return nil, err
	}

	lg.Info("Loaded VMO/MMO tables",
		slog.Int("models", len(db.levels[0].order)),
		slog.Int("series", len(db.levels[1].order)),
		slog.Int("families", len(db.levels[2].order)))

	return db, nil
}

func makeMaxSpeedLevel(level string, entries map[string]maxSpeedEntry, order []string,
	e *util.ErrorLogger) maxSpeedLevel {
	l := maxSpeedLevel{tables: make(map[string]MaxSpeedMatch)}

	if len(order) != len(entries) {
		order = slices.Sorted(maps.Keys(entries))
	}
	for _, key := range order {
		e.Push(key)
		spec, err := entries[key].limitSpec()
		if err != nil {
			e.Error(err)
		}

		// "B757, B767" gives both the same table.
		for _, name := range util.SplitCommaKey(key) {
			norm := normalizeAircraftName(name)
			if norm == "" {
				e.ErrorString("empty name")
			} else if prev, ok := l.tables[norm]; ok {
				e.ErrorString("%q has the same name as %q", name, prev.Name)
			} else if spec != nil {
				l.tables[norm] = MaxSpeedMatch{Level: level, Name: name, Spec: spec}
				l.order = append(l.order, name)
			}
		}
		e.Pop()
	}

	return l
}

// jsonKeyOrder returns the keys of the given top-level object in the
// order that they appear in the file.
func jsonKeyOrder(b []byte, section string) []string {
	om := orderedmap.New()
	if err := json.Unmarshal(b, om); err != nil {
		return nil
	}
	v, ok := om.Get(section)
	if !ok {
		return nil
	}
	switch m := v.(type) {
	case orderedmap.OrderedMap:
		return m.Keys()
	case *orderedmap.OrderedMap:
		return m.Keys()
	default:
		return nil
	}
}

func normalizeAircraftName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func (m maxSpeedEntry) limitSpec() (*LimitSpec, error) {
	switch {
	case m.None:
		if m.VMO != 0 || m.MMO != 0 || len(m.Bands) > 0 {
			return nil, fmt.Errorf("\"none\" table also has limits: %w", ErrInvalidTable)
		}
		return NewNoLimits(), nil

	case len(m.Bands) > 0:
		if m.VMO != 0 || m.MMO != 0 {
			return nil, fmt.Errorf("banded table also has \"vmo\"/\"mmo\": %w", ErrInvalidTable)
		}
		bands := make([]Band, len(m.Bands))
		for i, b := range m.Bands {
			var err error
			if bands[i], err = b.band(); err != nil {
				return nil, fmt.Errorf("band %d: %w", i, err)
			}
		}
		return NewBandedLimits(bands...)

	case m.VMO != 0 && m.MMO != 0:
		return NewCrossoverLimits(m.VMO, m.MMO)

	default:
		return NewFixedLimits(m.VMO, m.MMO)
	}
}

func (b maxSpeedBand) band() (Band, error) {
	kind, err := ParseBandKind(b.Kind)
	if err != nil {
		return Band{}, err
	}

	lower, upper := math.Inf(-1), math.Inf(1)
	if b.Lower != nil {
		lower = *b.Lower
	}
	if b.Upper != nil {
		upper = *b.Upper
	}

	switch kind {
	case LinearSpeed:
		if len(b.Slope) != 2 {
			return Band{}, fmt.Errorf("\"slope\" must be [numerator, denominator]: %w", ErrInvalidTable)
		}
		band := LinearSpeedBand(lower, upper, b.Value, b.Slope[0], b.Slope[1])
		if b.Datum != nil {
			band.Datum = *b.Datum
		}
		return band, nil

	default:
		if b.Datum != nil || len(b.Slope) > 0 {
			return Band{}, fmt.Errorf("%s band has \"datum\"/\"slope\": %w", kind, ErrInvalidTable)
		}
		return Band{Lower: lower, Upper: upper, Kind: kind, Value: b.Value}, nil
	}
}

// Lookup returns the VMO/MMO table for the most specific of the given
// model, series and family that has one; empty strings are skipped. It
// returns an error wrapping ErrNoMaxSpeedTable if there is none.
func (db *MaxSpeedDB) Lookup(model, series, family string) (*LimitSpec, error) {
	m, err := db.Match(model, series, family)
	return m.Spec, err
}

// Match is like Lookup but also reports which table was used.
func (db *MaxSpeedDB) Match(model, series, family string) (MaxSpeedMatch, error) {
	q := maxSpeedQuery{Model: model, Series: series, Family: family}
	if m, ok := db.cache.Get(q); ok {
		return m, nil
	}

	for i, name := range []string{model, series, family} {
		if name == "" {
			continue
		}
		if m, ok := db.levels[i].tables[normalizeAircraftName(name)]; ok {
			db.cache.Add(q, m)
			if db.lg != nil && db.lg.Enabled(context.Background(), slog.LevelDebug) {
				db.lg.Debug("Resolved VMO/MMO table", slog.String("query", godump.DumpStr(q)),
					slog.String("table", m.Spec.String()))
			}
			return m, nil
		}
	}

	err := fmt.Errorf("model %q, series %q, family %q: %w", model, series, family, ErrNoMaxSpeedTable)
	if s := db.suggest(model, series, family); len(s) > 0 {
		err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, " or "))
	}
	return MaxSpeedMatch{}, err
}

// suggest returns the names of tables within two edits of the given
// names, closest first.
func (db *MaxSpeedDB) suggest(model, series, family string) []string {
	var d1, d2 []string
	for i, name := range []string{model, series, family} {
		if name == "" {
			continue
		}
		tables := db.levels[i].tables
		l1, l2 := util.SelectInTwoEdits(normalizeAircraftName(name), maps.Keys(tables), nil, nil)
		for _, k := range l1 {
			d1 = append(d1, strconv.Quote(tables[k].Name))
		}
		for _, k := range l2 {
			d2 = append(d2, strconv.Quote(tables[k].Name))
		}
	}
	slices.Sort(d1)
	slices.Sort(d2)
	return slices.Compact(append(d1, d2...))
}

func (db *MaxSpeedDB) Models() []string   { return slices.Clone(db.levels[0].order) }
func (db *MaxSpeedDB) Series() []string   { return slices.Clone(db.levels[1].order) }
func (db *MaxSpeedDB) Families() []string { return slices.Clone(db.levels[2].order) }
