// Package sequencer turns a workload specification into a stream of
// concrete operations. For each section it drives a fresh key set; for each
// group it validates the spec invariants, builds the marker list, and
// resolves every marker against the key set and the random generator,
// emitting one line per operation.
package sequencer

import (
	"fmt"
	"math"

	"github.com/arkilian/loadgen/internal/emitter"
	"github.com/arkilian/loadgen/internal/errors"
	"github.com/arkilian/loadgen/internal/keyset"
	"github.com/arkilian/loadgen/internal/observability"
	"github.com/arkilian/loadgen/internal/randgen"
	"github.com/arkilian/loadgen/internal/spec"
)

// maxEmptyProbeAttempts bounds the reject-and-retry loop for empty point
// queries. Exhausting it means the key space is saturated relative to the
// requested probes, which is a specification error, not a retry case.
const maxEmptyProbeAttempts = 1000

// opKind tags one pending operation before it is resolved into concrete
// keys and values.
type opKind uint8

// Marker resolution order within a group is this fixed kind order. The
// alternative of shuffling markers would produce different output for the
// same seed; fixed order keeps runs reproducible.
const (
	opInsert opKind = iota
	opUpdate
	opDelete
	opPointQuery
	opEmptyPointQuery
	opRangeQuery
)

// Options configure one sequencer.
type Options struct {
	// Strategy overrides automatic key-set selection. Empty or
	// StrategyAuto selects per section from the operation mix.
	Strategy keyset.Strategy

	// AllowDuplicateKeys permits identical insert keys to coexist in a
	// section. When false the de-duplicating key-set variant is forced and
	// repeated keys collapse to one.
	AllowDuplicateKeys bool

	// Stats, when non-nil, receives one Record per emitted operation.
	Stats *observability.RunStats
}

// Sequencer generates operation streams from workload specifications.
type Sequencer struct {
	opts Options
}

// New creates a Sequencer.
func New(opts Options) *Sequencer {
	return &Sequencer{opts: opts}
}

// Run generates the full workload into em. The generator is owned
// exclusively by this call; the key set of each section is discarded at
// section end. The emitter is flushed before returning.
func (s *Sequencer) Run(w *spec.WorkloadSpec, gen *randgen.Generator, em *emitter.Emitter) error {
	for si := range w.Sections {
		if err := s.RunSection(&w.Sections[si], si, gen, em); err != nil {
			return err
		}
	}
	return em.Flush()
}

// RunSection generates one section. Exposed so parallel generation can
// drive sections independently.
func (s *Sequencer) RunSection(sec *spec.Section, si int, gen *randgen.Generator, em *emitter.Emitter) error {
	ks := keyset.ForSection(s.opts.Strategy, keyset.SectionProfile{
		CapacityHint:         sec.InsertCount(),
		HasDeletes:           sec.HasDeletes(),
		HasEmptyPointQueries: sec.HasEmptyPointQueries(),
		AllowDuplicateKeys:   s.opts.AllowDuplicateKeys,
	})

	for gi := range sec.Groups {
		if err := s.runGroup(&sec.Groups[gi], ks, gen, em); err != nil {
			var le *errors.LoadgenError
			if e, ok := err.(*errors.LoadgenError); ok {
				le = e.AtGroup(si, gi)
			} else {
				le = errors.Wrap(errors.ErrCategoryInternal, errors.CodeUnexpected,
					"group failed", err).AtGroup(si, gi)
			}
			return le
		}
	}
	return nil
}

func (s *Sequencer) runGroup(g *spec.Group, ks keyset.KeySet, gen *randgen.Generator, em *emitter.Emitter) error {
	if ds := g.Deletes; ds != nil && ds.Amount > ks.Len() {
		return errors.NewSpecError(errors.CodeDeletesExceedKeys,
			fmt.Sprintf("cannot delete %d keys, only %d valid", ds.Amount, ks.Len()))
	}

	insertMarkers := 0
	if g.Inserts != nil {
		insertMarkers = g.Inserts.Amount
	}

	// A group must have at least one valid key before any non-insert
	// operation can run. If empty, one insert is consumed immediately to
	// seed the key set.
	if ks.Empty() && g.HasNonInsert() {
		if insertMarkers < 1 {
			return errors.NewSpecError(errors.CodeEmptyKeySet,
				"group has no valid keys and no inserts to seed them")
		}
		if err := s.emitInsert(g.Inserts, ks, gen, em); err != nil {
			return err
		}
		insertMarkers--
	}

	markers := buildMarkers(g, insertMarkers)

	for _, m := range markers {
		var err error
		switch m {
		case opInsert:
			if g.Inserts == nil {
				return errors.NewInternalError("insert marker without inserts spec")
			}
			err = s.emitInsert(g.Inserts, ks, gen, em)
		case opUpdate:
			if g.Updates == nil {
				return errors.NewInternalError("update marker without updates spec")
			}
			err = s.emitUpdate(g.Updates, ks, gen, em)
		case opDelete:
			err = s.emitDelete(ks, gen, em)
		case opPointQuery:
			err = s.emitPointQuery(ks, gen, em)
		case opEmptyPointQuery:
			if g.EmptyPointQueries == nil {
				return errors.NewInternalError("empty point query marker without spec")
			}
			err = s.emitEmptyPointQuery(g.EmptyPointQueries, ks, gen, em)
		case opRangeQuery:
			if g.RangeQueries == nil {
				return errors.NewInternalError("range query marker without spec")
			}
			err = s.emitRangeQuery(g.RangeQueries, ks, gen, em)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// buildMarkers lays out one tagged entry per requested operation in the
// fixed kind order.
func buildMarkers(g *spec.Group, insertMarkers int) []opKind {
	markers := make([]opKind, 0, g.OperationCount())
	appendN := func(k opKind, n int) {
		for i := 0; i < n; i++ {
			markers = append(markers, k)
		}
	}
	appendN(opInsert, insertMarkers)
	if g.Updates != nil {
		appendN(opUpdate, g.Updates.Amount)
	}
	if g.Deletes != nil {
		appendN(opDelete, g.Deletes.Amount)
	}
	if g.PointQueries != nil {
		appendN(opPointQuery, g.PointQueries.Amount)
	}
	if g.EmptyPointQueries != nil {
		appendN(opEmptyPointQuery, g.EmptyPointQueries.Amount)
	}
	if g.RangeQueries != nil {
		appendN(opRangeQuery, g.RangeQueries.Amount)
	}
	return markers
}

func (s *Sequencer) emitInsert(is *spec.Inserts, ks keyset.KeySet, gen *randgen.Generator, em *emitter.Emitter) error {
	key := gen.Bytes(is.KeyLen)
	val := gen.Bytes(is.ValLen)
	if err := em.Insert(key, val); err != nil {
		return err
	}
	ks.Push(key)
	s.record(observability.OpInsert)
	return nil
}

func (s *Sequencer) emitUpdate(us *spec.Updates, ks keyset.KeySet, gen *randgen.Generator, em *emitter.Emitter) error {
	key := ks.Random(gen.Rand())
	val := gen.Bytes(us.ValLen)
	if err := em.Update(key, val); err != nil {
		return err
	}
	s.record(observability.OpUpdate)
	return nil
}

func (s *Sequencer) emitDelete(ks keyset.KeySet, gen *randgen.Generator, em *emitter.Emitter) error {
	key := ks.Remove(gen.Intn(ks.Len()))
	if err := em.Delete(key); err != nil {
		return err
	}
	s.record(observability.OpDelete)
	return nil
}

func (s *Sequencer) emitPointQuery(ks keyset.KeySet, gen *randgen.Generator, em *emitter.Emitter) error {
	if err := em.PointQuery(ks.Random(gen.Rand())); err != nil {
		return err
	}
	s.record(observability.OpPointQuery)
	return nil
}

func (s *Sequencer) emitEmptyPointQuery(epq *spec.EmptyPointQueries, ks keyset.KeySet, gen *randgen.Generator, em *emitter.Emitter) error {
	for attempt := 0; attempt < maxEmptyProbeAttempts; attempt++ {
		key := gen.Bytes(epq.KeyLen)
		if ks.Contains(key) {
			continue
		}
		if err := em.PointQuery(key); err != nil {
			return err
		}
		s.record(observability.OpEmptyPointQuery)
		return nil
	}
	return errors.NewSpecError(errors.CodeProbeExhausted,
		fmt.Sprintf("no absent key of length %d found in %d draws; key space too small",
			epq.KeyLen, maxEmptyProbeAttempts))
}

func (s *Sequencer) emitRangeQuery(rq *spec.RangeQueries, ks keyset.KeySet, gen *randgen.Generator, em *emitter.Emitter) error {
	ks.Sort()

	numItems := int(math.Floor(rq.Selectivity * float64(ks.Len())))
	start, end := 0, ks.Len()-1
	if span := ks.Len() - numItems; span > 0 {
		start = gen.Intn(span)
		end = start + numItems
	}

	if err := em.RangeQuery(ks.Get(start), ks.Get(end)); err != nil {
		return err
	}
	s.record(observability.OpRangeQuery)
	return nil
}

func (s *Sequencer) record(kind observability.OpKind) {
	if s.opts.Stats != nil {
		s.opts.Stats.Record(kind)
	}
}
