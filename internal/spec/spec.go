// Package spec defines the declarative workload specification model: a
// workload is an ordered list of sections, each an ordered list of groups,
// each group an unordered bundle of typed operation requests. The model is
// immutable once parsed; all generation state lives in the sequencer.
package spec

import (
	"fmt"

	"github.com/arkilian/loadgen/internal/emitter"
	"github.com/arkilian/loadgen/internal/errors"
)

// KeySpace is the domain keys are drawn from. Extension point, currently
// fixed to alphanumeric.
type KeySpace string

// KeyDistribution is the distribution keys are drawn with. Extension point,
// currently fixed to uniform.
type KeyDistribution string

const (
	KeySpaceAlphanumeric   KeySpace        = "alphanumeric"
	KeyDistributionUniform KeyDistribution = "uniform"
)

// Inserts requests Amount inserts of fresh random keys and values.
type Inserts struct {
	// Amount is the number of inserts.
	Amount int `json:"amount" yaml:"amount" jsonschema:"minimum=0,description=Number of inserts"`
	// KeyLen is the key length in bytes.
	KeyLen int `json:"key_len" yaml:"key_len" jsonschema:"minimum=1,description=Key length"`
	// ValLen is the value length in bytes.
	ValLen int `json:"val_len" yaml:"val_len" jsonschema:"minimum=0,description=Value length"`
}

// Updates requests Amount updates of random live keys with fresh values.
type Updates struct {
	Amount int `json:"amount" yaml:"amount" jsonschema:"minimum=0,description=Number of updates"`
	ValLen int `json:"val_len" yaml:"val_len" jsonschema:"minimum=0,description=Value length"`
}

// Deletes requests Amount deletes of random live keys.
type Deletes struct {
	Amount int `json:"amount" yaml:"amount" jsonschema:"minimum=0,description=Number of deletes"`
}

// PointQueries requests Amount point lookups of random live keys.
type PointQueries struct {
	Amount int `json:"amount" yaml:"amount" jsonschema:"minimum=0,description=Number of point queries"`
}

// EmptyPointQueries requests Amount point lookups of keys guaranteed absent
// from the live key set at emission time.
type EmptyPointQueries struct {
	Amount int `json:"amount" yaml:"amount" jsonschema:"minimum=0,description=Number of empty point queries"`
	KeyLen int `json:"key_len" yaml:"key_len" jsonschema:"minimum=1,description=Probe key length"`
}

// RangeQueries requests Amount range scans whose bounds span Selectivity of
// the live keys, based off the range of valid keys rather than the full
// key space.
type RangeQueries struct {
	Amount      int     `json:"amount" yaml:"amount" jsonschema:"minimum=0,description=Number of range queries"`
	Selectivity float64 `json:"selectivity" yaml:"selectivity" jsonschema:"minimum=0,maximum=1,description=Fraction of live keys spanned by each range"`
}

// Group is an unordered bundle of operation requests sharing one key-set
// snapshot. At most one request of each kind.
type Group struct {
	Inserts           *Inserts           `json:"inserts,omitempty" yaml:"inserts,omitempty"`
	Updates           *Updates           `json:"updates,omitempty" yaml:"updates,omitempty"`
	Deletes           *Deletes           `json:"deletes,omitempty" yaml:"deletes,omitempty"`
	PointQueries      *PointQueries      `json:"point_queries,omitempty" yaml:"point_queries,omitempty"`
	EmptyPointQueries *EmptyPointQueries `json:"empty_point_queries,omitempty" yaml:"empty_point_queries,omitempty"`
	RangeQueries      *RangeQueries      `json:"range_queries,omitempty" yaml:"range_queries,omitempty"`
}

// Section is an independent key-space partition: keys produced in one
// section are never referenced from another. Groups run in declaration order
// against one shared key set, discarded at section end.
type Section struct {
	// Groups that share keys between operations, e.g. a point query will use
	// a key from an insert in the same section.
	Groups []Group `json:"groups" yaml:"groups"`
	// KeySpace is the domain keys are created from.
	KeySpace KeySpace `json:"key_space,omitempty" yaml:"key_space,omitempty"`
	// KeyDistribution is the distribution keys are drawn with.
	KeyDistribution KeyDistribution `json:"key_distribution,omitempty" yaml:"key_distribution,omitempty"`
}

// WorkloadSpec is a full workload description: sections where a key from one
// will not appear in another.
type WorkloadSpec struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// OperationCount returns the number of output lines the group produces.
func (g *Group) OperationCount() int {
	n := 0
	if g.Inserts != nil {
		n += g.Inserts.Amount
	}
	if g.Updates != nil {
		n += g.Updates.Amount
	}
	if g.Deletes != nil {
		n += g.Deletes.Amount
	}
	if g.PointQueries != nil {
		n += g.PointQueries.Amount
	}
	if g.EmptyPointQueries != nil {
		n += g.EmptyPointQueries.Amount
	}
	if g.RangeQueries != nil {
		n += g.RangeQueries.Amount
	}
	return n
}

// BytesCount returns the exact output byte length of the group, assuming all
// referenced keys have length insertKeyLen. Exact whenever every insert in
// the section uses one key length.
func (g *Group) BytesCount(insertKeyLen int) int {
	n := 0
	if g.Inserts != nil {
		n += emitter.InsertLineLen(g.Inserts.KeyLen, g.Inserts.ValLen) * g.Inserts.Amount
	}
	if g.Updates != nil {
		n += emitter.UpdateLineLen(insertKeyLen, g.Updates.ValLen) * g.Updates.Amount
	}
	if g.Deletes != nil {
		n += emitter.DeleteLineLen(insertKeyLen) * g.Deletes.Amount
	}
	if g.PointQueries != nil {
		n += emitter.PointQueryLineLen(insertKeyLen) * g.PointQueries.Amount
	}
	if g.EmptyPointQueries != nil {
		n += emitter.PointQueryLineLen(g.EmptyPointQueries.KeyLen) * g.EmptyPointQueries.Amount
	}
	if g.RangeQueries != nil {
		n += emitter.RangeQueryLineLen(insertKeyLen, insertKeyLen) * g.RangeQueries.Amount
	}
	return n
}

// HasNonInsert reports whether the group requests any operation other than
// inserts. Such a group needs live keys before it can run.
func (g *Group) HasNonInsert() bool {
	return g.Updates != nil || g.Deletes != nil || g.PointQueries != nil ||
		g.EmptyPointQueries != nil || g.RangeQueries != nil
}

// OperationCount returns the number of output lines the section produces.
func (s *Section) OperationCount() int {
	n := 0
	for i := range s.Groups {
		n += s.Groups[i].OperationCount()
	}
	return n
}

// InsertKeyLen returns the largest insert key length declared in the
// section, used for sizing lines that reference previously inserted keys.
func (s *Section) InsertKeyLen() int {
	max := 0
	for i := range s.Groups {
		if is := s.Groups[i].Inserts; is != nil && is.KeyLen > max {
			max = is.KeyLen
		}
	}
	return max
}

// BytesCount returns the output byte length of the section.
func (s *Section) BytesCount() int {
	keyLen := s.InsertKeyLen()
	n := 0
	for i := range s.Groups {
		n += s.Groups[i].BytesCount(keyLen)
	}
	return n
}

// InsertCount returns the total inserts declared in the section, used as the
// key-set capacity hint.
func (s *Section) InsertCount() int {
	n := 0
	for i := range s.Groups {
		if is := s.Groups[i].Inserts; is != nil {
			n += is.Amount
		}
	}
	return n
}

// HasDeletes reports whether any group in the section requests deletes.
func (s *Section) HasDeletes() bool {
	for i := range s.Groups {
		if s.Groups[i].Deletes != nil {
			return true
		}
	}
	return false
}

// HasEmptyPointQueries reports whether any group in the section requests
// empty point queries.
func (s *Section) HasEmptyPointQueries() bool {
	for i := range s.Groups {
		if s.Groups[i].EmptyPointQueries != nil {
			return true
		}
	}
	return false
}

// HasRangeQueries reports whether any group in the section requests range
// queries.
func (s *Section) HasRangeQueries() bool {
	for i := range s.Groups {
		if s.Groups[i].RangeQueries != nil {
			return true
		}
	}
	return false
}

// OperationCount returns the number of output lines the workload produces.
func (w *WorkloadSpec) OperationCount() int {
	n := 0
	for i := range w.Sections {
		n += w.Sections[i].OperationCount()
	}
	return n
}

// BytesCount returns the output byte length of the workload. Exact for
// insert-only workloads and for sections with a single insert key length;
// used as a pre-flight sizing hint for output buffers.
func (w *WorkloadSpec) BytesCount() int {
	n := 0
	for i := range w.Sections {
		n += w.Sections[i].BytesCount()
	}
	return n
}

// ApplyDefaults fills in the extension-point fields that were omitted from
// the document.
func (w *WorkloadSpec) ApplyDefaults() {
	for i := range w.Sections {
		if w.Sections[i].KeySpace == "" {
			w.Sections[i].KeySpace = KeySpaceAlphanumeric
		}
		if w.Sections[i].KeyDistribution == "" {
			w.Sections[i].KeyDistribution = KeyDistributionUniform
		}
	}
}

// Validate checks the structural invariants that can be verified before
// generation begins. Sequencing invariants (delete counts, seedability) are
// checked by the sequencer, which knows the live key count.
func (w *WorkloadSpec) Validate() error {
	if len(w.Sections) == 0 {
		return errors.NewSpecError(errors.CodeNoSections, "workload spec has no sections")
	}
	for si := range w.Sections {
		sec := &w.Sections[si]
		if len(sec.Groups) == 0 {
			return errors.NewSpecError(errors.CodeNoGroups,
				fmt.Sprintf("section %d has no groups", si))
		}
		if sec.KeySpace != KeySpaceAlphanumeric {
			return errors.NewSpecError(errors.CodeUnsupportedOption,
				fmt.Sprintf("section %d: unsupported key_space %q", si, sec.KeySpace))
		}
		if sec.KeyDistribution != KeyDistributionUniform {
			return errors.NewSpecError(errors.CodeUnsupportedOption,
				fmt.Sprintf("section %d: unsupported key_distribution %q", si, sec.KeyDistribution))
		}
		for gi := range sec.Groups {
			g := &sec.Groups[gi]
			if is := g.Inserts; is != nil && is.Amount > 0 && is.KeyLen <= 0 {
				return errors.NewSpecError(errors.CodeUnsupportedOption,
					"inserts.key_len must be positive").AtGroup(si, gi)
			}
			if epq := g.EmptyPointQueries; epq != nil && epq.Amount > 0 && epq.KeyLen <= 0 {
				return errors.NewSpecError(errors.CodeUnsupportedOption,
					"empty_point_queries.key_len must be positive").AtGroup(si, gi)
			}
			if rq := g.RangeQueries; rq != nil {
				if rq.Selectivity < 0 || rq.Selectivity > 1 {
					return errors.NewSpecError(errors.CodeSelectivityRange,
						fmt.Sprintf("range_queries.selectivity %v outside [0,1]", rq.Selectivity)).AtGroup(si, gi)
				}
			}
		}
	}
	return nil
}
