package blobdiff

import "fmt"

// ColumnSet holds the columns of one report: a reference (golden) column,
// the candidates compared against it, and annotation columns that are only
// displayed.
type ColumnSet struct {
	reference   *Series
	candidates  []*Series
	annotations []*Series
}

// ============================================================================
// Construction
// ============================================================================

// AddData appends a data column. The first data column becomes the reference.
func (cs *ColumnSet) AddData(col *Series) error {
	if err := checkColumn("data", col); err != nil {
		return err
	}
	if cs.reference == nil {
		cs.reference = col
		return nil
	}
	cs.candidates = append(cs.candidates, col)
	return nil
}

// AddAnnotation appends a display-only column.
func (cs *ColumnSet) AddAnnotation(col *Series) error {
	if err := checkColumn("annotation", col); err != nil {
		return err
	}
	cs.annotations = append(cs.annotations, col)
	return nil
}

func checkColumn(kind string, col *Series) error {
	if col == nil {
		return fmt.Errorf("%w: %s column is nil", ErrInvalidInput, kind)
	}
	if col.Name() == "" {
		return fmt.Errorf("%w: %s column name is empty", ErrInvalidInput, kind)
	}
	if col.Len() == 0 {
		return fmt.Errorf("%w: %s column %q has no values", ErrInvalidInput, kind, col.Name())
	}
	return nil
}

// Reset drops every column.
func (cs *ColumnSet) Reset() {
	cs.reference = nil
	cs.candidates = nil
	cs.annotations = nil
}

// ============================================================================
// Accessors
// ============================================================================

// Reference returns the golden column, or nil when no data was added.
func (cs *ColumnSet) Reference() *Series {
	return cs.reference
}

// Candidates returns the columns compared against the reference.
func (cs *ColumnSet) Candidates() []*Series {
	return cs.candidates
}

// Annotations returns the display-only columns.
func (cs *ColumnSet) Annotations() []*Series {
	return cs.annotations
}

// DataColumns returns the reference followed by the candidates.
func (cs *ColumnSet) DataColumns() []*Series {
	if cs.reference == nil {
		return nil
	}
	return append([]*Series{cs.reference}, cs.candidates...)
}

// Width returns the number of data and annotation columns.
func (cs *ColumnSet) Width() int {
	return len(cs.DataColumns()) + len(cs.annotations)
}

// Height returns the reference length, which every valid set shares.
func (cs *ColumnSet) Height() int {
	if cs.reference == nil {
		return 0
	}
	return cs.reference.Len()
}

// ============================================================================
// Validation
// ============================================================================

// Validate checks that a report can be produced from the set.
func (cs *ColumnSet) Validate() error {
	if cs.reference == nil {
		return fmt.Errorf("%w: no data", ErrInvalidInput)
	}
	if len(cs.candidates) == 0 {
		return fmt.Errorf("%w: need a candidate besides the reference %q", ErrInvalidInput, cs.reference.Name())
	}

	rows := cs.reference.Len()
	for _, col := range cs.candidates {
		if col.Len() != rows {
			return fmt.Errorf("%w: data column %q has %d rows, reference %q has %d",
				ErrShape, col.Name(), col.Len(), cs.reference.Name(), rows)
		}
	}
	for _, col := range cs.annotations {
		if col.Len() != rows {
			return fmt.Errorf("%w: annotation column %q has %d rows, reference %q has %d",
				ErrShape, col.Name(), col.Len(), cs.reference.Name(), rows)
		}
	}
	return nil
}

// ============================================================================
// Type unification
// ============================================================================

// unify returns a set whose data columns share one dtype. When the dtypes
// already agree the receiver itself is returned and converted is false.
// Otherwise every data column is copied into Float64 (any float present) or
// Int64. Annotation columns are never converted.
func (cs *ColumnSet) unify() (unified *ColumnSet, target DType, converted bool) {
	data := cs.DataColumns()
	dtypes := make([]DType, len(data))
	for i, col := range data {
		dtypes[i] = col.DType()
	}
	if sameDType(dtypes) {
		return cs, dtypes[0], false
	}

	target = unifiedDType(dtypes)
	out := &ColumnSet{
		reference:   cs.reference.Cast(target),
		candidates:  make([]*Series, len(cs.candidates)),
		annotations: cs.annotations,
	}
	for i, col := range cs.candidates {
		out.candidates[i] = col.Cast(target)
	}
	return out, target, true
}
