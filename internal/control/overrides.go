package control

import (
	"errors"
	"fmt"

	"github.com/pgclone/controledit/internal/wal"
)

var (
	ErrInvalidOID             = errors.New("object identifier must not be 0")
	ErrInvalidTransactionID   = errors.New("transaction identifier is a reserved value")
	ErrInvalidEpoch           = errors.New("transaction identifier epoch must not be the all-ones unset marker")
	ErrInvalidMultiXactID     = errors.New("multi-transaction identifier must not be 0")
	ErrInvalidMultiXactOffset = errors.New("multi-transaction offset must not be the all-ones unset marker")
)

// MultiXactIDPair carries the next and the oldest multi-transaction identifier, which are always overridden
// together.
type MultiXactIDPair struct {
	Next   MultiXactID
	Oldest MultiXactID
}

// CommitTimestampBounds carries the oldest and the newest transaction identifier bearing a commit timestamp. A zero
// value leaves the respective bound unchanged.
type CommitTimestampBounds struct {
	Oldest TransactionID
	Newest TransactionID
}

// Overrides is the set of field changes requested for one control record edit. Every member is optional, a nil
// member leaves the corresponding record fields untouched. The value is immutable from the point of view of Apply,
// it is built once from operator input and then only read.
type Overrides struct {
	// Replaces the next object identifier. Must not be InvalidOID.
	NextOID *OID

	// Replaces the transaction identifier half of the next full transaction identifier, preserving the epoch. Must
	// be a normal transaction identifier.
	NextXID *TransactionID

	// Replaces the epoch half of the next full transaction identifier, preserving the transaction identifier. Must
	// not be UnsetEpoch.
	Epoch *uint32

	// Replaces the oldest retained transaction identifier and resets its database tag. Must be a normal transaction
	// identifier.
	OldestXID *TransactionID

	// Replaces the next and oldest multi-transaction identifiers and resets the oldest database tag. Neither must
	// be InvalidMultiXactID.
	MultiXactIDs *MultiXactIDPair

	// Replaces the next multi-transaction offset. Must not be UnsetMultiXactOffset.
	MultiXactOffset *MultiXactOffset

	// Replaces the commit timestamp bounds. Each bound must be InvalidTransactionID or a normal transaction
	// identifier.
	CommitTimestamps *CommitTimestampBounds

	// Replaces the WAL segment size in bytes. Must be a power of two between MinSegmentSize and MaxSegmentSize.
	// Takes effect for WAL file name resolution within the same invocation.
	SegmentSize *uint32

	// Raises both timeline fields to the timeline of this WAL position when it is greater than the current
	// timeline. Does nothing otherwise.
	MinWALPosition *wal.SegmentPosition
}

// EffectiveSegmentSize returns the WAL segment size WAL file names must be resolved with: the explicit override when
// one was requested, the size stored in the record otherwise.
func (o Overrides) EffectiveSegmentSize(record ControlRecord) uint32 {
	if o.SegmentSize != nil {
		return *o.SegmentSize
	}
	return record.SegmentSize
}

// Validate makes sure every requested override satisfies the encoding rules of the control record. It never touches
// a record, so a failed validation guarantees that no partial edit took place.
func (o Overrides) Validate() error {
	if o.NextOID != nil && *o.NextOID == InvalidOID {
		return fmt.Errorf("next OID: %w", ErrInvalidOID)
	}
	if o.NextXID != nil && !o.NextXID.IsNormal() {
		return fmt.Errorf("next transaction ID: %w: must be greater than or equal to %d", ErrInvalidTransactionID, FirstNormalTransactionID)
	}
	if o.Epoch != nil && *o.Epoch == UnsetEpoch {
		return fmt.Errorf("transaction ID epoch: %w", ErrInvalidEpoch)
	}
	if o.OldestXID != nil && !o.OldestXID.IsNormal() {
		return fmt.Errorf("oldest transaction ID: %w: must be greater than or equal to %d", ErrInvalidTransactionID, FirstNormalTransactionID)
	}
	if o.MultiXactIDs != nil {
		if o.MultiXactIDs.Next == InvalidMultiXactID {
			return fmt.Errorf("next multi-transaction ID: %w", ErrInvalidMultiXactID)
		}
		if o.MultiXactIDs.Oldest == InvalidMultiXactID {
			return fmt.Errorf("oldest multi-transaction ID: %w", ErrInvalidMultiXactID)
		}
	}
	if o.MultiXactOffset != nil && *o.MultiXactOffset == UnsetMultiXactOffset {
		return fmt.Errorf("multi-transaction offset: %w", ErrInvalidMultiXactOffset)
	}
	if o.CommitTimestamps != nil {
		if o.CommitTimestamps.Oldest != InvalidTransactionID && !o.CommitTimestamps.Oldest.IsNormal() {
			return fmt.Errorf("oldest commit timestamp transaction ID: %w: must be either %d or greater than or equal to %d", ErrInvalidTransactionID, InvalidTransactionID, FirstNormalTransactionID)
		}
		if o.CommitTimestamps.Newest != InvalidTransactionID && !o.CommitTimestamps.Newest.IsNormal() {
			return fmt.Errorf("newest commit timestamp transaction ID: %w: must be either %d or greater than or equal to %d", ErrInvalidTransactionID, InvalidTransactionID, FirstNormalTransactionID)
		}
	}
	if o.SegmentSize != nil && !wal.IsValidSegmentSize(*o.SegmentSize) {
		return fmt.Errorf("WAL segment size: %w: %d bytes", wal.ErrInvalidSegmentSize, *o.SegmentSize)
	}
	return nil
}

// Apply mutates the record with every requested override. All overrides are validated up front, a failed validation
// leaves the record unmodified. The epoch and next transaction ID overrides compose at the bit level over the one
// packed full transaction identifier, so supplying both in the same request is safe in either combination.
func (o Overrides) Apply(record *ControlRecord) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if o.NextOID != nil {
		record.NextOID = *o.NextOID
	}
	if o.NextXID != nil {
		record.NextXID = record.NextXID.WithXID(*o.NextXID)
	}
	if o.MultiXactIDs != nil {
		record.NextMultiXactID = o.MultiXactIDs.Next
		record.OldestMultiXactID = o.MultiXactIDs.Oldest
		if record.OldestMultiXactID < FirstMultiXactID {
			// The supplied value wrapped around, correct it by a single step.
			record.OldestMultiXactID += FirstMultiXactID
		}
		record.OldestMultiXactDB = InvalidOID
	}
	if o.MultiXactOffset != nil {
		record.NextMultiXactOffset = *o.MultiXactOffset
	}
	if o.MinWALPosition != nil && o.MinWALPosition.TimelineID > record.ThisTimelineID {
		record.ThisTimelineID = o.MinWALPosition.TimelineID
		record.PrevTimelineID = o.MinWALPosition.TimelineID
	}
	if o.CommitTimestamps != nil {
		if o.CommitTimestamps.Oldest != InvalidTransactionID {
			record.OldestCommitTsXID = o.CommitTimestamps.Oldest
		}
		if o.CommitTimestamps.Newest != InvalidTransactionID {
			record.NewestCommitTsXID = o.CommitTimestamps.Newest
		}
	}
	if o.Epoch != nil {
		record.NextXID = record.NextXID.WithEpoch(*o.Epoch)
	}
	if o.OldestXID != nil {
		record.OldestXID = *o.OldestXID
		record.OldestXIDDB = InvalidOID
	}
	if o.SegmentSize != nil {
		record.SegmentSize = *o.SegmentSize
	}
	return nil
}
