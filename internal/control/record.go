package control

import (
	"github.com/pgclone/controledit/internal/wal"
)

// ControlVersion is the currently supported control record format version. There is no upgrade path from older
// versions, a record with any other version is rejected.
const ControlVersion = 1300

// TransactionID is a 32-bit transaction identifier. The first few values are reserved for special purposes and are
// never handed out as normal transaction identifiers.
type TransactionID uint32

const (
	// InvalidTransactionID marks a transaction identifier field as unset.
	InvalidTransactionID TransactionID = 0

	// BootstrapTransactionID is reserved for rows created while bootstrapping a cluster.
	BootstrapTransactionID TransactionID = 1

	// FrozenTransactionID is reserved for rows old enough to be visible to every transaction.
	FrozenTransactionID TransactionID = 2

	// FirstNormalTransactionID is the smallest transaction identifier handed out during normal operation.
	FirstNormalTransactionID TransactionID = 3
)

// IsNormal reports if the transaction identifier is one handed out during normal operation, as opposed to one of the
// reserved values below FirstNormalTransactionID.
func (t TransactionID) IsNormal() bool {
	return t >= FirstNormalTransactionID
}

// OID is a 32-bit object identifier.
type OID uint32

// InvalidOID marks an object identifier field as unset. It is never handed out as an assigned value.
const InvalidOID OID = 0

// MultiXactID is a 32-bit identifier for a group of transactions jointly holding a lock.
type MultiXactID uint32

const (
	// InvalidMultiXactID marks a multi-transaction identifier field as unset.
	InvalidMultiXactID MultiXactID = 0

	// FirstMultiXactID is the smallest valid multi-transaction identifier. Values below it wrapped around and need
	// to be corrected by adding this constant.
	FirstMultiXactID MultiXactID = 1
)

// MultiXactOffset is a 32-bit offset into the multi-transaction member store.
type MultiXactOffset uint32

// UnsetMultiXactOffset is the reserved all-ones offset meaning "not set". It must never be written to a control
// record as a literal offset.
const UnsetMultiXactOffset = ^MultiXactOffset(0)

// UnsetEpoch is the reserved all-ones epoch meaning "not set". It must never be written to a control record as a
// literal epoch.
const UnsetEpoch = ^uint32(0)

// FullTransactionID combines a 32-bit wraparound-counting epoch in the high half with a 32-bit transaction
// identifier in the low half. The two halves always live in this one packed value, so updating one half can never
// clobber the other.
type FullTransactionID uint64

// FullTransactionIDFromEpochAndXID packs an epoch and a transaction identifier into a FullTransactionID.
func FullTransactionIDFromEpochAndXID(epoch uint32, xid TransactionID) FullTransactionID {
	return FullTransactionID(uint64(epoch)<<32 | uint64(xid))
}

// Epoch returns the wraparound epoch stored in the high half.
func (f FullTransactionID) Epoch() uint32 {
	return uint32(f >> 32)
}

// XID returns the transaction identifier stored in the low half.
func (f FullTransactionID) XID() TransactionID {
	return TransactionID(f)
}

// WithEpoch returns the full transaction identifier with the epoch replaced and the transaction identifier
// preserved.
func (f FullTransactionID) WithEpoch(epoch uint32) FullTransactionID {
	return FullTransactionIDFromEpochAndXID(epoch, f.XID())
}

// WithXID returns the full transaction identifier with the transaction identifier replaced and the epoch preserved.
func (f FullTransactionID) WithXID(xid TransactionID) FullTransactionID {
	return FullTransactionIDFromEpochAndXID(f.Epoch(), xid)
}

// ControlRecord is the persistent control record of a database cluster. It tracks the global allocation counters and
// the WAL recovery position. The record is decoded once, mutated in memory and encoded once, there is no partial
// update of the persisted form.
type ControlRecord struct {
	// A unique identifier for the cluster the record belongs to. Encoded as eight bytes.
	SystemIdentifier uint64

	// The version of the control record format. This must match ControlVersion. Encoded as four bytes.
	Version uint32

	// The WAL segment size in bytes. Must be a power of two between MinSegmentSize and MaxSegmentSize. Encoded as
	// four bytes.
	SegmentSize uint32

	// The timeline new WAL is written to. Encoded as four bytes.
	ThisTimelineID wal.TimelineID

	// The timeline the current one branched off from. Encoded as four bytes.
	PrevTimelineID wal.TimelineID

	// The next full transaction identifier to allocate, combining epoch and transaction identifier. Encoded as
	// eight bytes.
	NextXID FullTransactionID

	// The next object identifier to allocate. Encoded as four bytes.
	NextOID OID

	// The next multi-transaction identifier to allocate. Encoded as four bytes.
	NextMultiXactID MultiXactID

	// The offset the next multi-transaction members are stored at. Encoded as four bytes.
	NextMultiXactOffset MultiXactOffset

	// The oldest transaction identifier still retained. Encoded as four bytes.
	OldestXID TransactionID

	// The database holding the oldest retained transaction identifier, or InvalidOID when unknown. Encoded as four
	// bytes.
	OldestXIDDB OID

	// The oldest multi-transaction identifier still retained. Encoded as four bytes.
	OldestMultiXactID MultiXactID

	// The database holding the oldest retained multi-transaction identifier, or InvalidOID when unknown. Encoded as
	// four bytes.
	OldestMultiXactDB OID

	// The oldest transaction identifier carrying a commit timestamp, or InvalidTransactionID when there is no
	// bound. Encoded as four bytes.
	OldestCommitTsXID TransactionID

	// The newest transaction identifier carrying a commit timestamp, or InvalidTransactionID when there is no
	// bound. Encoded as four bytes.
	NewestCommitTsXID TransactionID
}
