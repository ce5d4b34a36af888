package control

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/pgclone/controledit/internal/wal"
)

var (
	ErrRecordTooShort     = errors.New("control record is too short")
	ErrUnsupportedVersion = errors.New("unsupported control record version")
)

// RecordSize is the size in bytes of the encoded control record, including the trailing checksum.
const RecordSize = 72

// checksumOffset is the offset of the checksum field. The checksum covers every byte before it.
const checksumOffset = RecordSize - 4

// Endian is the endianness used for serializing/deserializing integers in the control record.
var Endian = binary.LittleEndian

// checksumTable is the table for the CRC-32C (Castagnoli) variant the control record is protected with.
var checksumTable = crc32.MakeTable(crc32.Castagnoli)

// IntegrityStatus describes whether the stored checksum of a decoded control record matched its content.
type IntegrityStatus int

const (
	IntegrityVerified IntegrityStatus = iota + 1 // We do not start at 0 to detect missing values.
	IntegrityUnverified
)

// String returns a string representation of the integrity status.
func (s IntegrityStatus) String() string {
	switch s {
	case IntegrityVerified:
		return "verified"
	case IntegrityUnverified:
		return "unverified"
	default:
		return "unknown"
	}
}

// DecodeResult is the result of decoding a control record. The integrity status travels with the record so a caller
// cannot treat an unverified record as verified by accident. A record decodes as unverified when its stored checksum
// does not match its content, which is deliberately not a fatal condition: operators may want to recover from a
// damaged record rather than being refused to touch it.
type DecodeResult struct {
	// The decoded control record.
	Record ControlRecord

	// Whether the stored checksum matched the record content.
	Integrity IntegrityStatus
}

// Decode deserializes a control record from the given bytes. The input must be at least RecordSize bytes long and
// carry the supported version, otherwise decoding fails. A checksum mismatch does not fail decoding but is reported
// through the integrity status of the result. A segment size which is not a power of two between MinSegmentSize and
// MaxSegmentSize fails decoding, because every WAL position computation depends on it.
func Decode(data []byte) (DecodeResult, error) {
	if len(data) < RecordSize {
		return DecodeResult{}, fmt.Errorf("%w: got %d bytes, need %d", ErrRecordTooShort, len(data), RecordSize)
	}
	version := Endian.Uint32(data[8:12])
	if version != ControlVersion {
		return DecodeResult{}, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, ControlVersion)
	}

	integrity := IntegrityVerified
	if Endian.Uint32(data[checksumOffset:RecordSize]) != crc32.Checksum(data[:checksumOffset], checksumTable) {
		integrity = IntegrityUnverified
		ChecksumMismatchTotal.Inc()
	}

	record := ControlRecord{
		SystemIdentifier:    Endian.Uint64(data[0:8]),
		Version:             version,
		SegmentSize:         Endian.Uint32(data[12:16]),
		ThisTimelineID:      wal.TimelineID(Endian.Uint32(data[16:20])),
		PrevTimelineID:      wal.TimelineID(Endian.Uint32(data[20:24])),
		NextXID:             FullTransactionID(Endian.Uint64(data[24:32])),
		NextOID:             OID(Endian.Uint32(data[32:36])),
		NextMultiXactID:     MultiXactID(Endian.Uint32(data[36:40])),
		NextMultiXactOffset: MultiXactOffset(Endian.Uint32(data[40:44])),
		OldestXID:           TransactionID(Endian.Uint32(data[44:48])),
		OldestXIDDB:         OID(Endian.Uint32(data[48:52])),
		OldestMultiXactID:   MultiXactID(Endian.Uint32(data[52:56])),
		OldestMultiXactDB:   OID(Endian.Uint32(data[56:60])),
		OldestCommitTsXID:   TransactionID(Endian.Uint32(data[60:64])),
		NewestCommitTsXID:   TransactionID(Endian.Uint32(data[64:68])),
	}
	if !wal.IsValidSegmentSize(record.SegmentSize) {
		return DecodeResult{}, fmt.Errorf("control record specifies %w: %d bytes", wal.ErrInvalidSegmentSize, record.SegmentSize)
	}

	DecodeTotal.Inc()
	return DecodeResult{
		Record:    record,
		Integrity: integrity,
	}, nil
}

// Encode serializes the control record into its fixed byte layout. The checksum is always computed fresh over the
// record content, so encoding a record decoded as unverified yields a record which verifies again.
func Encode(record ControlRecord) []byte {
	buffer := make([]byte, RecordSize)
	Endian.PutUint64(buffer[0:8], record.SystemIdentifier)
	Endian.PutUint32(buffer[8:12], record.Version)
	Endian.PutUint32(buffer[12:16], record.SegmentSize)
	Endian.PutUint32(buffer[16:20], uint32(record.ThisTimelineID))
	Endian.PutUint32(buffer[20:24], uint32(record.PrevTimelineID))
	Endian.PutUint64(buffer[24:32], uint64(record.NextXID))
	Endian.PutUint32(buffer[32:36], uint32(record.NextOID))
	Endian.PutUint32(buffer[36:40], uint32(record.NextMultiXactID))
	Endian.PutUint32(buffer[40:44], uint32(record.NextMultiXactOffset))
	Endian.PutUint32(buffer[44:48], uint32(record.OldestXID))
	Endian.PutUint32(buffer[48:52], uint32(record.OldestXIDDB))
	Endian.PutUint32(buffer[52:56], uint32(record.OldestMultiXactID))
	Endian.PutUint32(buffer[56:60], uint32(record.OldestMultiXactDB))
	Endian.PutUint32(buffer[60:64], uint32(record.OldestCommitTsXID))
	Endian.PutUint32(buffer[64:68], uint32(record.NewestCommitTsXID))
	Endian.PutUint32(buffer[checksumOffset:RecordSize], crc32.Checksum(buffer[:checksumOffset], checksumTable))

	EncodeTotal.Inc()
	return buffer
}
