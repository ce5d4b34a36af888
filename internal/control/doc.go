// Package control implements the codec and the override engine for the persistent control record of a database
// cluster.
//
//   - The control record is a fixed-size binary structure tracking the global allocation counters (transaction,
//     object and multi-transaction identifiers) and the WAL recovery position of a cluster. It is protected by a
//     CRC-32C checksum covering every byte before the checksum field.
//   - Decoding validates the format version and the WAL segment size. A checksum mismatch does not fail decoding
//     but is carried in the result as an integrity status, because operators may deliberately recover from a
//     damaged record.
//   - Overrides describe a set of optional, mutually constrained field changes. They are validated as a whole
//     before any field is touched and are applied in an order which keeps dependent fields consistent, most notably
//     the epoch and transaction identifier halves of the one packed full transaction identifier.
package control
