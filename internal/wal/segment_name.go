package wal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrInvalidSegmentFileName = errors.New("invalid WAL segment file name")
	ErrInvalidSegmentSize     = errors.New("invalid WAL segment size")
)

// SegmentFileNameLen is the length of a WAL segment file name: eight hexadecimal characters each for the timeline,
// the high word of the segment number and the low word of the segment number.
const SegmentFileNameLen = 24

// segmentFileNamePattern is the file pattern all WAL segment file names need to follow.
var segmentFileNamePattern = regexp.MustCompile(`^[0-9A-Fa-f]{24}$`)

// TimelineID identifies one line of WAL history. A WAL segment always belongs to exactly one timeline.
type TimelineID uint32

const (
	// MinSegmentSize is the smallest WAL segment size a control record may carry.
	MinSegmentSize = 1024 * 1024

	// MaxSegmentSize is the largest WAL segment size a control record may carry.
	MaxSegmentSize = 1024 * 1024 * 1024
)

// IsValidSegmentSize reports if the given WAL segment size is a power of two within the supported range.
func IsValidSegmentSize(segmentSize uint32) bool {
	return segmentSize >= MinSegmentSize &&
		segmentSize <= MaxSegmentSize &&
		segmentSize&(segmentSize-1) == 0
}

// SegmentPosition is the position in the WAL stream a segment file name resolves to. The same file name resolves to
// different positions under different segment sizes, so the segment size must be finalized before resolving.
type SegmentPosition struct {
	// The timeline the segment belongs to.
	TimelineID TimelineID

	// The sequential number of the segment within its timeline.
	SegmentNumber uint64

	// The byte offset of the first byte of the segment from the start of the WAL stream.
	StartOffset uint64
}

// IsValidSegmentFileName reports if the given file name follows the WAL segment naming convention. It does not
// resolve the name into a position, which additionally requires the segment size.
func IsValidSegmentFileName(fileName string) bool {
	return segmentFileNamePattern.MatchString(fileName)
}

// ParseSegmentFileName resolves a WAL segment file name into the position of its first byte. The file name consists
// of three 32-bit hexadecimal words: the timeline, and the high and low words of the segment number. A single
// high-word increment spans 2^32 bytes of WAL, so the number of segments per high-word increment depends on the
// segment size.
func ParseSegmentFileName(fileName string, segmentSize uint32) (SegmentPosition, error) {
	if !IsValidSegmentFileName(fileName) {
		return SegmentPosition{}, fmt.Errorf("%w: %q must be %d hexadecimal characters", ErrInvalidSegmentFileName, fileName, SegmentFileNameLen)
	}
	if !IsValidSegmentSize(segmentSize) {
		return SegmentPosition{}, fmt.Errorf("%w: %d bytes", ErrInvalidSegmentSize, segmentSize)
	}
	timelineID, err := strconv.ParseUint(fileName[0:8], 16, 32)
	if err != nil {
		// This error should never occur when our file name pattern is correct.
		return SegmentPosition{}, fmt.Errorf("parsing the timeline from the file name: %w", err)
	}
	highWord, err := strconv.ParseUint(fileName[8:16], 16, 32)
	if err != nil {
		return SegmentPosition{}, fmt.Errorf("parsing the segment number high word from the file name: %w", err)
	}
	lowWord, err := strconv.ParseUint(fileName[16:24], 16, 32)
	if err != nil {
		return SegmentPosition{}, fmt.Errorf("parsing the segment number low word from the file name: %w", err)
	}

	segmentsPerHighWord := (uint64(1) << 32) / uint64(segmentSize)
	segmentNumber := highWord*segmentsPerHighWord + lowWord
	return SegmentPosition{
		TimelineID:    TimelineID(timelineID),
		SegmentNumber: segmentNumber,
		StartOffset:   segmentNumber * uint64(segmentSize),
	}, nil
}
