package wal_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pgclone/controledit/internal/wal"
)

var _ = Describe("IsValidSegmentSize", func() {
	DescribeTable("should only accept powers of two between 1 MiB and 1 GiB",
		func(segmentSize uint32, want bool) {
			Expect(wal.IsValidSegmentSize(segmentSize)).To(Equal(want))
		},
		Entry("1 MiB", uint32(1024*1024), true),
		Entry("16 MiB", uint32(16*1024*1024), true),
		Entry("1 GiB", uint32(1024*1024*1024), true),
		Entry("zero", uint32(0), false),
		Entry("512 KiB", uint32(512*1024), false),
		Entry("3 MiB", uint32(3*1024*1024), false),
		Entry("2 GiB", uint32(2*1024*1024*1024), false),
		Entry("one below 16 MiB", uint32(16*1024*1024-1), false),
	)
})

var _ = Describe("ParseSegmentFileName", func() {
	It("should resolve the timeline and the segment start offset", func() {
		position, err := wal.ParseSegmentFileName("000000010000000000000002", 16*1024*1024)
		Expect(err).ToNot(HaveOccurred())
		Expect(position.TimelineID).To(Equal(wal.TimelineID(1)))
		Expect(position.SegmentNumber).To(Equal(uint64(2)))
		Expect(position.StartOffset).To(Equal(uint64(2 * 16 * 1024 * 1024)))
	})

	It("should account for the high word of the segment number", func() {
		// With 16 MiB segments, one high word increment spans 256 segments.
		position, err := wal.ParseSegmentFileName("000000030000000100000005", 16*1024*1024)
		Expect(err).ToNot(HaveOccurred())
		Expect(position.TimelineID).To(Equal(wal.TimelineID(3)))
		Expect(position.SegmentNumber).To(Equal(uint64(256 + 5)))
		Expect(position.StartOffset).To(Equal(uint64(256+5) * 16 * 1024 * 1024))
	})

	It("should resolve the same file name to different offsets under different segment sizes", func() {
		smallSegments, err := wal.ParseSegmentFileName("000000010000000100000000", 1024*1024)
		Expect(err).ToNot(HaveOccurred())
		largeSegments, err := wal.ParseSegmentFileName("000000010000000100000000", 64*1024*1024)
		Expect(err).ToNot(HaveOccurred())

		// Both names point at the same WAL stream position of 4 GiB, reached after a different number of segments.
		Expect(smallSegments.SegmentNumber).To(Equal(uint64(4096)))
		Expect(largeSegments.SegmentNumber).To(Equal(uint64(64)))
		Expect(smallSegments.StartOffset).To(Equal(largeSegments.StartOffset))
	})

	It("should accept lowercase hexadecimal characters", func() {
		position, err := wal.ParseSegmentFileName("0000000a0000000000000001", 16*1024*1024)
		Expect(err).ToNot(HaveOccurred())
		Expect(position.TimelineID).To(Equal(wal.TimelineID(10)))
	})

	It("should reject a file name which is too short", func() {
		_, err := wal.ParseSegmentFileName("00000001000000000000000", 16*1024*1024)
		Expect(err).To(MatchError(wal.ErrInvalidSegmentFileName))
	})

	It("should reject a file name which is too long", func() {
		_, err := wal.ParseSegmentFileName("0000000100000000000000020", 16*1024*1024)
		Expect(err).To(MatchError(wal.ErrInvalidSegmentFileName))
	})

	It("should reject a file name with non-hexadecimal characters", func() {
		_, err := wal.ParseSegmentFileName("00000001000000000000000G", 16*1024*1024)
		Expect(err).To(MatchError(wal.ErrInvalidSegmentFileName))
	})

	It("should reject an invalid segment size", func() {
		_, err := wal.ParseSegmentFileName("000000010000000000000002", 0)
		Expect(err).To(MatchError(wal.ErrInvalidSegmentSize))
	})
})
