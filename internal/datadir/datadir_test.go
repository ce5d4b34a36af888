package datadir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pgclone/controledit/internal/control"
	"github.com/pgclone/controledit/internal/datadir"
	"github.com/pgclone/controledit/internal/wal"
)

var _ = Describe("Materialize", func() {
	It("should create the directory layout and write the payload", func() {
		dataDir := filepath.Join(GinkgoT().TempDir(), "pgdata-out")
		payload := []byte("control record payload")

		overwritten, err := datadir.Materialize(dataDir, payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(overwritten).To(BeFalse())

		Expect(os.ReadFile(datadir.ControlFilePath(dataDir))).To(Equal(payload))
	})

	It("should tolerate a pre-existing directory layout", func() {
		dataDir := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(dataDir, "global"), 0o755)).To(Succeed())

		overwritten, err := datadir.Materialize(dataDir, []byte("payload"))
		Expect(err).ToNot(HaveOccurred())
		Expect(overwritten).To(BeFalse())
	})

	It("should report overwriting a pre-existing control file", func() {
		dataDir := GinkgoT().TempDir()
		_, err := datadir.Materialize(dataDir, []byte("first payload"))
		Expect(err).ToNot(HaveOccurred())

		overwritten, err := datadir.Materialize(dataDir, []byte("second"))
		Expect(err).ToNot(HaveOccurred())
		Expect(overwritten).To(BeTrue())

		Expect(os.ReadFile(datadir.ControlFilePath(dataDir))).To(Equal([]byte("second")))
	})

	It("should fail when the data directory path is taken by a file", func() {
		dataDir := filepath.Join(GinkgoT().TempDir(), "pgdata-out")
		Expect(os.WriteFile(dataDir, []byte("in the way"), 0o644)).To(Succeed())

		_, err := datadir.Materialize(dataDir, []byte("payload"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ReadControlFile", func() {
	It("should read back what was materialized", func() {
		dataDir := GinkgoT().TempDir()
		payload := []byte("control record payload")
		_, err := datadir.Materialize(dataDir, payload)
		Expect(err).ToNot(HaveOccurred())

		Expect(datadir.ReadControlFile(dataDir)).To(Equal(payload))
	})

	It("should fail with the file path when the control file is missing", func() {
		dataDir := GinkgoT().TempDir()
		_, err := datadir.ReadControlFile(dataDir)
		Expect(err).To(MatchError(ContainSubstring(datadir.ControlFilePath(dataDir))))
	})
})

var _ = Describe("Full edit cycle", func() {
	It("should decode, override, encode and materialize a control record", func() {
		inputDir := GinkgoT().TempDir()
		outputDir := filepath.Join(GinkgoT().TempDir(), "pgdata-out")

		inputRecord := control.ControlRecord{
			Version:     control.ControlVersion,
			SegmentSize: 16 * 1024 * 1024,
			NextXID:     control.FullTransactionIDFromEpochAndXID(0, 1000),
			NextOID:     control.OID(100),
		}
		_, err := datadir.Materialize(inputDir, control.Encode(inputRecord))
		Expect(err).ToNot(HaveOccurred())

		data, err := datadir.ReadControlFile(inputDir)
		Expect(err).ToNot(HaveOccurred())
		result, err := control.Decode(data)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Integrity).To(Equal(control.IntegrityVerified))

		record := result.Record
		epoch := uint32(2)
		nextXID := control.TransactionID(5000)
		overrides := control.Overrides{Epoch: &epoch, NextXID: &nextXID}
		Expect(overrides.Apply(&record)).To(Succeed())

		_, err = datadir.Materialize(outputDir, control.Encode(record))
		Expect(err).ToNot(HaveOccurred())

		outputData, err := datadir.ReadControlFile(outputDir)
		Expect(err).ToNot(HaveOccurred())
		outputResult, err := control.Decode(outputData)
		Expect(err).ToNot(HaveOccurred())

		Expect(outputResult.Integrity).To(Equal(control.IntegrityVerified))
		Expect(outputResult.Record.NextOID).To(Equal(control.OID(100)))
		Expect(outputResult.Record.NextXID.Epoch()).To(Equal(uint32(2)))
		Expect(outputResult.Record.NextXID.XID()).To(Equal(control.TransactionID(5000)))
		Expect(outputResult.Record.SegmentSize).To(Equal(uint32(16 * 1024 * 1024)))

		// The input record is untouched.
		Expect(datadir.ReadControlFile(inputDir)).To(Equal(data))
	})

	It("should raise the timeline from a resolved WAL file name", func() {
		inputDir := GinkgoT().TempDir()
		outputDir := GinkgoT().TempDir()

		inputRecord := control.ControlRecord{
			Version:        control.ControlVersion,
			SegmentSize:    16 * 1024 * 1024,
			ThisTimelineID: wal.TimelineID(1),
			PrevTimelineID: wal.TimelineID(1),
		}
		_, err := datadir.Materialize(inputDir, control.Encode(inputRecord))
		Expect(err).ToNot(HaveOccurred())

		data, err := datadir.ReadControlFile(inputDir)
		Expect(err).ToNot(HaveOccurred())
		result, err := control.Decode(data)
		Expect(err).ToNot(HaveOccurred())

		record := result.Record
		var overrides control.Overrides
		position, err := wal.ParseSegmentFileName("000000050000000000000010", overrides.EffectiveSegmentSize(record))
		Expect(err).ToNot(HaveOccurred())
		overrides.MinWALPosition = &position
		Expect(overrides.Apply(&record)).To(Succeed())

		_, err = datadir.Materialize(outputDir, control.Encode(record))
		Expect(err).ToNot(HaveOccurred())

		outputData, err := datadir.ReadControlFile(outputDir)
		Expect(err).ToNot(HaveOccurred())
		outputResult, err := control.Decode(outputData)
		Expect(err).ToNot(HaveOccurred())
		Expect(outputResult.Record.ThisTimelineID).To(Equal(wal.TimelineID(5)))
		Expect(outputResult.Record.PrevTimelineID).To(Equal(wal.TimelineID(5)))
	})
})
