package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgclone/controledit/internal/control"
	"github.com/pgclone/controledit/internal/datadir"
	"github.com/pgclone/controledit/internal/wal"
)

var (
	editPgDataOut          string
	editNextOID            uint32
	editNextXID            uint32
	editEpoch              uint32
	editOldestXID          uint32
	editMultiXactIDs       string
	editMultiXactOffset    uint32
	editCommitTimestampIDs string
	editNextWALFile        string
	editWALSegSizeMB       uint32
)

// editCmd represents the edit command.
var editCmd = &cobra.Command{
	Use:          "edit",
	Short:        "Writes a modified copy of the control record to the output data directory.",
	Long:         `Writes a modified copy of the control record to the output data directory.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := overridesFromFlags(cmd)
		if err != nil {
			return err
		}
		// Out-of-range overrides are a usage error and must be reported before any file is touched.
		if err := overrides.Validate(); err != nil {
			return err
		}

		data, err := datadir.ReadControlFile(pgDataIn)
		if err != nil {
			return err
		}
		result, err := control.Decode(data)
		if err != nil {
			return fmt.Errorf("control record in %q: %w", pgDataIn, err)
		}
		if result.Integrity == control.IntegrityUnverified {
			fmt.Fprintln(os.Stderr, "warning: control record exists but has an invalid checksum; proceeding with caution")
		}
		record := result.Record

		if editNextWALFile != "" {
			// The file name resolves to different positions under different segment sizes, so this must happen
			// after the effective segment size is known.
			position, err := wal.ParseSegmentFileName(editNextWALFile, overrides.EffectiveSegmentSize(record))
			if err != nil {
				return err
			}
			overrides.MinWALPosition = &position
		}

		if err := overrides.Apply(&record); err != nil {
			return err
		}

		overwritten, err := datadir.Materialize(editPgDataOut, control.Encode(record))
		if overwritten {
			fmt.Fprintf(os.Stderr, "warning: overwriting existing control file in %q\n", editPgDataOut)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Control record written to %q.\n", datadir.ControlFilePath(editPgDataOut))
		return nil
	},
}

// overridesFromFlags collects the optional field overrides the operator requested into one immutable value. Only
// flags which were given on the command line become part of the result.
func overridesFromFlags(cmd *cobra.Command) (control.Overrides, error) {
	var result control.Overrides
	if cmd.Flags().Changed("next-oid") {
		nextOID := control.OID(editNextOID)
		result.NextOID = &nextOID
	}
	if cmd.Flags().Changed("next-transaction-id") {
		nextXID := control.TransactionID(editNextXID)
		result.NextXID = &nextXID
	}
	if cmd.Flags().Changed("epoch") {
		epoch := editEpoch
		result.Epoch = &epoch
	}
	if cmd.Flags().Changed("oldest-transaction-id") {
		oldestXID := control.TransactionID(editOldestXID)
		result.OldestXID = &oldestXID
	}
	if cmd.Flags().Changed("multixact-ids") {
		next, oldest, err := parsePair(editMultiXactIDs)
		if err != nil {
			return control.Overrides{}, fmt.Errorf("invalid argument for option %s: %w", "--multixact-ids", err)
		}
		result.MultiXactIDs = &control.MultiXactIDPair{
			Next:   control.MultiXactID(next),
			Oldest: control.MultiXactID(oldest),
		}
	}
	if cmd.Flags().Changed("multixact-offset") {
		multiXactOffset := control.MultiXactOffset(editMultiXactOffset)
		result.MultiXactOffset = &multiXactOffset
	}
	if cmd.Flags().Changed("commit-timestamp-ids") {
		oldest, newest, err := parsePair(editCommitTimestampIDs)
		if err != nil {
			return control.Overrides{}, fmt.Errorf("invalid argument for option %s: %w", "--commit-timestamp-ids", err)
		}
		result.CommitTimestamps = &control.CommitTimestampBounds{
			Oldest: control.TransactionID(oldest),
			Newest: control.TransactionID(newest),
		}
	}
	if cmd.Flags().Changed("wal-segsize") {
		if editWALSegSizeMB < 1 || editWALSegSizeMB > 1024 {
			return control.Overrides{}, fmt.Errorf("argument of %s must be a power of two between 1 and 1024", "--wal-segsize")
		}
		segmentSize := editWALSegSizeMB * 1024 * 1024
		result.SegmentSize = &segmentSize
	}
	if editNextWALFile != "" && !wal.IsValidSegmentFileName(editNextWALFile) {
		return control.Overrides{}, fmt.Errorf("invalid argument for option %s: %w", "--next-wal-file", wal.ErrInvalidSegmentFileName)
	}
	return result, nil
}

// parsePair splits a "first,second" flag value into its two numeric parts.
func parsePair(value string) (uint32, uint32, error) {
	firstPart, secondPart, found := strings.Cut(value, ",")
	if !found {
		return 0, 0, fmt.Errorf("expected two values separated by a comma, got %q", value)
	}
	first, err := strconv.ParseUint(firstPart, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing %q: %w", firstPart, err)
	}
	second, err := strconv.ParseUint(secondPart, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing %q: %w", secondPart, err)
	}
	return uint32(first), uint32(second), nil
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVarP(
		&editPgDataOut,
		"pgdata-out",
		"d",
		"",
		"The output data directory to write the modified control record to.",
	)
	if err := editCmd.MarkFlagRequired("pgdata-out"); err != nil {
		panic(err)
	}

	editCmd.Flags().Uint32VarP(
		&editNextOID,
		"next-oid",
		"o",
		0,
		"Set the next OID. Must not be 0.",
	)

	editCmd.Flags().Uint32VarP(
		&editNextXID,
		"next-transaction-id",
		"x",
		0,
		"Set the next transaction ID. The epoch is preserved.",
	)

	editCmd.Flags().Uint32VarP(
		&editEpoch,
		"epoch",
		"e",
		0,
		"Set the next transaction ID epoch. The transaction ID is preserved.",
	)

	editCmd.Flags().Uint32VarP(
		&editOldestXID,
		"oldest-transaction-id",
		"u",
		0,
		"Set the oldest transaction ID.",
	)

	editCmd.Flags().StringVarP(
		&editMultiXactIDs,
		"multixact-ids",
		"m",
		"",
		"Set the next and oldest multitransaction ID as MXID,MXID.",
	)

	editCmd.Flags().Uint32VarP(
		&editMultiXactOffset,
		"multixact-offset",
		"O",
		0,
		"Set the next multitransaction offset.",
	)

	editCmd.Flags().StringVarP(
		&editCommitTimestampIDs,
		"commit-timestamp-ids",
		"c",
		"",
		"Set the oldest and newest transaction bearing a commit timestamp as XID,XID. Zero means no change.",
	)

	editCmd.Flags().StringVarP(
		&editNextWALFile,
		"next-wal-file",
		"l",
		"",
		"Set the minimum starting location for new WAL from a WAL segment file name.",
	)

	editCmd.Flags().Uint32Var(
		&editWALSegSizeMB,
		"wal-segsize",
		0,
		"Set the size of WAL segments, in megabytes. Must be a power of two between 1 and 1024.",
	)
}
