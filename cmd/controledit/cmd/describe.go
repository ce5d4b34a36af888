package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgclone/controledit/internal/control"
	"github.com/pgclone/controledit/internal/datadir"
)

// describeCmd represents the describe command.
var describeCmd = &cobra.Command{
	Use:          "describe",
	Short:        "Prints the fields of the control record of a data directory.",
	Long:         `Prints the fields of the control record of a data directory.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := datadir.ReadControlFile(pgDataIn)
		if err != nil {
			return err
		}
		result, err := control.Decode(data)
		if err != nil {
			return fmt.Errorf("control record in %q: %w", pgDataIn, err)
		}

		record := result.Record
		fmt.Printf("System identifier:            %d\n", record.SystemIdentifier)
		fmt.Printf("Control record version:       %d\n", record.Version)
		fmt.Printf("Checksum:                     %s\n", result.Integrity)
		fmt.Printf("WAL segment size:             %d\n", record.SegmentSize)
		fmt.Printf("Timeline:                     %d\n", record.ThisTimelineID)
		fmt.Printf("Previous timeline:            %d\n", record.PrevTimelineID)
		fmt.Printf("Next transaction ID epoch:    %d\n", record.NextXID.Epoch())
		fmt.Printf("Next transaction ID:          %d\n", record.NextXID.XID())
		fmt.Printf("Next OID:                     %d\n", record.NextOID)
		fmt.Printf("Next multixact ID:            %d\n", record.NextMultiXactID)
		fmt.Printf("Next multixact offset:        %d\n", record.NextMultiXactOffset)
		fmt.Printf("Oldest transaction ID:        %d\n", record.OldestXID)
		fmt.Printf("Oldest transaction ID DB:     %d\n", record.OldestXIDDB)
		fmt.Printf("Oldest multixact ID:          %d\n", record.OldestMultiXactID)
		fmt.Printf("Oldest multixact ID DB:       %d\n", record.OldestMultiXactDB)
		fmt.Printf("Oldest commit timestamp XID:  %d\n", record.OldestCommitTsXID)
		fmt.Printf("Newest commit timestamp XID:  %d\n", record.NewestCommitTsXID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
