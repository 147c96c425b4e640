package commands

import (
	"github.com/spf13/cobra"
)

var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Look up patient records",
}

var patientGetCmd = &cobra.Command{
	Use:   "get <patient-id>",
	Short: "Fetch a patient record with medications and allergies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		res, err := client.GetPatient(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return outputResult(res, outputFile, outputJSON)
	},
}

func init() {
	patientCmd.AddCommand(patientGetCmd)
}
