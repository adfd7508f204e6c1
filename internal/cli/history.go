package cli

import (
	"fmt"

	"resumalyzer/internal/common"
	"resumalyzer/internal/store"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or show saved analyses",
	Long: `Read the local analysis store. --email lists the analyses saved for an
address, newest first; --id prints one saved analysis in full.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyOpts commandOptions

var historyQuery struct {
	email string
	id    string
	limit int
}

func init() {
	outputFlags(historyCmd, &historyOpts)
	historyCmd.Flags().StringVar(&historyQuery.email, "email", "", "List analyses saved for this email")
	historyCmd.Flags().StringVar(&historyQuery.id, "id", "", "Show one analysis")
	historyCmd.Flags().IntVar(&historyQuery.limit, "limit", 20, "Maximum analyses to list")
	historyCmd.MarkFlagsOneRequired("email", "id")
	historyCmd.MarkFlagsMutuallyExclusive("email", "id")
}

func runHistory(cmd *cobra.Command, args []string) error {
	app, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}

	st, err := store.OpenSQLite(app.Config.App.StorePath, app.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var data any
	if historyQuery.id != "" {
		rec, err := st.Get(cmd.Context(), historyQuery.id)
		if err != nil {
			return err
		}
		data = rec
	} else {
		recs, err := st.ListByEmail(cmd.Context(), historyQuery.email, historyQuery.limit)
		if err != nil {
			return fmt.Errorf("failed to list analyses: %w", err)
		}
		for i := range recs {
			recs[i].ResumeText = ""
		}
		data = recs
	}

	out := common.NewOutputHandler(nil, stdout(cmd), app.Logger)
	return out.HandleOutput(data, historyOpts.Output)
}
