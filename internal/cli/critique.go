package cli

import (
	"fmt"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/store"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var critiqueCmd = &cobra.Command{
	Use:   "critique [resume-file]",
	Short: "Score a resume and list its strengths, weaknesses and fixes",
	Long: `Critique a resume for a target domain. The result includes:
- Overall, ATS, grammar, readability and experience scores (0-100)
- Strengths, weaknesses and improvements
- Detected skills, keywords and sections
- Rewritten weak bullets, top projects and likely interview questions

Resume files may be PDF, DOCX, plain text or markdown. Use --save to keep
the result in the local analysis store.`,
	Args: cobra.ExactArgs(1),
	RunE: runCritique,
}

var critiqueOpts commandOptions

var critiqueSave struct {
	enabled bool
	email   string
}

func init() {
	outputFlags(critiqueCmd, &critiqueOpts)
	critiqueCmd.Flags().StringVarP(&critiqueOpts.Domain, "domain", "d", prompts.DefaultDomain, "Target domain (e.g. software-engineer, data-scientist)")
	critiqueCmd.Flags().BoolVar(&critiqueSave.enabled, "save", false, "Save the result in the analysis store")
	critiqueCmd.Flags().StringVar(&critiqueSave.email, "email", "", "Email to file the saved analysis under")
}

func runCritique(cmd *cobra.Command, args []string) error {
	app, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}

	var input types.CritiqueInput
	result, err := runTask(cmd, args, &critiqueOpts,
		single(func(text string) types.CritiqueInput {
			input = types.CritiqueInput{ResumeText: text, TargetDomain: critiqueOpts.Domain}
			return input
		}),
		(*tasks.Analyzer).Critique,
		logInput(cmd, func(in types.CritiqueInput) []any {
			return []any{"resume_chars", len(in.ResumeText), "target_domain", in.TargetDomain}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to critique resume: %w", err)
	}

	if !critiqueSave.enabled {
		return nil
	}

	st, err := store.OpenSQLite(app.Config.App.StorePath, app.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rec := &types.AnalysisRecord{
		UserEmail:    critiqueSave.email,
		TargetDomain: input.TargetDomain,
		ResumeText:   input.ResumeText,
		Results:      result,
	}
	if err := st.Save(cmd.Context(), rec); err != nil {
		return err
	}
	app.Logger.Info("Analysis saved", "id", rec.ID, "store", app.Config.App.StorePath)
	return nil
}
