package cli

import (
	"fmt"

	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter [resume-file]",
	Short: "Write a cover letter for a job",
	Long: `Write a personalized cover letter from a resume. --job-title is required;
--company, --name, --tone and a job description file (--job) personalize
the letter further.`,
	Args: cobra.ExactArgs(1),
	RunE: runCoverLetter,
}

var coverLetterOpts commandOptions

var coverLetterInput struct {
	jobTitle string
	company  string
	name     string
	tone     string
	jobFile  string
}

func init() {
	outputFlags(coverLetterCmd, &coverLetterOpts)
	flags := coverLetterCmd.Flags()
	flags.StringVar(&coverLetterInput.jobTitle, "job-title", "", "Job title to apply for")
	flags.StringVar(&coverLetterInput.company, "company", "", "Company name")
	flags.StringVar(&coverLetterInput.name, "name", "", "Applicant name used in the signature")
	flags.StringVar(&coverLetterInput.tone, "tone", "professional", "Letter tone")
	flags.StringVar(&coverLetterInput.jobFile, "job", "", "Job description file")
	_ = coverLetterCmd.MarkFlagRequired("job-title")
}

func runCoverLetter(cmd *cobra.Command, args []string) error {
	files := args
	if coverLetterInput.jobFile != "" {
		files = append(files, coverLetterInput.jobFile)
	}

	createInput := func(contents []string) (types.CoverLetterInput, error) {
		if len(contents) == 0 {
			return types.CoverLetterInput{}, fmt.Errorf("expected a resume file")
		}
		in := types.CoverLetterInput{
			ResumeText:  contents[0],
			JobTitle:    coverLetterInput.jobTitle,
			UserName:    coverLetterInput.name,
			CompanyName: coverLetterInput.company,
			Tone:        coverLetterInput.tone,
		}
		if len(contents) > 1 {
			in.JobDescription = contents[1]
		}
		return in, nil
	}

	_, err := runTask(cmd, files, &coverLetterOpts, createInput, (*tasks.Analyzer).CoverLetter,
		logInput(cmd, func(in types.CoverLetterInput) []any {
			return []any{"job_title", in.JobTitle, "company", in.CompanyName, "tone", in.Tone}
		}))
	if err != nil {
		return fmt.Errorf("failed to write cover letter: %w", err)
	}
	return nil
}
