package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/jdtext"
	"github.com/jonathan/jdstudio/internal/observability"
	"github.com/jonathan/jdstudio/internal/types"
)

// EnvToken holds the recruiter session token for CLI calls to the backend.
const EnvToken = "JDSTUDIO_TOKEN"

var (
	genTitle          string
	genDomain         string
	genQualification  string
	genLocation       string
	genEmploymentType string
	genExperience     string
	genPositions      int
	genSalaryRange    string
	genSkills         []string
	genPDF            string
	genToken          string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a job description through the backend",
	Long:  "Send a job form (or, with --pdf, an existing job description PDF) to the backend and print the resulting description as formatted blocks.",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genTitle, "title", "", "Job title")
	generateCmd.Flags().StringVar(&genDomain, "domain", "", "Domain or department")
	generateCmd.Flags().StringVar(&genQualification, "qualification", "", "Required qualification")
	generateCmd.Flags().StringVar(&genLocation, "location", "", "Job location")
	generateCmd.Flags().StringVar(&genEmploymentType, "employment-type", "", "Employment type, e.g. Full-time")
	generateCmd.Flags().StringVar(&genExperience, "experience", "", "Experience, e.g. \"3 years\"")
	generateCmd.Flags().IntVar(&genPositions, "positions", 1, "Number of open positions")
	generateCmd.Flags().StringVar(&genSalaryRange, "salary", "", "Salary range, e.g. \"5-8 LPA\"")
	generateCmd.Flags().StringSliceVar(&genSkills, "skill", nil, "Required skill (repeatable or comma separated)")
	generateCmd.Flags().StringVar(&genPDF, "pdf", "", "Parse this job description PDF instead of generating one")
	generateCmd.Flags().StringVar(&genToken, "token", "", "Recruiter session token (overrides "+EnvToken+")")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token := genToken
	if token == "" {
		token = os.Getenv(EnvToken)
	}
	if token == "" {
		return fmt.Errorf("session token is required (set %s environment variable or use --token flag)", EnvToken)
	}

	client, err := backend.NewClient(cfg.BackendURL, backend.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	form := genForm()
	var jd *types.JobDescription
	if genPDF != "" {
		jd, err = uploadPDF(cmd.Context(), client, token, genPDF)
		if err == nil {
			form.ApplyUpload(jd)
		}
	} else {
		if err := form.Validate(); err != nil {
			return fmt.Errorf("invalid job form: %w", err)
		}
		jd, err = client.Generate(cmd.Context(), token, form)
	}
	if err != nil {
		return err
	}

	role := strings.TrimSpace(jd.Title)
	if role == "" {
		role = form.Title
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	if cfg.Verbose {
		p.PrintJobDescription(jd)
	}
	p.PrintBlocks(jdtext.Format(jd.FullJD, role))
	return nil
}

// genForm builds a job form from the flags.
func genForm() *types.JobForm {
	form := types.NewJobForm()
	form.Title = genTitle
	form.Domain = genDomain
	form.Qualification = genQualification
	form.Location = genLocation
	form.EmploymentType = genEmploymentType
	form.Experience = genExperience
	form.Positions = genPositions
	form.SalaryRange = genSalaryRange
	for _, skill := range genSkills {
		form.AddSkill(skill)
	}
	return form
}

func uploadPDF(ctx context.Context, client *backend.Client, token, path string) (*types.JobDescription, error) {
	if _, err := backend.Preflight(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return client.UploadPDF(ctx, token, path, f)
}
