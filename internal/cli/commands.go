package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/agent"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/extract"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

func (c *cli) runCommand() *cobra.Command {
	var (
		docPath string
		jobText string
		jobFile string
		base    string
		dryRun  bool
		lang    string
	)
	cmd := &cobra.Command{
		Use:   "run COMMAND...",
		Short: "Interpret a command and apply it to the current resume",
		Example: `  resumectl run "add Kafka and Terraform to my technical skills"
  resumectl run --dry-run "rewrite my summary then apply tips 1 and 3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd, docPath)
			if err != nil {
				return err
			}
			job, err := loadJob(cmd, jobText, jobFile)
			if err != nil {
				return err
			}
			result, runErr := c.app.Agent.Run(cmd.Context(), agent.RunRequest{
				UserID:        c.user(),
				Command:       strings.Join(args, " "),
				Document:      doc,
				JobText:       job,
				BaseVersionID: base,
				Options:       agent.Options{DryRun: dryRun, LanguageHint: lang},
			})
			if result != nil {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	f := cmd.Flags()
	f.StringVar(&docPath, "document", "", "resume JSON file to edit instead of the stored head (- for stdin)")
	f.StringVar(&jobText, "job", "", "job description text")
	f.StringVar(&jobFile, "job-file", "", "file holding the job description (pdf, docx or text)")
	f.StringVar(&base, "base", "", "fail unless the current version has this id")
	f.BoolVar(&dryRun, "dry-run", false, "compute the result without saving a version")
	f.StringVar(&lang, "lang", "", "language hint such as en or he")
	return cmd
}

func (c *cli) scoreCommand() *cobra.Command {
	var (
		docPath    string
		resumeFile string
		jobText    string
		jobFile    string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a resume against a job without changing history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := agent.ScoreRequest{}
			doc, err := loadDocument(cmd, docPath)
			if err != nil {
				return err
			}
			req.Document = doc
			if resumeFile != "" {
				if req.ResumeText, err = extract.FromFile(cmd.Context(), resumeFile); err != nil {
					return err
				}
			}
			if req.Document == nil && req.ResumeText == "" {
				head, err := c.app.History.Head(cmd.Context(), c.user())
				if err != nil {
					return err
				}
				if head.Version == nil {
					return fmt.Errorf("nothing to score: pass --document or --resume-file, or import a resume first")
				}
				current := head.Document()
				req.Document = &current
			}
			if req.JobText, err = loadJob(cmd, jobText, jobFile); err != nil {
				return err
			}
			report, err := c.app.Agent.Score(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	f := cmd.Flags()
	f.StringVar(&docPath, "document", "", "resume JSON file (- for stdin)")
	f.StringVar(&resumeFile, "resume-file", "", "resume as pdf, docx or text")
	f.StringVar(&jobText, "job", "", "job description text")
	f.StringVar(&jobFile, "job-file", "", "file holding the job description")
	return cmd
}

func (c *cli) importCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Save a resume as a new version",
		Long: `Save a resume JSON document as a new version. With --raw the file may be
a pdf, docx or text resume; it is structured by the configured LLM first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				text, err := extract.FromFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, err := c.app.Agent.ImportText(cmd.Context(), c.user(), text)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}
			doc, err := loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := c.app.Agent.Import(cmd.Context(), c.user(), *doc)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "structure a pdf, docx or text resume with the LLM")
	return cmd
}

func (c *cli) undoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Move back one version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			head, err := c.app.Agent.Undo(cmd.Context(), c.user())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), head)
		},
	}
}

func (c *cli) redoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Move forward one version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			head, err := c.app.Agent.Redo(cmd.Context(), c.user())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), head)
		},
	}
}

func (c *cli) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the undo stack and every committed change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := c.app.Agent.ListHistory(cmd.Context(), c.user())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

func (c *cli) designCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "design",
		Short: "Show the template and colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := c.app.Agent.DesignState(cmd.Context(), c.user())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), state)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "undo",
			Short: "Restore the previous color customization",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				state, err := c.app.Agent.UndoDesign(cmd.Context(), c.user())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), state)
			},
		},
		&cobra.Command{
			Use:   "revert",
			Short: "Drop every color customization",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				state, err := c.app.Agent.RevertDesign(cmd.Context(), c.user())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), state)
			},
		},
	)
	return cmd
}

func (c *cli) extractCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "extract FILE",
		Short:       "Print the plain text of a pdf, docx or text resume",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extract.FromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func loadDocument(cmd *cobra.Command, path string) (*model.Document, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readFileOrStdin(cmd, path)
	if err != nil {
		return nil, err
	}
	doc, err := model.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

func loadJob(cmd *cobra.Command, text, file string) (string, error) {
	if file == "" {
		return text, nil
	}
	extracted, err := extract.FromFile(cmd.Context(), file)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text + "\n" + extracted), nil
}
