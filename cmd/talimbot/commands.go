package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/information-sharing-networks/talimbot/internal/client"
	"github.com/information-sharing-networks/talimbot/internal/normalize"
	"github.com/spf13/cobra"
)

// printJSON writes v to the command output as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return nil
}

// userError prefixes backend failures with the localized message shown to students and teachers
func (a *app) userError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if msg := apiErr.UserMessage(a.client.Printer()); msg != apiErr.Message {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}

func (a *app) requirePassword() (string, error) {
	if a.password == "" {
		return "", errors.New("a teacher password is required: use --password or set TALIMBOT_PASSWORD")
	}
	return a.password, nil
}

func addPasswordFlag(cmd *cobra.Command, a *app) {
	cmd.Flags().StringVar(&a.password, "password", "", "teacher password (default $TALIMBOT_PASSWORD)")
}

func newStudentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Roster commands",
	}

	var completeOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List all students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				students []client.Student
				err      error
			)
			if completeOnly {
				students, err = a.client.ListCompleteStudents(cmd.Context())
			} else {
				students, err = a.client.ListStudents(cmd.Context())
			}
			if err != nil {
				return a.userError(err)
			}
			return printJSON(cmd, students)
		},
	}
	list.Flags().BoolVar(&completeOnly, "complete", false, "only students with mbti and learning style set")

	cmd.AddCommand(list)
	return cmd
}

func newStudentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Single student commands",
	}

	get := &cobra.Command{
		Use:   "get <student-number>",
		Short: "Show a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := normalize.StudentNumber(args[0])
			student, err := a.client.GetStudent(cmd.Context(), number)
			if err != nil {
				return a.userError(err)
			}
			if student == nil {
				return fmt.Errorf("student %s not found", number)
			}
			return printJSON(cmd, student)
		},
	}

	exists := &cobra.Command{
		Use:   "exists <student-number>",
		Short: "Report whether a student number is known",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, map[string]bool{
				"exists": a.client.StudentExists(cmd.Context(), normalize.StudentNumber(args[0])),
			})
		},
	}

	profile := &cobra.Command{
		Use:   "profile <student-number>",
		Short: "Show how complete a student's profile is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := normalize.StudentNumber(args[0])
			return printJSON(cmd, map[string]any{
				"studentNumber":     number,
				"fullProfile":       a.client.HasFullProfile(cmd.Context(), number),
				"completionPercent": a.client.ProfileCompletionPercent(cmd.Context(), number),
			})
		},
	}

	cmd.AddCommand(get, exists, profile, newStudentUpdateCmd(a), newStudentGroupCmd(a), newStudentLoginCmd(a))
	return cmd
}

func newStudentUpdateCmd(a *app) *cobra.Command {
	var (
		mbti, learningStyle string
		ams, cooperative    float64
		preferred           []string
	)

	cmd := &cobra.Command{
		Use:   "update <student-number>",
		Short: "Update a student's profile, only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var updates client.StudentUpdate
			flags := cmd.Flags()
			if flags.Changed("mbti") {
				updates.MBTI = &mbti
			}
			if flags.Changed("learning-style") {
				updates.LearningStyle = &learningStyle
			}
			if flags.Changed("ams") {
				s := client.Score(ams)
				updates.AMS = &s
			}
			if flags.Changed("cooperative") {
				s := client.Score(cooperative)
				updates.Cooperative = &s
			}
			if flags.Changed("preferred") {
				for i, p := range preferred {
					preferred[i] = normalize.StudentNumber(p)
				}
				updates.PreferredStudents = &preferred
			}
			if updates == (client.StudentUpdate{}) {
				return errors.New("nothing to update: set at least one of --mbti, --learning-style, --ams, --cooperative, --preferred")
			}

			number := normalize.StudentNumber(args[0])
			if !a.client.UpdateStudent(cmd.Context(), number, updates) {
				return fmt.Errorf("update of student %s failed", number)
			}
			return printJSON(cmd, map[string]bool{"success": true})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&mbti, "mbti", "", "MBTI type, e.g. INTJ")
	flags.StringVar(&learningStyle, "learning-style", "", "learning style")
	flags.Float64Var(&ams, "ams", 0, "academic motivation score")
	flags.Float64Var(&cooperative, "cooperative", 0, "cooperative learning score")
	flags.StringSliceVar(&preferred, "preferred", nil, "preferred team mates (student numbers)")
	return cmd
}

func newStudentGroupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "group <student-number>",
		Short: "Show the group a student was assigned to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := a.client.GetStudentGroup(cmd.Context(), normalize.StudentNumber(args[0]))
			if err != nil {
				return a.userError(err)
			}
			return printJSON(cmd, group)
		},
	}
}

func newStudentLoginCmd(a *app) *cobra.Command {
	var nationalCode string

	cmd := &cobra.Command{
		Use:   "login [student-number] --national-code <code>",
		Short: "Check a student's credentials",
		Long: `Check a student's credentials.

Without a student number the national code alone is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				student *client.Student
				err     error
			)
			if len(args) == 1 {
				student, err = a.client.AuthenticateStudent(cmd.Context(), normalize.StudentNumber(args[0]), nationalCode)
			} else {
				student, err = a.client.AuthenticateStudentByNationalCode(cmd.Context(), nationalCode)
			}
			if err != nil {
				return a.userError(err)
			}
			if student == nil {
				return errors.New("invalid credentials")
			}
			return printJSON(cmd, student)
		},
	}
	cmd.Flags().StringVar(&nationalCode, "national-code", "", "national code")
	_ = cmd.MarkFlagRequired("national-code")
	return cmd
}

func newGroupingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grouping",
		Short: "Grouping commands",
	}

	var (
		watch        bool
		interval     time.Duration
		untilVisible bool
	)
	status := &cobra.Command{
		Use:   "status",
		Short: "Show the grouping state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !watch {
				stats, err := a.client.GetGroupingStats(cmd.Context())
				if err != nil {
					return a.userError(err)
				}
				return printJSON(cmd, stats)
			}

			var writeErr error
			err := a.client.WatchGroupingStats(cmd.Context(), interval, func(stats *client.GroupingStats) bool {
				if writeErr = printJSON(cmd, stats); writeErr != nil {
					return false
				}
				return !untilVisible || !stats.ResultsVisible
			})
			if writeErr != nil {
				return writeErr
			}
			if err != nil && cmd.Context().Err() == nil {
				return a.userError(err)
			}
			return nil
		},
	}
	status.Flags().BoolVar(&watch, "watch", false, "keep polling the status")
	status.Flags().DurationVar(&interval, "interval", 5*time.Second, "polling interval for --watch")
	status.Flags().BoolVar(&untilVisible, "until-visible", false, "stop watching once results are visible")

	perform := &cobra.Command{
		Use:   "perform <course-name>",
		Short: "Run the grouping for all complete students",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.client.PerformGrouping(cmd.Context(), args[0])
			if err != nil {
				return a.userError(err)
			}
			return printJSON(cmd, results)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle-visibility",
		Short: "Show or hide the results to students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.requirePassword()
			if err != nil {
				return err
			}
			res, err := a.client.ToggleResultsVisibility(cmd.Context(), password)
			if err != nil {
				return a.userError(err)
			}
			return printJSON(cmd, res)
		},
	}
	addPasswordFlag(toggle, a)

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Clear the grouping, student profiles are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.requirePassword()
			if err != nil {
				return err
			}
			res, err := a.client.ResetGrouping(cmd.Context(), password)
			if err != nil {
				return a.userError(err)
			}
			return printJSON(cmd, res)
		},
	}
	addPasswordFlag(reset, a)

	cmd.AddCommand(status, perform, toggle, reset)
	return cmd
}

func newDataCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Backend data commands",
	}

	var confirmed bool
	resetAll := &cobra.Command{
		Use:   "reset-all",
		Short: "Clear every student profile and the grouping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("reset-all deletes every student profile: pass --yes to confirm")
			}
			password, err := a.requirePassword()
			if err != nil {
				return err
			}
			res, err := a.client.ResetAllData(cmd.Context(), password)
			if err != nil {
				return a.userError(err)
			}
			return printJSON(cmd, res)
		},
	}
	resetAll.Flags().BoolVar(&confirmed, "yes", false, "confirm the reset")
	addPasswordFlag(resetAll, a)

	var output string
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Download the complete data document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.client.Backup(cmd.Context())
			if err != nil {
				return a.userError(err)
			}
			if output == "" {
				return printJSON(cmd, doc)
			}
			if err := os.WriteFile(output, doc, 0o600); err != nil {
				return fmt.Errorf("could not write backup: %w", err)
			}
			a.logger.Info("backup written", slog.String("file", output), slog.Int("bytes", len(doc)))
			return nil
		},
	}
	backup.Flags().StringVarP(&output, "output", "o", "", "write the backup to this file instead of stdout")

	cmd.AddCommand(resetAll, backup)
	return cmd
}

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Credential checks",
	}

	teacher := &cobra.Command{
		Use:   "teacher",
		Short: "Check the teacher password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.requirePassword()
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]bool{
				"valid": a.client.CheckTeacherPassword(cmd.Context(), password),
			})
		},
	}
	addPasswordFlag(teacher, a)

	cmd.AddCommand(teacher)
	return cmd
}
