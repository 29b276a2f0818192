package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/client"
	"github.com/aanand-mishra/student-records/internal/types"
)

// ServerEnv overrides the default server URL when --server is not given.
const ServerEnv = "STUDENTS_API_URL"

const requestTimeout = 15 * time.Second

// NewRootCommand builds studentsctl with every subcommand attached.
func NewRootCommand() *cobra.Command {
	var server string

	root := &cobra.Command{
		Use:           "studentsctl",
		Short:         "Command-line client for the student records API",
		Long:          "Manage student records on a running students-api server: list, inspect, add, update and delete students, and print statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&server, "server", "", "API base URL (default $"+ServerEnv+" or "+client.DefaultBaseURL+")")

	newClient := func() *client.Client {
		return client.New(resolveServer(server))
	}

	root.AddCommand(
		newListCommand(newClient),
		newGetCommand(newClient),
		newAddCommand(newClient),
		newUpdateCommand(newClient),
		newDeleteCommand(newClient),
		newStatsCommand(newClient),
	)
	return root
}

func resolveServer(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(ServerEnv); env != "" {
		return env
	}
	return client.DefaultBaseURL
}

type clientFactory func() *client.Client

// ─────────────────────────────────────────────────────────────────────────────
// list
// ─────────────────────────────────────────────────────────────────────────────

func newListCommand(newClient clientFactory) *cobra.Command {
	var f types.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			students, err := newClient().ListStudents(ctx, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(students) == 0 {
				fmt.Fprintln(out, "No students found.")
				return nil
			}
			printStudents(out, students)
			fmt.Fprintf(out, "\n%d student(s)\n", len(students))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Search, "search", "", "Substring of name or roll number")
	cmd.Flags().StringVar(&f.Course, "course", "", "Substring of course")
	cmd.Flags().StringVar(&f.Grade, "grade", "", "Exact grade")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// get
// ─────────────────────────────────────────────────────────────────────────────

func newGetCommand(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			st, err := newClient().GetStudent(ctx, id)
			if err != nil {
				return err
			}
			printStudent(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// add
// ─────────────────────────────────────────────────────────────────────────────

func newAddCommand(newClient clientFactory) *cobra.Command {
	var (
		in  types.NewStudent
		age int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Age = types.FlexInt(age)

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			st, err := newClient().CreateStudent(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Student added successfully (id %d)\n", st.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in.Name, "name", "", "Full name (required)")
	flags.StringVar(&in.RollNumber, "roll", "", "Roll number (required)")
	flags.IntVar(&age, "age", 0, "Age (required)")
	flags.StringVar(&in.Grade, "grade", "", "Grade (required)")
	flags.StringVar(&in.Email, "email", "", "Email (required)")
	flags.StringVar(&in.Phone, "phone", "", "Phone (defaults to N/A)")
	flags.StringVar(&in.Course, "course", "", "Course (required)")
	for _, name := range []string{"name", "roll", "age", "grade", "email", "course"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// update
// ─────────────────────────────────────────────────────────────────────────────

func newUpdateCommand(newClient clientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a student; only the flags given are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}
			if patch == (types.StudentPatch{}) {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			st, err := newClient().UpdateStudent(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Student updated successfully")
			printStudent(cmd.OutOrStdout(), st)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("name", "", "Full name")
	flags.String("roll", "", "Roll number")
	flags.Int("age", 0, "Age")
	flags.String("grade", "", "Grade")
	flags.String("email", "", "Email")
	flags.String("phone", "", "Phone")
	flags.String("course", "", "Course")
	return cmd
}

// patchFromFlags turns every flag the user actually set into a patch field.
func patchFromFlags(cmd *cobra.Command) (types.StudentPatch, error) {
	var p types.StudentPatch
	flags := cmd.Flags()

	str := func(name string, dst **string) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}

	for name, dst := range map[string]**string{
		"name":   &p.Name,
		"roll":   &p.RollNumber,
		"grade":  &p.Grade,
		"email":  &p.Email,
		"phone":  &p.Phone,
		"course": &p.Course,
	} {
		if err := str(name, dst); err != nil {
			return p, err
		}
	}

	if flags.Changed("age") {
		v, err := flags.GetInt("age")
		if err != nil {
			return p, err
		}
		age := types.FlexInt(v)
		p.Age = &age
	}
	return p, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// delete
// ─────────────────────────────────────────────────────────────────────────────

func newDeleteCommand(newClient clientFactory) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete student %d? [y/N] ", id)) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			st, err := newClient().DeleteStudent(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Student deleted successfully (%s, %s)\n", st.Name, st.RollNumber)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// stats
// ─────────────────────────────────────────────────────────────────────────────

func newStatsCommand(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print totals and the grade distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			stats, err := newClient().Statistics(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Total students\t%d\n", stats.TotalStudents)
			fmt.Fprintf(tw, "Total courses\t%d\n", stats.TotalCourses)
			for _, grade := range slices.Sorted(maps.Keys(stats.GradeDistribution)) {
				fmt.Fprintf(tw, "Grade %s\t%d\n", grade, stats.GradeDistribution[grade])
			}
			return tw.Flush()
		},
	}
}

// ── output helpers ───────────────────────────────────────────────────────────

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid student id %q", arg)
	}
	return id, nil
}

func printStudents(w io.Writer, students []types.Student) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLL\tAGE\tGRADE\tEMAIL\tPHONE\tCOURSE")
	for _, s := range students {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, s.RollNumber, s.Age, s.Grade, s.Email, s.Phone, s.Course)
	}
	tw.Flush()
}

func printStudent(w io.Writer, s types.Student) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", s.ID)
	fmt.Fprintf(tw, "Name\t%s\n", s.Name)
	fmt.Fprintf(tw, "Roll number\t%s\n", s.RollNumber)
	fmt.Fprintf(tw, "Age\t%d\n", s.Age)
	fmt.Fprintf(tw, "Grade\t%s\n", s.Grade)
	fmt.Fprintf(tw, "Email\t%s\n", s.Email)
	fmt.Fprintf(tw, "Phone\t%s\n", s.Phone)
	fmt.Fprintf(tw, "Course\t%s\n", s.Course)
	fmt.Fprintf(tw, "Created\t%s\n", s.CreatedAt.Format(time.RFC3339))
	tw.Flush()
}
