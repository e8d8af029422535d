package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/dashboard"
)

var enrollmentsCmd = &cobra.Command{
	Use:     "enrollments",
	Aliases: []string{"enrollment", "enroll"},
	Short:   "Review class enrollments",
}

func init() {
	rootCmd.AddCommand(enrollmentsCmd)
	enrollmentsCmd.AddCommand(enrollmentsListCmd(), enrollmentsShowCmd(), enrollmentsCreateCmd(),
		enrollmentTransitionCmd("approve", models.EnrollmentApproved),
		enrollmentTransitionCmd("reject", models.EnrollmentRejected),
		enrollmentTransitionCmd("cancel", models.EnrollmentCancelled),
		enrollmentTransitionCmd("complete", models.EnrollmentCompleted),
		enrollmentsDeleteCmd(), enrollmentsExportCmd())
}

type enrollmentFilterFlags struct {
	classID, userID int64
	status          string
}

func (e *enrollmentFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&e.classID, "class", 0, "class id")
	cmd.Flags().Int64Var(&e.userID, "user", 0, "member id")
	cmd.Flags().StringVar(&e.status, "status", "", "pending, approved, rejected, cancelled or completed")
}

func (e *enrollmentFilterFlags) filter() models.EnrollmentFilter {
	return models.EnrollmentFilter{ClassID: e.classID, UserID: e.userID, Status: models.EnrollmentStatus(e.status)}
}

func enrollmentsListCmd() *cobra.Command {
	var (
		lf listFlags
		ef enrollmentFilterFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List enrollments",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			return app.Enrollments.List(ctx, dashboard.Listing[models.EnrollmentFilter]{Filter: ef.filter(), Params: lf.params()})
		}),
	}
	lf.register(cmd)
	ef.register(cmd)
	return cmd
}

func enrollmentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one enrollment",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Enrollments.Show(ctx, id)
		}),
	}
}

func enrollmentsCreateCmd() *cobra.Command {
	var form dashboard.EnrollmentForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Enroll a member in a class",
		Long:  "Enroll a member in a class. Without --user the signed-in account is enrolled.",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			return app.Enrollments.Create(ctx, form)
		}),
	}
	cmd.Flags().Int64Var(&form.ClassID, "class", 0, "class id")
	cmd.Flags().Int64Var(&form.UserID, "user", 0, "member id (admins and staff only)")
	cmd.Flags().StringVar(&form.Note, "note", "", "note for the reviewer")
	return cmd
}

func enrollmentTransitionCmd(use string, status models.EnrollmentStatus) *cobra.Command {
	var (
		note string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   use + " ID",
		Short: "Mark an enrollment " + string(status),
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Enrollments.Transition(ctx, id, status, note, yes)
		}),
	}
	cmd.Flags().StringVar(&note, "note", "", "reason shown to the member")
	if status == models.EnrollmentRejected || status == models.EnrollmentCancelled {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	}
	return cmd
}

func enrollmentsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an enrollment record",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Enrollments.Delete(ctx, id, yes)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func enrollmentsExportCmd() *cobra.Command {
	var ef enrollmentFilterFlags
	cmd := &cobra.Command{
		Use:   "export FILE.xlsx",
		Short: "Export enrollments to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			return app.Enrollments.Export(ctx, dashboard.Listing[models.EnrollmentFilter]{Filter: ef.filter()}, args[0])
		}),
	}
	ef.register(cmd)
	return cmd
}
