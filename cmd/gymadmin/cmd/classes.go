package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/dashboard"
)

var classesCmd = &cobra.Command{
	Use:     "classes",
	Aliases: []string{"class"},
	Short:   "Manage scheduled classes",
}

func init() {
	rootCmd.AddCommand(classesCmd)
	classesCmd.AddCommand(classesListCmd(), classesShowCmd(), classesCreateCmd(), classesUpdateCmd(),
		classesCancelCmd(), classesDeleteCmd())
}

func classesListCmd() *cobra.Command {
	var (
		lf           listFlags
		search       string
		status       string
		instructorID int64
		from, to     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List classes",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			fromTime, err := dashboard.ParseFilterTime("from", from)
			if err != nil {
				return err
			}
			toTime, err := dashboard.ParseFilterTime("to", to)
			if err != nil {
				return err
			}
			return app.Classes.List(ctx, dashboard.Listing[models.ClassFilter]{
				Filter: models.ClassFilter{
					Search:       search,
					InstructorID: instructorID,
					Status:       models.ClassStatus(status),
					From:         fromTime,
					To:           toTime,
				},
				Params: lf.params(),
			})
		}),
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&search, "search", "", "match name or location")
	cmd.Flags().StringVar(&status, "status", "", "scheduled or cancelled")
	cmd.Flags().Int64Var(&instructorID, "instructor", 0, "instructor staff id")
	cmd.Flags().StringVar(&from, "from", "", `classes starting at or after, e.g. "2030-05-01 09:00"`)
	cmd.Flags().StringVar(&to, "to", "", "classes starting before")
	return cmd
}

func classesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one class",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Classes.Show(ctx, id)
		}),
	}
}

func classFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "class name")
	cmd.Flags().String("description", "", "description")
	cmd.Flags().Int64("instructor", 0, "instructor staff id")
	cmd.Flags().String("location", "", "room or studio")
	cmd.Flags().String("start", "", `start time, e.g. "2030-05-01 09:00"`)
	cmd.Flags().String("end", "", "end time")
	cmd.Flags().Int("capacity", 0, "maximum enrollments")
}

func classesCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a class",
		Args:  cobra.NoArgs,
	}
	classFlags(cmd)
	cmd.RunE = run(func(ctx context.Context, app *dashboard.App, _ []string) error {
		f := cmd.Flags()
		form := dashboard.ClassForm{}
		form.Name, _ = f.GetString("name")
		form.Description, _ = f.GetString("description")
		form.InstructorID, _ = f.GetInt64("instructor")
		form.Location, _ = f.GetString("location")
		form.Start, _ = f.GetString("start")
		form.End, _ = f.GetString("end")
		form.Capacity, _ = f.GetInt("capacity")
		return app.Classes.Create(ctx, form)
	})
	return cmd
}

func classesUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a class; only the given flags change",
		Args:  cobra.ExactArgs(1),
	}
	classFlags(cmd)
	cmd.Flags().String("status", "", "scheduled or cancelled")
	cmd.RunE = run(func(ctx context.Context, app *dashboard.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.Classes.Update(ctx, id, dashboard.ClassPatch{
			Name:         changedString(cmd, "name"),
			Description:  changedString(cmd, "description"),
			InstructorID: changedInt64(cmd, "instructor"),
			Location:     changedString(cmd, "location"),
			Start:        changedString(cmd, "start"),
			End:          changedString(cmd, "end"),
			Capacity:     changedInt(cmd, "capacity"),
			Status:       changedString(cmd, "status"),
		})
	})
	return cmd
}

func classesCancelCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a class without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Classes.Cancel(ctx, id, yes)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func classesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a class that has no enrollments",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Classes.Delete(ctx, id, yes)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
