package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/dashboard"
)

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage trainers and their skills",
}

var staffSkillsCmd = &cobra.Command{
	Use:     "skills",
	Aliases: []string{"skill"},
	Short:   "Add and review staff skills",
}

func init() {
	rootCmd.AddCommand(staffCmd)
	staffCmd.AddCommand(staffListCmd(), staffShowCmd(), staffCreateCmd(), staffUpdateCmd(),
		staffActiveCmd("activate", true), staffActiveCmd("deactivate", false), staffDeleteCmd(), staffSkillsCmd)
	staffSkillsCmd.AddCommand(skillAddCmd(), skillReviewCmd("approve", models.SkillApproved),
		skillReviewCmd("reject", models.SkillRejected), skillDeleteCmd())
}

func staffListCmd() *cobra.Command {
	var (
		lf               listFlags
		search, skill    string
		active, inactive bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List staff members",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			isActive, err := activeFilter(active, inactive)
			if err != nil {
				return err
			}
			return app.Staff.List(ctx, dashboard.Listing[models.StaffFilter]{
				Filter: models.StaffFilter{Search: search, IsActive: isActive, SkillStatus: models.SkillStatus(skill)},
				Params: lf.params(),
			})
		}),
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&search, "search", "", "match name or email")
	cmd.Flags().StringVar(&skill, "skill-status", "", "only staff with a skill in this status (pending, approved, rejected)")
	cmd.Flags().BoolVar(&active, "active", false, "only active staff")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "only inactive staff")
	return cmd
}

func staffShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a staff member and their skills",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Staff.Show(ctx, id)
		}),
	}
}

func staffFlags(cmd *cobra.Command) {
	cmd.Flags().String("first-name", "", "first name")
	cmd.Flags().String("last-name", "", "last name")
	cmd.Flags().String("email", "", "contact email")
	cmd.Flags().String("phone", "", "phone number")
	cmd.Flags().String("bio", "", "short biography")
}

func staffCreateCmd() *cobra.Command {
	var skills []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a staff member",
		Args:  cobra.NoArgs,
	}
	staffFlags(cmd)
	cmd.Flags().StringSliceVar(&skills, "skill", nil, "skill to submit for review (repeatable)")
	cmd.RunE = run(func(ctx context.Context, app *dashboard.App, _ []string) error {
		f := cmd.Flags()
		form := dashboard.StaffForm{Skills: skills}
		form.FirstName, _ = f.GetString("first-name")
		form.LastName, _ = f.GetString("last-name")
		form.Email, _ = f.GetString("email")
		form.Phone, _ = f.GetString("phone")
		form.Bio, _ = f.GetString("bio")
		return app.Staff.Create(ctx, form)
	})
	return cmd
}

func staffUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a staff member; only the given flags change",
		Args:  cobra.ExactArgs(1),
	}
	staffFlags(cmd)
	cmd.RunE = run(func(ctx context.Context, app *dashboard.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.Staff.Update(ctx, id, dashboard.StaffPatch{
			FirstName: changedString(cmd, "first-name"),
			LastName:  changedString(cmd, "last-name"),
			Email:     changedString(cmd, "email"),
			Phone:     changedString(cmd, "phone"),
			Bio:       changedString(cmd, "bio"),
		})
	})
	return cmd
}

func staffActiveCmd(use string, active bool) *cobra.Command {
	short := "Mark a staff member active"
	if !active {
		short = "Mark a staff member inactive"
	}
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Staff.SetActive(ctx, id, active)
		}),
	}
}

func staffDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Staff.Delete(ctx, id, yes)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func skillAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add STAFF_ID NAME",
		Short: "Submit a skill for review",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Staff.AddSkill(ctx, id, args[1])
		}),
	}
}

func skillReviewCmd(use string, status models.SkillStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " STAFF_ID SKILL_ID",
		Short: "Mark a skill " + string(status),
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return app.Staff.ReviewSkill(ctx, ids[0], ids[1], status)
		}),
	}
}

func skillDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete STAFF_ID SKILL_ID",
		Short: "Remove a skill",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return app.Staff.DeleteSkill(ctx, ids[0], ids[1], yes)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
