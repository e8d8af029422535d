package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/dashboard"
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user", "members"},
	Short:   "Manage accounts",
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd(), usersShowCmd(), usersCreateCmd(), usersUpdateCmd(),
		usersActiveCmd("activate", true), usersActiveCmd("deactivate", false), usersDeleteCmd(),
		usersExportCmd(), usersImportCmd())
}

type userFilterFlags struct {
	search, role     string
	active, inactive bool
}

func (u *userFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&u.search, "search", "", "match name or email")
	cmd.Flags().StringVar(&u.role, "role", "", "ADMIN, STAFF or CUSTOMER")
	cmd.Flags().BoolVar(&u.active, "active", false, "only active accounts")
	cmd.Flags().BoolVar(&u.inactive, "inactive", false, "only inactive accounts")
}

func (u *userFilterFlags) filter() (models.UserFilter, error) {
	isActive, err := activeFilter(u.active, u.inactive)
	if err != nil {
		return models.UserFilter{}, err
	}
	return models.UserFilter{
		Search:   u.search,
		Role:     models.RoleType(strings.ToUpper(u.role)),
		IsActive: isActive,
	}, nil
}

func usersListCmd() *cobra.Command {
	var (
		lf listFlags
		uf userFilterFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			filter, err := uf.filter()
			if err != nil {
				return err
			}
			return app.Users.List(ctx, dashboard.Listing[models.UserFilter]{Filter: filter, Params: lf.params()})
		}),
	}
	lf.register(cmd)
	uf.register(cmd)
	return cmd
}

func usersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Users.Show(ctx, id)
		}),
	}
}

func userFlags(cmd *cobra.Command) {
	cmd.Flags().String("email", "", "login email")
	cmd.Flags().String("password", "", "password (at least 8 characters with a letter and a digit)")
	cmd.Flags().String("first-name", "", "first name")
	cmd.Flags().String("last-name", "", "last name")
	cmd.Flags().String("phone", "", "phone number")
	cmd.Flags().String("role", "", "ADMIN, STAFF or CUSTOMER")
}

func usersCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
	}
	userFlags(cmd)
	cmd.RunE = run(func(ctx context.Context, app *dashboard.App, _ []string) error {
		f := cmd.Flags()
		form := dashboard.UserForm{}
		form.Email, _ = f.GetString("email")
		form.Password, _ = f.GetString("password")
		form.FirstName, _ = f.GetString("first-name")
		form.LastName, _ = f.GetString("last-name")
		form.Phone, _ = f.GetString("phone")
		form.Role, _ = f.GetString("role")
		return app.Users.Create(ctx, form)
	})
	return cmd
}

func usersUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit an account; only the given flags change",
		Args:  cobra.ExactArgs(1),
	}
	userFlags(cmd)
	cmd.RunE = run(func(ctx context.Context, app *dashboard.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.Users.Update(ctx, id, dashboard.UserPatch{
			Email:     changedString(cmd, "email"),
			Password:  changedString(cmd, "password"),
			FirstName: changedString(cmd, "first-name"),
			LastName:  changedString(cmd, "last-name"),
			Phone:     changedString(cmd, "phone"),
			Role:      changedString(cmd, "role"),
		})
	})
	return cmd
}

func usersActiveCmd(use string, active bool) *cobra.Command {
	var yes bool
	short := "Allow an account to sign in"
	if !active {
		short = "Block an account from signing in"
	}
	cmd := &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Users.SetActive(ctx, id, active, yes)
		}),
	}
	if !active {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	}
	return cmd
}

func usersDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Users.Delete(ctx, id, yes)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func usersExportCmd() *cobra.Command {
	var (
		uf             userFilterFlags
		sortBy, sortOr string
	)
	cmd := &cobra.Command{
		Use:   "export FILE.xlsx",
		Short: "Export accounts to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			filter, err := uf.filter()
			if err != nil {
				return err
			}
			return app.Users.Export(ctx, dashboard.Listing[models.UserFilter]{
				Filter: filter,
				Params: models.ListParams{SortBy: sortBy, SortOrder: sortOr},
			}, args[0])
		}),
	}
	uf.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "sort field")
	cmd.Flags().StringVar(&sortOr, "sort-order", "", "asc or desc")
	return cmd
}

func usersImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.xlsx",
		Short: "Create accounts from a spreadsheet",
		Long: `Create one account per row of the first sheet. The first row names the
columns: email, password, first name, last name, phone and role. Rows that
fail are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			return app.Users.Import(ctx, args[0])
		}),
	}
}
