package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
)

const exportPageSize = 100

var (
	userColumns       = []string{"ID", "Email", "First name", "Last name", "Phone", "Role", "Active", "Last login", "Created"}
	enrollmentColumns = []string{"ID", "Class ID", "Class", "Class start", "User ID", "Member", "Status", "Note", "Created"}
)

// collect walks every page of a list endpoint
func collect[T any](ctx context.Context, params models.ListParams, fetch func(ctx context.Context, p models.ListParams) (*dto.Page[T], error)) ([]T, error) {
	params.Page = 1
	params.Size = exportPageSize

	var all []T
	for {
		page, err := fetch(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || params.Page >= page.Pagination.TotalPages {
			return all, nil
		}
		params.Page++
	}
}

// writeSheet saves a single-sheet workbook with a bold header row
func writeSheet(path, sheet string, headers []string, rows [][]interface{}) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// Export writes every user matching the filter to an xlsx file
func (p *UsersPage) Export(ctx context.Context, in Listing[models.UserFilter], path string) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	a.render.Loading("users for export")
	users, err := collect(ctx, in.Params, func(ctx context.Context, lp models.ListParams) (*dto.Page[models.User], error) {
		return a.api.Users.List(ctx, in.Filter, lp)
	})
	if err != nil {
		return a.fail(err)
	}

	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{
			u.ID, u.Email, u.FirstName, u.LastName, deref(u.Phone),
			string(u.RoleType), yesNo(u.IsActive), formatTimePtr(u.LastLoginAt), formatTime(u.CreatedAt),
		})
	}
	if err := writeSheet(path, "Users", userColumns, rows); err != nil {
		return a.fail(fmt.Errorf("cannot write %s: %w", path, err))
	}
	a.render.Success("Exported %d users to %s.", len(users), path)
	return nil
}

// Export writes every enrollment matching the filter to an xlsx file
func (p *EnrollmentsPage) Export(ctx context.Context, in Listing[models.EnrollmentFilter], path string) error {
	a := p.app
	if err := a.requireSession(); err != nil {
		return err
	}

	a.render.Loading("enrollments for export")
	enrollments, err := collect(ctx, in.Params, func(ctx context.Context, lp models.ListParams) (*dto.Page[models.Enrollment], error) {
		return p.fetchPage(ctx, Listing[models.EnrollmentFilter]{Filter: in.Filter, Params: lp})
	})
	if err != nil {
		return a.fail(err)
	}

	rows := make([][]interface{}, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, []interface{}{
			e.ID, e.ClassID, e.ClassName, formatTimePtr(e.ClassStart), e.UserID, e.MemberName,
			string(e.Status), deref(e.Note), formatTime(e.CreatedAt),
		})
	}
	if err := writeSheet(path, "Enrollments", enrollmentColumns, rows); err != nil {
		return a.fail(fmt.Errorf("cannot write %s: %w", path, err))
	}
	a.render.Success("Exported %d enrollments to %s.", len(enrollments), path)
	return nil
}

// importHeaders maps normalized header cells to UserForm fields
var importHeaders = map[string]func(f *UserForm, v string){
	"email":     func(f *UserForm, v string) { f.Email = v },
	"password":  func(f *UserForm, v string) { f.Password = v },
	"firstname": func(f *UserForm, v string) { f.FirstName = v },
	"lastname":  func(f *UserForm, v string) { f.LastName = v },
	"phone":     func(f *UserForm, v string) { f.Phone = v },
	"role":      func(f *UserForm, v string) { f.Role = v },
	"roletype":  func(f *UserForm, v string) { f.Role = v },
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// Import creates one user per row of the first sheet. The first row names
// the columns. A failing row is reported and the rest continue.
func (p *UsersPage) Import(ctx context.Context, path string) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	forms, err := readUserSheet(path)
	if err != nil {
		return a.fail(err)
	}

	var failures [][]string
	created := 0
	for i, form := range forms {
		// header is row 1
		row := i + 2
		req, err := form.Request()
		if err == nil {
			_, err = p.create(ctx, req)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return a.fail(err)
			}
			msg, fields := describe(err)
			for _, fe := range fields {
				msg += fmt.Sprintf("; %s: %s", fe.Field, fe.Message)
			}
			failures = append(failures, []string{fmt.Sprint(row), form.Email, msg})
			continue
		}
		created++
	}

	if len(failures) > 0 {
		a.render.Heading("Rows not imported")
		a.render.Table([]string{"ROW", "EMAIL", "ERROR"}, failures, "")
	}
	a.render.Success("Imported %d of %d users.", created, len(forms))
	return nil
}

func readUserSheet(path string) ([]UserForm, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	setters := make([]func(*UserForm, string), len(rows[0]))
	found := false
	for i, h := range rows[0] {
		if set, ok := importHeaders[normalizeHeader(h)]; ok {
			setters[i] = set
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("sheet %s has no recognised columns (email, password, first name, last name, phone, role)", sheet)
	}

	var forms []UserForm
	for _, row := range rows[1:] {
		var form UserForm
		blank := true
		for i, cell := range row {
			if i >= len(setters) || setters[i] == nil {
				continue
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			setters[i](&form, strings.TrimSpace(cell))
		}
		if !blank {
			forms = append(forms, form)
		}
	}
	return forms, nil
}
