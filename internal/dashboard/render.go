package dashboard

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/client"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

const timeLayout = "2006-01-02 15:04"

// Renderer writes page output. Tables and details go to out, progress and
// error banners to status so piped output stays clean.
type Renderer struct {
	out    io.Writer
	status io.Writer
}

// NewRenderer creates a Renderer
func NewRenderer(out, status io.Writer) *Renderer {
	return &Renderer{out: out, status: status}
}

// Loading shows the loading indicator for what
func (r *Renderer) Loading(what string) {
	fmt.Fprintf(r.status, "Loading %s…\n", what)
}

// Table prints rows under headers, or empty when there are no rows
func (r *Renderer) Table(headers []string, rows [][]string, empty string) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, empty)
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// Pagination prints the page footer
func (r *Renderer) Pagination(p dto.PaginationInfo) {
	if p.TotalItems == 0 {
		return
	}
	fmt.Fprintf(r.out, "\nPage %d of %d (%d total)\n", p.CurrentPage, p.TotalPages, p.TotalItems)
}

// Detail prints label/value pairs
func (r *Renderer) Detail(pairs [][2]string) {
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", p[0], p[1])
	}
	tw.Flush()
}

// Heading prints a section title
func (r *Renderer) Heading(title string) {
	fmt.Fprintf(r.out, "\n%s\n%s\n", title, strings.Repeat("-", len([]rune(title))))
}

// Success prints a confirmation line
func (r *Renderer) Success(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Error prints the error banner followed by any field errors
func (r *Renderer) Error(err error) {
	message, fields := describe(err)
	fmt.Fprintf(r.status, "Error: %s\n", message)
	for _, f := range fields {
		if f.Field == "" {
			fmt.Fprintf(r.status, "  - %s\n", f.Message)
			continue
		}
		fmt.Fprintf(r.status, "  - %s: %s\n", f.Field, f.Message)
	}
}

func describe(err error) (string, []dto.FieldError) {
	var form *validation.FormError
	if errors.As(err, &form) {
		if len(form.Fields) == 1 {
			return form.Fields[0].Message, nil
		}
		return "the form has errors", form.Fields
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fields := apiErr.Fields
		if len(fields) == 1 && fields[0].Message == apiErr.Message {
			fields = nil
		}
		return apiErr.Message, fields
	}
	return err.Error(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatDuration(seconds int) string {
	return (time.Duration(seconds) * time.Second).String()
}
