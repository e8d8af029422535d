package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fitdesk/gymadmin/internal/app/models"
)

// listFlags are the paging flags every list command takes
type listFlags struct {
	page      int
	size      int
	sortBy    string
	sortOrder string
}

func (l *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&l.page, "page", 1, "page number")
	cmd.Flags().IntVar(&l.size, "size", 20, "page size")
	cmd.Flags().StringVar(&l.sortBy, "sort-by", "", "sort field")
	cmd.Flags().StringVar(&l.sortOrder, "sort-order", "", "asc or desc")
}

func (l *listFlags) params() models.ListParams {
	return models.ListParams{Page: l.page, Size: l.size, SortBy: l.sortBy, SortOrder: l.sortOrder}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// changed* return nil for flags left unset, so updates stay partial

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func changedInt64(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt64(name)
	return &v
}

// activeFilter turns --active / --inactive into a tri-state filter
func activeFilter(active, inactive bool) (*bool, error) {
	switch {
	case active && inactive:
		return nil, fmt.Errorf("--active and --inactive are mutually exclusive")
	case active:
		v := true
		return &v, nil
	case inactive:
		v := false
		return &v, nil
	}
	return nil, nil
}
