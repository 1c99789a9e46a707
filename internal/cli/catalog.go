package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/money"
	"github.com/fairyhunter13/inventory-register-service/internal/view"
)

type catalogFlags struct {
	search   string
	category string
	status   string
	sort     string
	dir      string
	page     int
}

// NewCatalogCommand creates the catalog command, which prints one page of
// the inventory listing.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	f := &catalogFlags{}
	cmd := &cobra.Command{
		Use:          "catalog",
		Short:        "Print a page of the inventory listing",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := f.params(rootOpts.cfg.PageSize)
			if err != nil {
				return err
			}
			catalog, err := openCatalog(cmd.Context(), rootOpts.cfg)
			if err != nil {
				return err
			}
			defer catalog.Close()
			products, err := catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			page := view.Apply(products, params)
			if rootOpts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			return writePage(cmd.OutOrStdout(), page, rootOpts.cfg.CurrencySymbol)
		},
	}
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "search name, SKU and category")
	cmd.Flags().StringVar(&f.category, "category", view.All, "category filter")
	cmd.Flags().StringVar(&f.status, "status", view.All, "stock status filter (in_stock|low_stock|out_of_stock)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort key (name|price|quantity|date_added)")
	cmd.Flags().StringVar(&f.dir, "dir", "asc", "sort direction (asc|desc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	return cmd
}

func (f *catalogFlags) params(pageSize int) (view.Params, error) {
	key, err := view.ParseSortKey(f.sort)
	if err != nil {
		return view.Params{}, err
	}
	dir, err := view.ParseSortDir(f.dir)
	if err != nil {
		return view.Params{}, err
	}
	if f.status != "" && f.status != view.All {
		if _, err := model.ParseStockStatus(f.status); err != nil {
			return view.Params{}, err
		}
	}
	return view.Params{
		Search:   f.search,
		Category: f.category,
		Status:   f.status,
		SortKey:  key,
		SortDir:  dir,
		Page:     f.page,
		PageSize: pageSize,
	}, nil
}

func writePage(w io.Writer, page view.Page, symbol string) error {
	if page.Empty {
		_, err := fmt.Fprintln(w, "no products match")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSKU\tCATEGORY\tPRICE\tQTY\tSTATUS\tADDED")
	for _, p := range page.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			p.Name, p.SKU, p.Category, money.Format(p.Price, symbol), p.Quantity, p.Status().Label(), p.CreatedAt.Format("2006-01-02"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d/%d (%d products)\n", page.Page, page.PageCount, page.Total)
	return err
}
