package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/service/subscription"
)

const timeLayout = "2006-01-02 15:04"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPlans(w io.Writer, plans []catalog.Plan) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMONTHLY\tYEARLY\tFEATURES")
	for _, p := range plans {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s %s\t%s\n",
			p.ID, p.Name,
			p.MonthlyPrice.StringFixed(2), p.Currency,
			p.YearlyPrice.StringFixed(2), p.Currency,
			strings.Join(p.Features, ","))
	}
	_ = tw.Flush()
}

func printPage(w io.Writer, page *subscription.Page) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No subscriptions found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tPLAN\tSTATUS\tINTERVAL\tPERIOD END")
	for _, s := range page.Items {
		end := lo.TernaryF(s.CurrentPeriodEnd == nil,
			func() string { return "-" },
			func() string { return s.CurrentPeriodEnd.Format(timeLayout) })
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.UserID, s.PlanID, s.Status, s.Interval, end)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "page %d/%d, %d total\n", page.Page, max(page.TotalPages, 1), page.Total)
}
