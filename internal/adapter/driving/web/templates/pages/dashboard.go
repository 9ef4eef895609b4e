// Package pages holds the page body components.
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/tcpanel/internal/adapter/driving/web/viewmodel"
)

// Dashboard renders the selected builds grouped by project.
func Dashboard(page vm.DashboardViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder

		if page.ShowStats {
			b.WriteString("<section class=\"stats\">\n")
			stat(&b, "Total", page.Counts.Total, "")
			stat(&b, "Running", page.Counts.Running, "status-running")
			stat(&b, "Success", page.Counts.Success, "status-success")
			stat(&b, "Failure", page.Counts.Failure, "status-failure")
			stat(&b, "Unknown", page.Counts.Unknown, "status-unknown")
			b.WriteString("</section>\n")
		}

		if len(page.Summaries) > 0 {
			b.WriteString("<section class=\"summaries\">\n")
			for _, s := range page.Summaries {
				fmt.Fprintf(&b, "<div class=\"summary %s\"><span class=\"name\">%s</span> <span class=\"overall\">%s</span> <span class=\"count\">%d</span></div>\n",
					s.StatusClass, templ.EscapeString(s.Name), templ.EscapeString(s.Overall), s.BuildCount)
			}
			b.WriteString("</section>\n")
		}

		if len(page.Groups) == 0 {
			if page.SelectedCount == 0 {
				b.WriteString("<p class=\"empty\">No builds selected. <a href=\"/app/select\">Choose builds to monitor</a>.</p>\n")
			} else {
				b.WriteString("<p class=\"empty\">No selected builds match the display filter.</p>\n")
			}
		}

		for _, g := range page.Groups {
			fmt.Fprintf(&b, "<section class=\"group\">\n<h2>%s</h2>\n<table class=\"builds\">\n", templ.EscapeString(g.ProjectName))
			b.WriteString("<thead><tr><th>Build</th><th>Status</th><th>#</th><th>Details</th></tr></thead>\n<tbody>\n")
			for _, row := range g.Builds {
				status := row.Status
				if row.Running {
					status = "RUNNING"
				}
				fmt.Fprintf(&b, "<tr id=\"build-%s\" class=\"%s\">", templ.EscapeString(row.ID), row.StatusClass)
				fmt.Fprintf(&b, "<td><a href=\"%s\" target=\"_blank\" rel=\"noopener\">%s</a></td>",
					templ.EscapeString(string(templ.URL(row.WebURL))), templ.EscapeString(row.Name))
				fmt.Fprintf(&b, "<td><span class=\"badge %s\">%s</span></td>", row.StatusClass, templ.EscapeString(status))
				fmt.Fprintf(&b, "<td>%s</td>", templ.EscapeString(row.Number))
				fmt.Fprintf(&b, "<td class=\"status-text\">%s</td>", row.StatusTextHTML)
				b.WriteString("</tr>\n")
			}
			b.WriteString("</tbody>\n</table>\n</section>\n")
		}

		if len(page.MissingIDs) > 0 {
			b.WriteString("<section class=\"missing\">\n<h2>Missing upstream</h2>\n<ul>\n")
			for _, id := range page.MissingIDs {
				fmt.Fprintf(&b, "<li>%s</li>\n", templ.EscapeString(id))
			}
			b.WriteString("</ul>\n</section>\n")
		}

		if len(page.CurrentVersions) > 0 {
			fmt.Fprintf(&b, "<footer class=\"versions\">Current versions: %s</footer>\n",
				templ.EscapeString(strings.Join(page.CurrentVersions, ", ")))
		}

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func stat(b *strings.Builder, label string, value int, class string) {
	fmt.Fprintf(b, "<div class=\"stat %s\"><span class=\"value\">%d</span><span class=\"label\">%s</span></div>\n", class, value, label)
}

// Unavailable renders the body shown when no build data can be served.
func Unavailable() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p class=\"empty\">Build data is not available right now.</p>\n")
		return err
	})
}
