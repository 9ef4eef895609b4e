package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/tcpanel/internal/adapter/driving/web/viewmodel"
)

// Selection renders the build tree as a form of checkboxes.
func Selection(page vm.SelectionViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder

		if page.Saved {
			b.WriteString("<div class=\"banner banner-ok\" role=\"status\">Selection saved.</div>\n")
		}

		if page.RecommendationsHTML != "" {
			fmt.Fprintf(&b, "<section class=\"recommendations\">\n%s</section>\n", page.RecommendationsHTML)
		}

		if len(page.MissingVersions) > 0 {
			fmt.Fprintf(&b, "<p class=\"banner banner-warn\">Configured versions not found upstream: %s</p>\n",
				templ.EscapeString(strings.Join(page.MissingVersions, ", ")))
		}

		fmt.Fprintf(&b, "<p class=\"summary-line\">%d of %d builds selected</p>\n", page.SelectedCount, page.Total)

		b.WriteString("<form method=\"post\" action=\"/app/selection\" class=\"selection\">\n")
		fmt.Fprintf(&b, "<input type=\"hidden\" name=\"csrf_token\" value=\"%s\">\n", templ.EscapeString(page.CSRFToken))
		for _, id := range page.PreservedIDs {
			fmt.Fprintf(&b, "<input type=\"hidden\" name=\"build\" value=\"%s\">\n", templ.EscapeString(id))
		}
		if len(page.PreservedIDs) > 0 {
			fmt.Fprintf(&b, "<p class=\"note\">%d selected builds outside the current versions are kept.</p>\n", len(page.PreservedIDs))
		}

		for _, node := range page.Nodes {
			fmt.Fprintf(&b, "<fieldset class=\"node depth-%d\">\n<legend>%s</legend>\n", node.Depth, templ.EscapeString(node.Name))
			for _, build := range node.Builds {
				checked := ""
				if build.Selected {
					checked = " checked"
				}
				fmt.Fprintf(&b, "<label class=\"%s\"><input type=\"checkbox\" name=\"build\" value=\"%s\"%s> %s <span class=\"badge %s\">%s</span></label>\n",
					build.StatusClass, templ.EscapeString(build.ID), checked,
					templ.EscapeString(build.Name), build.StatusClass, templ.EscapeString(build.Status))
			}
			b.WriteString("</fieldset>\n")
		}

		b.WriteString("<button type=\"submit\">Save selection</button>\n</form>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}
