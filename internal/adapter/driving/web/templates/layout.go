// Package templates holds the page layout shared by every HTML page.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/tcpanel/internal/adapter/driving/web/viewmodel"
)

// Layout wraps body in the HTML document shell with navigation and the
// stale-data banner.
func Layout(page vm.LayoutViewModel, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var head strings.Builder
		head.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		head.WriteString("<meta charset=\"utf-8\">\n")
		head.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		if page.RefreshSeconds > 0 {
			fmt.Fprintf(&head, "<meta http-equiv=\"refresh\" content=\"%d\">\n", page.RefreshSeconds)
		}
		fmt.Fprintf(&head, "<title>%s</title>\n", templ.EscapeString(page.Title))
		head.WriteString("<link rel=\"stylesheet\" href=\"/static/app.css\">\n</head>\n<body>\n")
		head.WriteString("<header class=\"topbar\">\n")
		fmt.Fprintf(&head, "<h1>%s</h1>\n", templ.EscapeString(page.Title))
		head.WriteString("<nav><a href=\"/\">Dashboard</a> <a href=\"/app/select\">Select builds</a></nav>\n")
		if page.FetchedAt != "" {
			fmt.Fprintf(&head, "<span class=\"fetched freshness-%s\">updated %s</span>\n",
				templ.EscapeString(page.Freshness), templ.EscapeString(page.FetchedAt))
		}
		head.WriteString("</header>\n")
		if page.Warning != "" {
			fmt.Fprintf(&head, "<div class=\"banner banner-warn\" role=\"alert\">%s</div>\n", templ.EscapeString(page.Warning))
		}
		head.WriteString("<main>\n")

		if _, err := io.WriteString(w, head.String()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}
