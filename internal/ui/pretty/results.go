package pretty

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// Table formatting constants.
const (
	tablePadding     = 2
	minNameWidth     = 12
	minItemsWidth    = 5
	minStatusWidth   = 9
	truncatedMarker  = "truncated"
	okMarker         = "ok"
	quarantineMarker = "errors"
)

// FormatResults renders the per-collector result table.
func (s *Styles) FormatResults(results map[string]warehouse.Result) string {
	if len(results) == 0 {
		return ""
	}

	names := make([]string, 0, len(results))
	nameWidth := minNameWidth
	for name := range results {
		names = append(names, name)
		if len(name) > nameWidth {
			nameWidth = len(name)
		}
	}
	sort.Strings(names)

	var builder strings.Builder

	header := fmt.Sprintf(" %-*s  %*s  %-*s",
		nameWidth, "COLLECTOR",
		minItemsWidth, "ITEMS",
		minStatusWidth, "STATUS",
	)
	builder.WriteString(s.TableHeader.Render(header))
	builder.WriteString("\n")

	sepWidth := nameWidth + minItemsWidth + minStatusWidth + tablePadding*3
	builder.WriteString(s.TableSeparator.Render(strings.Repeat("-", sepWidth)))
	builder.WriteString("\n")

	for _, name := range names {
		res := results[name]

		status := s.Allowed.Render(okMarker)
		switch {
		case len(res.Errors) > 0:
			status = s.Blocked.Render(quarantineMarker)
		case res.Truncated:
			status = s.Truncated.Render(truncatedMarker)
		}

		builder.WriteString(fmt.Sprintf(" %-*s  %*d  %s\n",
			nameWidth, s.Collector.Render(name),
			minItemsWidth, res.Count,
			status,
		))
	}

	return builder.String()
}

// FormatSummaryOneLine renders run statistics as a single line.
// Example: "6 collectors, 42 items, 1 truncated, 2 collector errors".
func (s *Styles) FormatSummaryOneLine(results map[string]warehouse.Result) string {
	var items, truncated, errs int
	for _, res := range results {
		items += res.Count
		if res.Truncated {
			truncated++
		}
		errs += len(res.Errors)
	}

	parts := []string{
		fmt.Sprintf("%d collectors", len(results)),
		fmt.Sprintf("%d items", items),
	}
	if truncated > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d truncated", truncated)))
	}
	if errs > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d collector errors", errs)))
	} else {
		parts = append(parts, s.Success.Render("no errors"))
	}

	return strings.Join(parts, ", ") + "\n"
}
