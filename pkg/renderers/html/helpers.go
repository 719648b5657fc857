package html

import (
	"strings"

	"github.com/goliatone/go-stepform/pkg/widgets"
)

func controlID(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return "sf-" + strings.ReplaceAll(trimmed, ".", "-")
}

func sanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "sf-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

// inputType maps single-input widgets to their HTML type attribute.
func inputType(widget string) (string, bool) {
	switch widget {
	case widgets.WidgetText:
		return "text", true
	case widgets.WidgetEmail:
		return "email", true
	case widgets.WidgetPhone:
		return "tel", true
	case widgets.WidgetURL:
		return "url", true
	case widgets.WidgetNumber:
		return "number", true
	case widgets.WidgetDate:
		return "date", true
	default:
		return "", false
	}
}

func labelSupportsFor(widget string) bool {
	switch widget {
	case widgets.WidgetRadio, widgets.WidgetMultiSelect:
		return false
	default:
		return true
	}
}

func widgetHandlesChrome(widget string) bool {
	switch widget {
	case widgets.WidgetFieldset, widgets.WidgetRepeater:
		return true
	default:
		return false
	}
}
