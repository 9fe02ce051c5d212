package cli

import (
	"github.com/fatih/color"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
)

var (
	colorHeader = color.New(color.Bold)
	colorOK     = color.New(color.FgGreen)
	colorWarn   = color.New(color.FgYellow)
	colorError  = color.New(color.FgRed, color.Bold)
	colorMuted  = color.New(color.FgWhite, color.Faint)
)

func kindColor(kind compliance.Kind) *color.Color {
	switch kind {
	case compliance.KindExceeds12h:
		return colorError
	default:
		return colorWarn
	}
}

func kindLabel(kind compliance.Kind) string {
	switch kind {
	case compliance.KindExceeds12h:
		return "超时"
	case compliance.KindRestBelow11h:
		return "日休不足"
	case compliance.KindBadWeek35h:
		return "周休不足"
	default:
		return string(kind)
	}
}
