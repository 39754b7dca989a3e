// Package ui provides the FITS viewer's Fyne windows.
//
// This file defines the application theme: the default Fyne theme with a
// configurable light/dark variant and tighter spacing.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// FitsViewTheme wraps the default Fyne theme. When followSystem is set the
// variant requested by the OS is used, otherwise the stored one.
type FitsViewTheme struct {
	base         fyne.Theme
	variant      fyne.ThemeVariant
	followSystem bool
}

// NewFitsViewTheme creates a theme for a configured name: "light", "dark"
// or "system".
func NewFitsViewTheme(name string) *FitsViewTheme {
	t := &FitsViewTheme{base: theme.DefaultTheme()}
	t.SetVariantName(name)
	return t
}

// SetVariantName switches between light, dark and system variants.
func (t *FitsViewTheme) SetVariantName(name string) {
	switch name {
	case "light":
		t.variant, t.followSystem = theme.VariantLight, false
	case "dark":
		t.variant, t.followSystem = theme.VariantDark, false
	default:
		t.followSystem = true
	}
}

// Color delegates to the base theme with the effective variant.
func (t *FitsViewTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if !t.followSystem {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

// Font delegates to the base theme.
func (t *FitsViewTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *FitsViewTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size keeps the header summary dense enough to show a few HDUs at once.
func (t *FitsViewTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 10
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	default:
		return t.base.Size(name)
	}
}
