// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ruma TUI.

This package defines the color palette and themed style set used throughout
the application. All colors use Lip Gloss AdaptiveColor for automatic
light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Indigo - Primary accent for the capsule and active personality
  - Cyan - Info, commands, and answer highlights
  - Emerald - Success states and backend-connected indicator
  - Amber - Warnings, paused downloads, update-available badge
  - Rose - Errors and destructive confirmations

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

## Personality Swatches

The backend's color_theme names resolve to terminal colors through
PersonalityColor; unknown themes fall back to Indigo.

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}

# Usage Example

	import "github.com/suriai/ruma-tui/internal/ui/styles"

	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)
*/
package styles
