// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds the small helpers shared across ruma: rune-safe
// truncation for display strings, integer formatting, and crash-safe atomic
// file writes used by the config and bootstrap layers.
package util
