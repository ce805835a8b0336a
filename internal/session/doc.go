// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks UI presence and reports it to the backend.
//
// The backend throttles background work (update polls, model refreshes)
// while no one is looking at the UI. This package derives a presence state
// from user activity and posts transitions to POST /ui/status.
//
// # Key Types
//
//   - Manager: presence tracker with backend reporting
//   - Presence: active, idle, or hidden
//   - TickMsg / PresenceChangedMsg: Bubble Tea integration messages
//
// # Usage
//
//	mgr := session.NewManager(session.DefaultConfig(), client)
//
// Record activity on every key press:
//
//	mgr.RecordActivity()
//
// Drive from the update loop:
//
//	case session.TickMsg:
//	    return m, m.session.HandleTick()
package session
