// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the drafting session state and its persistence loop.
//
// State transitions are pure reducers over model.SessionState. A Store holds
// the current state, applies reducers in dispatch order and notifies
// listeners. A Saver persists snapshots in the background.
//
// # Key Types
//
//   - Store: injectable holder of the current session state
//   - Reducer: function from the current state to the next
//   - Saver: coalescing, rate limited background writer
//
// # Usage
//
//	store := session.NewStore(nil)
//	saver := session.NewSaver(historyStore, session.DefaultSaverConfig())
//	defer saver.Close()
//	unsubscribe := store.Subscribe(saver.Listener())
//	defer unsubscribe()
//
//	store.CycleMode()
//	store.Append(model.NewUserMessage("Kira tespit davası nasıl açılır?"))
package session
