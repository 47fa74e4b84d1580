// Package session saves and restores desktop layouts.
//
// A session records every open window (app, frame, saved normal frame, mode
// and focus) plus the viewport, and is stored in the storage sessions bucket.
//
// Restoration Process:
//  1. Load the session from storage
//  2. Apply the saved viewport
//  3. Close all current windows
//  4. Relaunch each app with its saved frame and mode, skipping apps the
//     catalog no longer has
//  5. Restore focus
//
// Example Usage:
//
//	manager := session.NewManager(windows, store)
//	s, err := manager.Save(ctx, "Trading", "wallet and exchange side by side")
//	result, err := manager.Restore(ctx, s.ID)
package session
