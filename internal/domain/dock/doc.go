// Package dock derives the dock, taskbar and app drawer lists from the app
// catalog and the open windows. The lists are pure projections; open,
// active and minimized flags come from the window manager.
package dock
