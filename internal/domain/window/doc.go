/*
Package window implements the window chrome of the shell: geometry, the
normal/maximized/minimized state machine, pointer-driven drag and resize,
and the Manager that owns all open app windows.

Drags follow pointer down on the header, consume move events, and end on
pointer up; later moves leave the frame alone. The header can never be
dragged above the viewport's top inset. Maximize stores the normal frame
and fills the viewport below the inset; restore puts it back.

The Manager keeps one window per app and at most one active window. Closing
or minimizing the active window focuses the most recently focused visible
one.
*/
package window
