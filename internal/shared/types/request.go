package types

// ActionRequest is the body of POST /api/:service
type ActionRequest struct {
	Action string                 `json:"action" binding:"required"`
	Params map[string]interface{} `json:"-"`
}

// LaunchRequest opens an app window
type LaunchRequest struct {
	AppID string `json:"app_id" binding:"required"`
}

// PointerRequest feeds one pointer event into a window
type PointerRequest struct {
	Kind   string `json:"kind" binding:"required"` // down, move, up
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Target string `json:"target,omitempty"` // header, body, resize
}

// ViewportRequest updates the desktop viewport
type ViewportRequest struct {
	Width    int `json:"width" binding:"required"`
	Height   int `json:"height" binding:"required"`
	TopInset int `json:"top_inset"`
}

// SaveSessionRequest names a desktop layout snapshot
type SaveSessionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
