package handlers

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GTMContainerID string // e.g. GTM-XXXXXXX
	Debug          bool
}

// NewAnalytics builds Analytics from the configured container id. Debug is
// on outside prod so the tag assistant can attach.
func NewAnalytics(gtmContainerID string, production bool) Analytics {
	return Analytics{
		GTMContainerID: gtmContainerID,
		Debug:          !production && gtmContainerID != "",
	}
}

// Enabled reports whether the tag manager snippet should render.
func (a Analytics) Enabled() bool { return a.GTMContainerID != "" }
