package toggle

// LabelRenderer shows the toggle label. SetMenuLabel is called while the
// controller holds the store lock, so implementations must not call back
// into the controller synchronously.
type LabelRenderer interface {
	SetMenuLabel(text string)
}

// Exiter terminates the application.
type Exiter interface {
	ExitApplication(code int)
}

// MultiRenderer fans a label out to several renderers in order.
type MultiRenderer []LabelRenderer

func (m MultiRenderer) SetMenuLabel(text string) {
	for _, r := range m {
		r.SetMenuLabel(text)
	}
}

// RendererFunc adapts a function to LabelRenderer.
type RendererFunc func(text string)

func (f RendererFunc) SetMenuLabel(text string) { f(text) }

// ExiterFunc adapts a function to Exiter.
type ExiterFunc func(code int)

func (f ExiterFunc) ExitApplication(code int) { f(code) }
