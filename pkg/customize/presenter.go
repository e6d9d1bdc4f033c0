package customize

import (
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Control types with a designated inner region for the message element
const (
	ControlTypeNavMenuItem = "nav_menu_item"
	ControlTypeWidgetForm  = "widget_form"
)

// Transitions recorded on the message element
const (
	TransitionShow = "slideDown"
	TransitionHide = "slideUp"
)

// Presenter keeps a control's message element and invalid class in sync with
// its ValidationMessageStore.
type Presenter struct {
	control *Control
	mode    string

	mu      sync.Mutex
	element *html.Node
	renders int
}

func bindPresenter(c *Control, store *ValidationMessageStore) *Presenter {
	p := &Presenter{control: c, mode: store.mode}
	store.Bind(func(msg, _ string) {
		var messages []string
		if p.mode == PresentationList {
			messages = store.Messages()
		}
		c.Embedded.Done(func() {
			p.render(msg, messages)
		})
	})
	c.mu.Lock()
	c.presenter = p
	c.mu.Unlock()
	return p
}

// Element returns the message element, or nil before the first render
func (p *Presenter) Element() *html.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.element
}

// Renders returns how many updates were applied to the DOM
func (p *Presenter) Renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}

func (p *Presenter) render(msg string, messages []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders++

	el := p.resolveElement()
	container := p.control.Container

	if msg == "" {
		removeClass(container, ClassInvalid)
		setAttr(el, "style", "display: none")
		setAttr(el, "data-transition", TransitionHide)
		return
	}

	addClass(container, ClassInvalid)
	if p.mode == PresentationList {
		list := NewElement(atom.Ul)
		for _, m := range messages {
			item := NewElement(atom.Li)
			setText(item, m)
			list.AppendChild(item)
		}
		removeChildren(el)
		el.AppendChild(list)
	} else {
		setText(el, msg)
	}
	removeAttr(el, "style")
	setAttr(el, "data-transition", TransitionShow)
}

func (p *Presenter) resolveElement() *html.Node {
	if p.element != nil {
		return p.element
	}
	container := p.control.Container
	if el := FindFirstByClass(container, ClassValidationMessage); el != nil {
		p.element = el
		return el
	}

	el := NewElement(atom.Div, ClassValidationMessage, "error")
	setAttr(el, "aria-live", "assertive")
	setAttr(el, "style", "display: none")

	var region *html.Node
	switch {
	case p.control.IsType(ControlTypeNavMenuItem):
		region = FindFirstByClass(container, ClassMenuItemSettings)
	case p.control.IsType(ControlTypeWidgetForm):
		region = FindFirstByClass(container, ClassWidgetInside)
	}

	if region != nil {
		prependChild(region, el)
	} else if title := FindFirstByClass(container, ClassControlTitle); title != nil && title.Parent != nil {
		insertAfter(title, el)
	} else {
		container.AppendChild(el)
	}
	p.element = el
	return el
}
