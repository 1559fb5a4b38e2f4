package entity

import "encoding/base64"

// PageState is what the agent sees of the browser before choosing an action.
type PageState struct {
	URL        string
	Title      string
	Elements   []InteractiveElement
	Screenshot *Screenshot
}

type InteractiveElement struct {
	Index       int    `json:"index"`
	Tag         string `json:"tag"`
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
	AriaLabel   string `json:"aria_label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Href        string `json:"href,omitempty"`
}

// Label returns the most human readable description of the element.
func (e InteractiveElement) Label() string {
	switch {
	case e.Text != "":
		return e.Text
	case e.AriaLabel != "":
		return e.AriaLabel
	case e.Placeholder != "":
		return e.Placeholder
	default:
		return e.Tag
	}
}

func (s PageState) Element(index int) (InteractiveElement, bool) {
	for _, el := range s.Elements {
		if el.Index == index {
			return el, true
		}
	}
	return InteractiveElement{}, false
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

func (s *Screenshot) Base64() string {
	if s == nil || len(s.Data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(s.Data)
}

func (s *Screenshot) MIMEType() string {
	if s == nil || s.Format == "" {
		return "image/jpeg"
	}
	return "image/" + s.Format
}
