package models

// ContentKind tags how a Content body must be treated before it is stored or
// rendered.
type ContentKind string

const (
	// ContentPlain is text with no markup. Renderers escape it.
	ContentPlain ContentKind = "plain"
	// ContentHTML is formatted text restricted to an allow-listed tag set.
	ContentHTML ContentKind = "html"
	// ContentEmbed is third-party embed markup (a single allow-listed iframe).
	ContentEmbed ContentKind = "embed"
)

// Valid reports whether k is one of the known content kinds.
func (k ContentKind) Valid() bool {
	switch k {
	case ContentPlain, ContentHTML, ContentEmbed:
		return true
	}
	return false
}

// Content is a piece of user-supplied text tagged with its kind.
type Content struct {
	Kind ContentKind `json:"kind" validate:"contentkind"`
	Body string      `json:"body"`
}

// Plain returns plain text content.
func Plain(body string) Content {
	return Content{Kind: ContentPlain, Body: body}
}

// HTML returns formatted content.
func HTML(body string) Content {
	return Content{Kind: ContentHTML, Body: body}
}

// Embed returns embed content.
func Embed(body string) Content {
	return Content{Kind: ContentEmbed, Body: body}
}
