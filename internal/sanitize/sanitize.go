// Package sanitize cleans user-supplied content before it is stored.
//
// Plain text is kept verbatim apart from control characters and is escaped by
// whoever renders it. HTML is reduced to an allow-listed set of formatting
// tags. Embeds must be a single iframe pointing at an allow-listed https host.
package sanitize

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mmynk/weddingcard/internal/models"
)

var (
	ErrUnsafeEmbed   = errors.New("embed must be a single iframe from an allowed https host")
	ErrUnknownKind   = errors.New("unknown content kind")
	ErrMalformedHTML = errors.New("malformed html")
)

// DefaultEmbedHosts are the iframe hosts accepted when no list is configured.
var DefaultEmbedHosts = []string{
	"www.youtube.com",
	"www.youtube-nocookie.com",
	"player.vimeo.com",
	"www.google.com",
	"maps.google.com",
	"open.spotify.com",
	"www.instagram.com",
	"w.soundcloud.com",
}

// allowedTags maps formatting tags to the attributes they may keep.
var allowedTags = map[atom.Atom][]string{
	atom.P:          nil,
	atom.Br:         nil,
	atom.B:          nil,
	atom.Strong:     nil,
	atom.I:          nil,
	atom.Em:         nil,
	atom.U:          nil,
	atom.S:          nil,
	atom.Ul:         nil,
	atom.Ol:         nil,
	atom.Li:         nil,
	atom.Blockquote: nil,
	atom.H1:         nil,
	atom.H2:         nil,
	atom.H3:         nil,
	atom.H4:         nil,
	atom.Span:       nil,
	atom.A:          {"href"},
}

// droppedWithContent lose their text as well as their tags.
var droppedWithContent = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Textarea: true,
	atom.Title:    true,
}

var iframeAttrs = map[string]bool{
	"src":             true,
	"width":           true,
	"height":          true,
	"title":           true,
	"allow":           true,
	"allowfullscreen": true,
	"frameborder":     true,
	"loading":         true,
	"referrerpolicy":  true,
}

// Sanitizer cleans Content values according to their kind.
type Sanitizer struct {
	embedHosts map[string]bool
}

// New creates a Sanitizer accepting iframes from hosts. An empty list uses
// DefaultEmbedHosts.
func New(hosts []string) *Sanitizer {
	if len(hosts) == 0 {
		hosts = DefaultEmbedHosts
	}
	s := &Sanitizer{embedHosts: make(map[string]bool, len(hosts))}
	for _, h := range hosts {
		s.embedHosts[strings.ToLower(strings.TrimSpace(h))] = true
	}
	return s
}

// Content returns a cleaned copy of c.
func (s *Sanitizer) Content(c models.Content) (models.Content, error) {
	switch c.Kind {
	case models.ContentPlain:
		return models.Content{Kind: c.Kind, Body: stripControl(c.Body)}, nil
	case models.ContentHTML:
		body, err := cleanHTML(c.Body)
		if err != nil {
			return models.Content{}, err
		}
		return models.Content{Kind: c.Kind, Body: body}, nil
	case models.ContentEmbed:
		body, err := s.cleanEmbed(c.Body)
		if err != nil {
			return models.Content{}, err
		}
		return models.Content{Kind: c.Kind, Body: body}, nil
	default:
		return models.Content{}, fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
}

// Invitation cleans every content field of inv in place.
func (s *Sanitizer) Invitation(inv *models.Invitation) error {
	var err error
	if inv.Message, err = s.Content(inv.Message); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	if err := s.optional(&inv.OpeningText); err != nil {
		return fmt.Errorf("opening_text: %w", err)
	}
	if err := s.optional(&inv.InvitationText); err != nil {
		return fmt.Errorf("invitation_text: %w", err)
	}
	if err := s.optional(&inv.MapEmbed); err != nil {
		return fmt.Errorf("map_embed: %w", err)
	}
	for i := range inv.SocialLinks {
		if err := s.optional(&inv.SocialLinks[i].EmbedCode); err != nil {
			return fmt.Errorf("social_links[%d].embed_code: %w", i, err)
		}
	}
	return nil
}

func (s *Sanitizer) optional(c **models.Content) error {
	if *c == nil {
		return nil
	}
	clean, err := s.Content(**c)
	if err != nil {
		return err
	}
	*c = &clean
	return nil
}

func cleanHTML(in string) (string, error) {
	var out strings.Builder
	z := html.NewTokenizer(strings.NewReader(in))
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return out.String(), nil
			}
			return "", fmt.Errorf("%w: %v", ErrMalformedHTML, z.Err())

		case html.TextToken:
			if skipDepth == 0 {
				out.WriteString(html.EscapeString(string(z.Text())))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if droppedWithContent[tok.DataAtom] {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			attrs, ok := allowedTags[tok.DataAtom]
			if !ok {
				continue
			}
			writeStartTag(&out, tok, attrs)

		case html.EndTagToken:
			tok := z.Token()
			if droppedWithContent[tok.DataAtom] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if _, ok := allowedTags[tok.DataAtom]; ok && tok.DataAtom != atom.Br {
				out.WriteString("</" + tok.Data + ">")
			}
		}
	}
}

func writeStartTag(out *strings.Builder, tok html.Token, allowed []string) {
	out.WriteString("<" + tok.Data)
	for _, a := range tok.Attr {
		if a.Namespace != "" || !contains(allowed, a.Key) {
			continue
		}
		if a.Key == "href" {
			href, ok := safeHref(a.Val)
			if !ok {
				continue
			}
			a.Val = href
		}
		out.WriteString(" " + a.Key + `="` + html.EscapeString(a.Val) + `"`)
	}
	if tok.DataAtom == atom.A {
		out.WriteString(` rel="noopener noreferrer"`)
	}
	out.WriteString(">")
}

func safeHref(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return u.String(), true
	}
	return "", false
}

func (s *Sanitizer) cleanEmbed(in string) (string, error) {
	var iframe *html.Token
	z := html.NewTokenizer(strings.NewReader(in))

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return "", fmt.Errorf("%w: %v", ErrMalformedHTML, z.Err())
			}
			if iframe == nil {
				return "", ErrUnsafeEmbed
			}
			return s.renderIframe(*iframe)

		case html.TextToken:
			if strings.TrimSpace(string(z.Text())) != "" {
				return "", ErrUnsafeEmbed
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Iframe || iframe != nil {
				return "", ErrUnsafeEmbed
			}
			iframe = &tok

		case html.EndTagToken:
			if z.Token().DataAtom != atom.Iframe {
				return "", ErrUnsafeEmbed
			}

		case html.CommentToken, html.DoctypeToken:
			return "", ErrUnsafeEmbed
		}
	}
}

func (s *Sanitizer) renderIframe(tok html.Token) (string, error) {
	var src string
	for _, a := range tok.Attr {
		if a.Key == "src" {
			src = a.Val
		}
	}
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil || u.Scheme != "https" || !s.embedHosts[strings.ToLower(u.Hostname())] {
		return "", ErrUnsafeEmbed
	}

	var out strings.Builder
	out.WriteString("<iframe")
	for _, a := range tok.Attr {
		if a.Namespace != "" || !iframeAttrs[a.Key] {
			continue
		}
		if a.Key == "src" {
			a.Val = u.String()
		}
		out.WriteString(" " + a.Key + `="` + html.EscapeString(a.Val) + `"`)
	}
	out.WriteString("></iframe>")
	return out.String(), nil
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
