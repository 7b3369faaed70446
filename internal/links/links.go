// Package links builds the outbound URLs a show page needs: the archive.org
// player embed, the Relisten show page, and share intents.
package links

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	twitterIntentURL = "https://twitter.com/intent/tweet"
	facebookShareURL = "https://www.facebook.com/sharer/sharer.php"
)

// Builder holds the base URLs links are built from.
type Builder struct {
	SiteBaseURL     string // public URL of this site, used for share links
	EmbedBaseURL    string // e.g. https://archive.org/embed
	RelistenSiteURL string // e.g. https://relisten.net/grateful-dead
}

// Embed returns the archive.org player URL for a source identifier.
func (b Builder) Embed(identifier string) string {
	if identifier == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s?playlist=1", strings.TrimRight(b.EmbedBaseURL, "/"), url.PathEscape(identifier))
}

// Relisten returns the Relisten page for a show date: 1977-05-08 -> .../1977/05/08.
func (b Builder) Relisten(showDate string) string {
	return strings.TrimRight(b.RelistenSiteURL, "/") + "/" + strings.ReplaceAll(showDate, "-", "/")
}

// Page returns the canonical URL of a featured date on this site.
func (b Builder) Page(featuredDate string) string {
	return strings.TrimRight(b.SiteBaseURL, "/") + "/" + featuredDate
}

// Share holds the share intents for one page.
type Share struct {
	Text     string `json:"text"`
	PageURL  string `json:"pageUrl"`
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
}

// ShareText is the message posted alongside a shared page.
func ShareText(venue, location, showDate string) string {
	return fmt.Sprintf("Today's Dead show: %s, %s — %s", venue, location, showDate)
}

// Share builds share intents for a featured date.
func (b Builder) Share(featuredDate, venue, location, showDate string) Share {
	pageURL := b.Page(featuredDate)
	text := ShareText(venue, location, showDate)
	return Share{
		Text:     text,
		PageURL:  pageURL,
		Twitter:  twitterIntentURL + "?" + url.Values{"text": {text}, "url": {pageURL}}.Encode(),
		Facebook: facebookShareURL + "?" + url.Values{"u": {pageURL}}.Encode(),
	}
}
