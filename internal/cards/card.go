package cards

import (
	"net/url"
	"path"
	"strings"

	"meusensia.com.br/sensia-web/internal/listing"
	"meusensia.com.br/sensia-web/internal/taxonomy"
)

const imageWidth = "750"

// Card is the view model of one listing card.
type Card struct {
	Path         string
	Image        Picture
	Availability string
	ListingName  string
	Location     string
	Bedrooms     string
	Area         string
	Highlight    string
}

// Picture holds the responsive sources of a card image.
type Picture struct {
	WebP     string
	Fallback string
	Alt      string
}

// Build derives the card for rec. Tag fields show the taxonomy title of
// their first tag, or the raw tag when the taxonomy does not know it. An
// explicit card status wins over the availability tag.
func Build(rec listing.Record, tax *taxonomy.Map) Card {
	c := Card{
		Path:        rec.Path,
		ListingName: rec.ListingName,
		Location:    tax.FirstTitle(rec.LocationCard),
		Bedrooms:    tax.FirstTitle(rec.CardQuartos),
		Area:        strings.TrimSpace(rec.CardArea),
		Highlight:   strings.TrimSpace(rec.CardHighlight),
		Image:       optimizedPicture(rec.Image, rec.ListingName),
	}
	if len(rec.CardStatus) > 0 {
		c.Availability = strings.Join(rec.CardStatus, ", ")
	} else {
		c.Availability = tax.FirstTitle(rec.Availability)
	}
	return c
}

// optimizedPicture rewrites an image URL to the media pipeline's resized
// variants. The query string of src is replaced.
func optimizedPicture(src, alt string) Picture {
	src = strings.TrimSpace(src)
	if src == "" {
		return Picture{Alt: alt}
	}
	u, err := url.Parse(src)
	if err != nil {
		return Picture{Fallback: src, Alt: alt}
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if ext == "" || ext == "jpg" {
		ext = "jpeg"
	}
	variant := func(format string) string {
		v := *u
		q := url.Values{}
		q.Set("width", imageWidth)
		q.Set("format", format)
		q.Set("optimize", "medium")
		v.RawQuery = q.Encode()
		return v.String()
	}
	return Picture{WebP: variant("webply"), Fallback: variant(ext), Alt: alt}
}
