package feed

import (
	"encoding/xml"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yamori/gleaner/pkg/domain/model"
	"github.com/yamori/gleaner/pkg/utils/htmltext"
)

type rssDocument struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

// Parse decodes an RSS payload into items tagged with category. The item
// description is reduced to plain text. A feed without items yields an
// empty slice.
func Parse(data []byte, category string) ([]model.Item, error) {
	var doc rssDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse RSS payload", goerr.V("category", category))
	}

	items := make([]model.Item, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		items = append(items, model.Item{
			ID:          strings.TrimSpace(it.GUID),
			Title:       strings.TrimSpace(it.Title),
			Description: htmltext.Strip(it.Description),
			Category:    category,
			PubDate:     strings.TrimSpace(it.PubDate),
		})
	}

	return items, nil
}
