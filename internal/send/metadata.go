// ABOUTME: Decodes the open search metadata response into reconcile.Metadata
// ABOUTME: Accepts both the flat layout and the metaData/image wrapped layout

package send

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/2389/coven-chat/internal/reconcile"
	"github.com/2389/coven-chat/internal/store"
)

// ErrInvalidMetadata is returned for metadata bodies that are not JSON.
var ErrInvalidMetadata = errors.New("invalid metadata response")

// Each list is read from the first path present in the body.
var (
	organicPaths = []string{"organic", "metaData.organic"}
	relatedPaths = []string{"relatedSearches", "metaData.relatedSearches"}
	imagePaths   = []string{"images.images", "image.images"}
	newsPaths    = []string{"news.images"}
)

// DecodeMetadata extracts citations, related searches, images and news.
// Missing lists decode as empty, which leaves the stored ones in place.
func DecodeMetadata(data []byte) (reconcile.Metadata, error) {
	if !gjson.ValidBytes(data) {
		return reconcile.Metadata{}, ErrInvalidMetadata
	}
	root := gjson.ParseBytes(data)

	var meta reconcile.Metadata
	firstArray(root, organicPaths).ForEach(func(_, v gjson.Result) bool {
		meta.Organic = append(meta.Organic, store.Source{
			Link:     v.Get("link").String(),
			Snippet:  v.Get("snippet").String(),
			Title:    v.Get("title").String(),
			Position: int(v.Get("position").Int()),
		})
		return true
	})
	firstArray(root, relatedPaths).ForEach(func(_, v gjson.Result) bool {
		meta.RelatedSearches = append(meta.RelatedSearches, store.RelatedSearch{
			Query: v.Get("query").String(),
		})
		return true
	})
	meta.Images = mediaItems(firstArray(root, imagePaths))
	meta.News = mediaItems(firstArray(root, newsPaths))

	return meta, nil
}

func firstArray(root gjson.Result, paths []string) gjson.Result {
	for _, p := range paths {
		if v := root.Get(p); v.IsArray() {
			return v
		}
	}
	return gjson.Result{}
}

func mediaItems(list gjson.Result) []store.MediaItem {
	var items []store.MediaItem
	list.ForEach(func(_, v gjson.Result) bool {
		items = append(items, store.MediaItem{
			Title:    v.Get("title").String(),
			Link:     v.Get("link").String(),
			ImageURL: v.Get("imageUrl").String(),
			Source:   v.Get("source").String(),
			Snippet:  v.Get("snippet").String(),
			Date:     v.Get("date").String(),
			Position: int(v.Get("position").Int()),
		})
		return true
	})
	return items
}
