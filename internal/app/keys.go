package app

import (
	"strconv"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/querycache"
)

const (
	eventsResource = "events"
	imagesResource = "event-images"
)

// EventsKey addresses every event query: listings, searches and details
func EventsKey() querycache.Key {
	return querycache.NewKey(eventsResource)
}

// ListKey addresses a plain listing, optionally capped by filter.Max
func ListKey(filter domain.EventFilter) querycache.Key {
	key := EventsKey()
	if filter.Max > 0 {
		key = key.WithParam("max", strconv.Itoa(filter.Max))
	}
	return key
}

// SearchKey always carries the term, so a search without one never shares a slot with a listing
func SearchKey(filter domain.EventFilter) querycache.Key {
	return ListKey(filter).WithParam("search", filter.Search)
}

func EventKey(id string) querycache.Key {
	return EventsKey().WithID(id)
}

// ImagesKey is kept outside EventsKey so event mutations don't refetch the image list
func ImagesKey() querycache.Key {
	return querycache.NewKey(imagesResource)
}
