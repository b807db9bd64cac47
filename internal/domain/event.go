package domain

type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Image       string `json:"image"`
}

// EventInput is the payload for creating or updating an event
type EventInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Location    string `json:"location" validate:"required"`
	Image       string `json:"image" validate:"required"`
}

func (i EventInput) WithID(id string) Event {
	return Event{
		ID:          id,
		Title:       i.Title,
		Description: i.Description,
		Date:        i.Date,
		Time:        i.Time,
		Location:    i.Location,
		Image:       i.Image,
	}
}

func (e Event) Input() EventInput {
	return EventInput{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Image:       e.Image,
	}
}

type Image struct {
	Path    string `json:"path"`
	Caption string `json:"caption"`
}

// EventFilter narrows down an event listing. Zero values are not sent
type EventFilter struct {
	Search string
	Max    int
}
