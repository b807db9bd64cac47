package ports

import (
	"context"
	"fmt"

	"github.com/Amund211/eventlight/internal/app"
	"github.com/Amund211/eventlight/internal/domain"
	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/Amund211/eventlight/internal/query"
)

// NewEvent submits input as a new event. On success the event list is shown
//
// A failed submission is kept, and fields missing from the next submission are taken from it.
func (v *Views) NewEvent(ctx context.Context, input domain.EventInput) error {
	input = v.withDraft(input)

	v.header("New event")
	fmt.Fprintln(v.out, "Submitting...")

	_, err := v.createEvent.Mutate(ctx, input)
	if err == nil {
		return nil
	}
	if e.IsAborted(err) {
		return err
	}

	v.setDraft(input)
	renderEventForm(v.out, input)
	renderErrorBlock(v.out, "Failed to create event", err, mutationFallback(err))
	return ErrViewFailed
}

// EditEvent loads the event, applies the non-empty fields of changes and saves it.
// On success the updated event is shown
func (v *Views) EditEvent(ctx context.Context, id string, changes domain.EventInput) error {
	details := query.Mount(ctx, v.store, app.EventQuery(v.getEvent, id, app.EditEventStaleTime))
	defer details.Unmount()

	v.header("Edit event")
	state, err := awaitQuery(ctx, v, details)
	if err != nil {
		return err
	}
	if state.IsError {
		renderErrorBlock(v.out, "An error occurred", state.Error, "Failed to load edit details!")
		return ErrViewFailed
	}

	input := mergeInput(state.Data.Input(), changes)
	fmt.Fprintln(v.out, "Updating...")

	_, err = v.updateEvent.Mutate(ctx, app.UpdateEventInput{ID: id, Input: input})
	if err == nil {
		return nil
	}
	if e.IsAborted(err) {
		return err
	}

	renderEventForm(v.out, input)
	renderErrorBlock(v.out, "Failed to update event", err, mutationFallback(err))
	return ErrViewFailed
}

// DeleteEvent deletes the event. On success the event list is shown
func (v *Views) DeleteEvent(ctx context.Context, id string) error {
	v.header("Delete event")
	fmt.Fprintln(v.out, "Deleting...")

	_, err := v.deleteEvent.Mutate(ctx, id)
	if err == nil {
		return nil
	}
	if e.IsAborted(err) {
		return err
	}

	renderErrorBlock(v.out, "An error occurred", err, "Failed to delete event!")
	return ErrViewFailed
}

// Images lists the images an event can use
func (v *Views) Images(ctx context.Context, format Format) error {
	images := query.Mount(ctx, v.store, app.ImagesQuery(v.listImages, v.staleTime))
	defer images.Unmount()

	if format != FormatText {
		return awaitData(ctx, v, images, format)
	}

	v.header("Images")
	state, err := awaitQuery(ctx, v, images)
	if err != nil {
		return err
	}
	if state.IsError {
		renderErrorBlock(v.out, "An error occurred", state.Error, "Failed to fetch images.")
		return ErrViewFailed
	}
	renderImages(v.out, state.Data, v.imageBaseURL)
	return nil
}

// Validation errors never reach the server, so there is no server message to show for them
func mutationFallback(err error) string {
	if validationErr := domain.ValidationMessage(err); validationErr != "" {
		return validationErr
	}
	return "Try again later!"
}
