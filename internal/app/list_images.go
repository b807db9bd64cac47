package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/query"
)

type ListImages func(ctx context.Context) ([]domain.Image, error)

type imageLister interface {
	ListImages(ctx context.Context) ([]domain.Image, error)
}

func BuildListImages(provider imageLister) ListImages {
	return func(ctx context.Context) ([]domain.Image, error) {
		images, err := provider.ListImages(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list images: %w", err)
		}
		return images, nil
	}
}

func ImagesQuery(listImages ListImages, staleTime time.Duration) query.Options[[]domain.Image] {
	return query.Options[[]domain.Image]{
		Key:       ImagesKey(),
		Fetch:     listImages,
		StaleTime: staleTime,
	}
}
