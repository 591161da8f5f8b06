package domain

import (
	"time"

	"github.com/google/uuid"
)

// MediaType tags a reward pack item for delivery classification.
type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

// Groupable reports whether the media kind can be bundled into a single
// grouped delivery. Everything else goes out one message per item.
func (m MediaType) Groupable() bool {
	return m == MediaPhoto || m == MediaVideo
}

// RewardPack is a named bundle of media delivered on rank-up.
// A pack exclusively owns its items; deleting the pack cascades.
type RewardPack struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PackItem is a single media entry inside a reward pack. FileID is the
// opaque transport identifier, UniqueID the de-duplication identifier.
type PackItem struct {
	ID        uuid.UUID `json:"id"`
	PackID    uuid.UUID `json:"pack_id"`
	FileID    string    `json:"file_id"`
	UniqueID  string    `json:"unique_id"`
	MediaType MediaType `json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
}

// SplitForDelivery partitions pack items into the grouped set (photos and
// videos, sent as one album) and the individual set (everything else).
func SplitForDelivery(items []PackItem) (grouped, individual []PackItem) {
	for _, item := range items {
		if item.MediaType.Groupable() {
			grouped = append(grouped, item)
		} else {
			individual = append(individual, item)
		}
	}
	return grouped, individual
}
