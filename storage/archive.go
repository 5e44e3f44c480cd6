package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

const archiveContentType = "application/json"

// ArchiveKey is the object key of a tournament's final bracket snapshot.
func ArchiveKey(tournamentID int) string {
	return fmt.Sprintf("brackets/tournament-%d.json", tournamentID)
}

// BracketArchive writes final bracket snapshots to object storage.
type BracketArchive struct {
	uploader ObjectUploader
}

func NewBracketArchive(uploader ObjectUploader) *BracketArchive {
	return &BracketArchive{uploader: uploader}
}

func (a *BracketArchive) Archive(ctx context.Context, view *models.BracketView) (*UploadResult, error) {
	if view == nil {
		return nil, errors.New("nil bracket view")
	}
	payload, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode bracket of tournament %d: %w", view.TournamentID, err)
	}
	return a.uploader.Upload(ctx, ArchiveKey(view.TournamentID), archiveContentType, bytes.NewReader(payload))
}
