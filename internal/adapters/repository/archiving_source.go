package repository

import (
	"context"
	"errors"
	"log"

	"github.com/mna11/ReadMe3D/internal/core/domain"
)

var _ domain.ActivitySource = (*ArchivingSource)(nil)

// ArchivingSource stores every successful fetch of primary and serves the
// latest stored snapshot while primary is unavailable.
type ArchivingSource struct {
	primary domain.ActivitySource
	store   domain.SnapshotRepository
}

func NewArchivingSource(primary domain.ActivitySource, store domain.SnapshotRepository) *ArchivingSource {
	return &ArchivingSource{primary: primary, store: store}
}

func (s *ArchivingSource) FetchCalendar(ctx context.Context, username string) (*domain.Calendar, error) {
	cal, err := s.primary.FetchCalendar(ctx, username)
	if err == nil {
		if saveErr := s.store.Save(ctx, cal); saveErr != nil && !errors.Is(saveErr, domain.ErrSnapshotConflict) {
			log.Printf("[SOURCE] Failed to archive calendar of %s: %v", username, saveErr)
		}
		return cal, nil
	}

	if !errors.Is(err, domain.ErrSourceUnavailable) {
		return nil, err
	}

	snap, snapErr := s.store.Latest(ctx, username)
	if snapErr != nil {
		if !errors.Is(snapErr, domain.ErrSnapshotNotFound) {
			log.Printf("[SOURCE] Snapshot lookup for %s failed: %v", username, snapErr)
		}
		return nil, err
	}

	log.Printf("[SOURCE] Primary unavailable, serving snapshot of %s from %s", username, snap.FetchedAt.Format("2006-01-02 15:04"))
	return snap, nil
}
