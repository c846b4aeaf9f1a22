package profile

import (
	"context"
	"fmt"
	"sync"

	"canchapp/internal/models"
)

func (s *Service) ListFavorites(ctx context.Context) ([]models.Court, error) {
	var courts []models.Court
	if err := s.api.Get(ctx, "/favoritos", &courts); err != nil {
		return nil, err
	}
	return courts, nil
}

func (s *Service) AddFavorite(ctx context.Context, courtID int) error {
	return s.api.Post(ctx, "/favoritos", models.AddFavoriteRequest{CourtID: courtID}, nil)
}

func (s *Service) RemoveFavorite(ctx context.Context, courtID int) error {
	return s.api.Delete(ctx, fmt.Sprintf("/favoritos/%d", courtID), nil)
}

// FavoriteSet is the local view of the user's favorites. Changes are applied
// locally first and reverted when the backend refuses them. Safe for
// concurrent use.
type FavoriteSet struct {
	svc *Service

	mu     sync.RWMutex
	ids    map[int]bool
	courts []models.Court
}

// Favorites loads the favorite list into a FavoriteSet.
func (s *Service) Favorites(ctx context.Context) (*FavoriteSet, error) {
	courts, err := s.ListFavorites(ctx)
	if err != nil {
		return nil, err
	}
	f := &FavoriteSet{svc: s, ids: make(map[int]bool, len(courts)), courts: courts}
	for _, c := range courts {
		f.ids[c.ID] = true
	}
	return f, nil
}

func (f *FavoriteSet) Contains(courtID int) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ids[courtID]
}

// Courts returns the favorite courts as listed, minus local removals.
func (f *FavoriteSet) Courts() []models.Court {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Court, len(f.courts))
	copy(out, f.courts)
	return out
}

// Toggle flips courtID and returns the new state. On backend failure the
// flip is undone and the error returned.
func (f *FavoriteSet) Toggle(ctx context.Context, courtID int) (bool, error) {
	f.mu.Lock()
	was := f.ids[courtID]
	f.ids[courtID] = !was
	f.mu.Unlock()

	var err error
	if was {
		err = f.svc.RemoveFavorite(ctx, courtID)
	} else {
		err = f.svc.AddFavorite(ctx, courtID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.ids[courtID] = was
		f.svc.logger.Warn("Favorite toggle reverted", map[string]interface{}{"court_id": courtID, "error": err.Error()})
		return was, err
	}
	if was {
		f.dropCourt(courtID)
	}
	return !was, nil
}

// Remove deletes courtID from the favorites and patches the local list
// without refetching.
func (f *FavoriteSet) Remove(ctx context.Context, courtID int) error {
	if err := f.svc.RemoveFavorite(ctx, courtID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, courtID)
	f.dropCourt(courtID)
	return nil
}

func (f *FavoriteSet) dropCourt(courtID int) {
	kept := f.courts[:0]
	for _, c := range f.courts {
		if c.ID != courtID {
			kept = append(kept, c)
		}
	}
	f.courts = kept
}
