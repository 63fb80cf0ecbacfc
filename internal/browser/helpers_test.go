package browser

import (
	"context"
	"errors"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/query"
)

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) SelectProfiles(context.Context, query.Query) ([]models.Profile, error) {
	return nil, errStoreDown
}

func (failingStore) SelectGroups(context.Context, query.Query) ([]models.Group, error) {
	return nil, errStoreDown
}

func (failingStore) SelectLocations(context.Context, query.Query) ([]models.Location, error) {
	return nil, errStoreDown
}

func (failingStore) Distinct(context.Context, query.Query, string) ([]string, error) {
	return nil, errStoreDown
}

func (failingStore) CreateProfile(context.Context, *models.Profile) error {
	return errStoreDown
}

func (failingStore) Ping(context.Context) error {
	return errStoreDown
}
