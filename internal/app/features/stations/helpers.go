// internal/app/features/stations/helpers.go
package stations

import (
	"errors"
	"net/http"

	stationstore "github.com/dalemusser/crms/internal/app/store/stations"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stationID parses {id}; malformed ids read as a missing station.
func stationID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apierr.ErrNotFound
	}
	return id, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, stationstore.ErrNotFound):
		return apierr.ErrNotFound
	case errors.Is(err, stationstore.ErrDuplicateCode):
		return apierr.Duplicate("stationCode")
	}
	return err
}
