// internal/app/features/stations/types.go
package stations

import (
	"strings"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/domain/models"
)

// stationInput is the create and update body.
type stationInput struct {
	StationCode string                `json:"stationCode"`
	StationName string                `json:"stationName"`
	Address     models.StationAddress `json:"address"`
	Contact     models.StationContact `json:"contact"`
	InCharge    string                `json:"inCharge"`
}

const (
	maxCodeLength = 20
	maxNameLength = 100
)

func (in stationInput) validate() error {
	var v apierr.ValidationError
	code := normalize.StationCode(in.StationCode)
	switch {
	case code == "":
		v.Add("stationCode", "Station code is required")
	case len(code) > maxCodeLength:
		v.Add("stationCode", "Station code is too long")
	}
	name := normalize.Name(in.StationName)
	switch {
	case name == "":
		v.Add("stationName", "Station name is required")
	case len([]rune(name)) > maxNameLength:
		v.Add("stationName", "Station name is too long")
	}
	if e := strings.TrimSpace(in.Contact.Email); e != "" && !inputval.IsValidEmail(normalize.Email(e)) {
		v.Add("contact.email", "A valid email is required")
	}
	return v.Err()
}

func (in stationInput) toModel() models.Station {
	return models.Station{
		StationCode: in.StationCode,
		StationName: in.StationName,
		Address: models.StationAddress{
			Street:  strings.TrimSpace(in.Address.Street),
			City:    strings.TrimSpace(in.Address.City),
			State:   strings.TrimSpace(in.Address.State),
			ZipCode: strings.TrimSpace(in.Address.ZipCode),
		},
		Contact: models.StationContact{
			Phone: strings.TrimSpace(in.Contact.Phone),
			Email: in.Contact.Email,
		},
		InCharge: in.InCharge,
	}
}
