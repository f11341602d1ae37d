// internal/domain/models/station.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StationAddress struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty" json:"zipCode,omitempty"`
}

type StationContact struct {
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// Station is a police station. StationCode is stored uppercased and is
// what User.Station refers to.
type Station struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StationCode string             `bson:"station_code" json:"stationCode"`
	StationName string             `bson:"station_name" json:"stationName"`
	NameCI      string             `bson:"station_name_ci" json:"-"`
	Address     StationAddress     `bson:"address" json:"address"`
	Contact     StationContact     `bson:"contact" json:"contact"`
	InCharge    string             `bson:"in_charge,omitempty" json:"inCharge,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
