package repository

import (
	"testing"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestByID(t *testing.T) {
	selector := byID(model.DepartureID("abc"))

	assert.Equal(t, bson.D{{Key: "_id", Value: model.DepartureID("abc")}}, selector)
}

func TestByOwner(t *testing.T) {
	selector := byOwner("GB123456789000")

	assert.Equal(t, bson.D{{Key: "eoriNumber", Value: "GB123456789000"}}, selector)
}

func TestByIDAndMessageIndex(t *testing.T) {
	selector := byIDAndMessageIndex(model.DepartureID("abc"), 7)

	assert.Equal(t, bson.D{
		{Key: "_id", Value: model.DepartureID("abc")},
		{Key: "messages.7", Value: bson.D{{Key: "$exists", Value: true}}},
	}, selector)
}
