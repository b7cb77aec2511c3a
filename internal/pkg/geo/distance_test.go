package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	shibuya := Point{Lat: 35.6580, Lng: 139.7016}
	shinjuku := Point{Lat: 35.6896, Lng: 139.7006}

	assert.InDelta(t, 3514, DistanceMeters(shibuya, shinjuku), 20)
	assert.Zero(t, DistanceMeters(shibuya, shibuya))
	assert.InDelta(t, DistanceMeters(shibuya, shinjuku), DistanceMeters(shinjuku, shibuya), 1e-9)
}

func TestPointOf(t *testing.T) {
	lat, lng := 1.5, 2.5

	assert.Nil(t, PointOf(nil, &lng))
	assert.Nil(t, PointOf(&lat, nil))
	assert.Equal(t, &Point{Lat: 1.5, Lng: 2.5}, PointOf(&lat, &lng))
}
