package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilesToKm(t *testing.T) {
	tests := []struct {
		miles float64
		want  float64
	}{
		{100, 160.934},
		{50, 80.467},
		{2000, 3218.68},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MilesToKm(tt.miles))
	}
}

func TestDistanceMiles(t *testing.T) {
	la := Coordinate{Lat: 34.05, Lng: -118.25}
	sf := Coordinate{Lat: 37.7749, Lng: -122.4194}

	assert.InDelta(t, 0, DistanceMiles(la, la), 1e-9)
	assert.InDelta(t, 347, DistanceMiles(la, sf), 2)
	assert.InDelta(t, DistanceMiles(la, sf), DistanceMiles(sf, la), 1e-9)
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, Coordinate{Lat: 34.05, Lng: -118.25}.Valid())
	assert.False(t, Coordinate{Lat: 91, Lng: 0}.Valid())
	assert.False(t, Coordinate{Lat: 0, Lng: -181}.Valid())
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{1, ErrPermissionDenied},
		{2, ErrPositionUnavailable},
		{3, ErrTimeout},
		{99, ErrPositionUnavailable},
	}

	for _, tt := range tests {
		err := ErrorFromCode(tt.code)
		assert.True(t, errors.Is(err, tt.want))
		assert.NotEmpty(t, Message(err))
	}
	assert.Equal(t, 3, Code(ErrTimeout))
	assert.Equal(t, 0, Code(nil))
	assert.Empty(t, Message(nil))
}

func TestStatusTransitions(t *testing.T) {
	var s Status
	assert.Nil(t, s.Origin(true))

	s.Request()
	assert.Equal(t, Loading, s.State)
	assert.Nil(t, s.Origin(true))

	require.NoError(t, s.Resolve(Coordinate{Lat: 34.05, Lng: -118.25}))
	assert.Equal(t, Resolved, s.State)

	origin := s.Origin(true)
	require.NotNil(t, origin)
	assert.Equal(t, 34.05, origin.Lat)

	// Disabling keeps the coordinate but hides it from the search.
	assert.Nil(t, s.Origin(false))
	require.NotNil(t, s.Coord)
	assert.NotNil(t, s.Origin(true))
}

func TestStatusFailureKeepsCoordinate(t *testing.T) {
	var s Status
	require.NoError(t, s.Resolve(Coordinate{Lat: 40.7, Lng: -74}))

	s.Request()
	s.Fail(ErrTimeout)

	assert.Equal(t, Failed, s.State)
	assert.ErrorIs(t, s.Err, ErrTimeout)
	assert.NotNil(t, s.Coord)
	assert.Nil(t, s.Origin(true))
}

func TestStatusResolveInvalid(t *testing.T) {
	var s Status
	err := s.Resolve(Coordinate{Lat: 200, Lng: 0})
	assert.ErrorIs(t, err, ErrPositionUnavailable)
	assert.Equal(t, Failed, s.State)
}
