package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"pitstop-service/internal/domain"
)

func TestNormalize_Placeholders(t *testing.T) {
	p := overpassFields.Normalize(gjson.Parse(`{"tags":{"name":"   ","description":""}}`))

	assert.Equal(t, domain.DefaultName, p.Name)
	assert.Equal(t, domain.DefaultDescription, p.Description)
	assert.Nil(t, p.Lat)
	assert.Nil(t, p.Lon)
	assert.False(t, p.Mappable())
	assert.Empty(t, p.ID)
}

func TestNormalize_FallbackPaths(t *testing.T) {
	p := overpassFields.Normalize(gjson.Parse(`{"center":{"lat":43.6,"lon":-116.2},"tags":{"operator":"Boise Parks","note":"seasonal"}}`))

	assert.Equal(t, "Boise Parks", p.Name)
	assert.Equal(t, "seasonal", p.Description)
	assert.True(t, p.Mappable())
}

func TestNormalize_NonNumericCoordinates(t *testing.T) {
	p := placesFields.Normalize(gjson.Parse(`{"name":"X","geometry":{"location":{"lat":"43.6","lng":null}}}`))

	assert.Equal(t, "X", p.Name)
	assert.Nil(t, p.Lat)
	assert.Nil(t, p.Lon)
}

func TestNormalize_OneCoordinateIsNotMappable(t *testing.T) {
	p := placesFields.Normalize(gjson.Parse(`{"geometry":{"location":{"lat":43.6}}}`))

	assert.NotNil(t, p.Lat)
	assert.Nil(t, p.Lon)
	assert.False(t, p.Mappable())
}
