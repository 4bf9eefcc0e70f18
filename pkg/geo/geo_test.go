package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	riyadh = Point{Lat: 24.7136, Lng: 46.6753}
	jeddah = Point{Lat: 21.4858, Lng: 39.1925}
	dammam = Point{Lat: 26.4207, Lng: 50.0888}
)

func TestDistance_RiyadhToJeddah(t *testing.T) {
	d := Distance(riyadh, jeddah)
	assert.InDelta(t, 850, d, 50)
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{riyadh, jeddah},
		{jeddah, dammam},
		{{Lat: -33.8688, Lng: 151.2093}, {Lat: 51.5074, Lng: -0.1278}},
		{{Lat: 0, Lng: 179.9}, {Lat: 0, Lng: -179.9}},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]))
	}
}

func TestDistance_ZeroOnIdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, Distance(riyadh, riyadh))
	assert.Equal(t, 0.0, Distance(Point{}, Point{}))
}

func TestDistance_Antipodal(t *testing.T) {
	d := Distance(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 180})
	assert.InDelta(t, 20015, d, 1)
}

func TestRankByDistance(t *testing.T) {
	points := []Point{jeddah, dammam, riyadh}

	ranked := RankByDistance(riyadh, points, 0)
	assert.Len(t, ranked, 3)
	assert.Equal(t, 2, ranked[0].Index)
	assert.Equal(t, 1, ranked[1].Index)
	assert.Equal(t, 0, ranked[2].Index)

	within := RankByDistance(riyadh, points, 500)
	assert.Len(t, within, 2)
	assert.Equal(t, 2, within[0].Index)
	assert.Equal(t, 1, within[1].Index)
}
