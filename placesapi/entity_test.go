package placesapi

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHandle = "SG_abcdefghijklmnopqrstuv"

func TestNewFeatureDefaults(t *testing.T) {
	f, err := NewFeature(LatLon(11.0, 10.0), WithProperties(map[string]interface{}{RecordIDKey: "my_id"}))
	require.NoError(t, err)

	id, ok := f.Properties.RecordID()
	assert.True(t, ok)
	assert.Equal(t, "my_id", id)
	assert.Equal(t, "", f.ID)
	assert.Equal(t, GeomPoint, f.GeomType)
	assert.Equal(t, 11.0, f.Coordinates.(Pair).Lat())
	assert.Equal(t, 10.0, f.Coordinates.(Pair).Lon())
}

func TestNewFeatureHandle(t *testing.T) {
	f, err := NewFeature(LatLon(11.0, 10.0), WithHandle(testHandle))
	require.NoError(t, err)
	assert.Equal(t, testHandle, f.ID)
	_, ok := f.Properties.RecordID()
	assert.False(t, ok)

	f, err = NewFeature(LatLon(11.0, 10.0), WithHandle(testHandle), WithProperties(map[string]interface{}{RecordIDKey: "my_id"}))
	require.NoError(t, err)
	assert.Equal(t, testHandle, f.ID)
	id, _ := f.Properties.RecordID()
	assert.Equal(t, "my_id", id)

	_, err = NewFeature(LatLon(11.0, 10.0), WithHandle("SG_tooshort"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestIsValidHandle(t *testing.T) {
	valid := []string{
		testHandle,
		"SG_4H2GqJDZrc0ZAjKGR8qM4D",
		"SG_4H2GqJDZrc0ZAjKGR8qM4D_37.771007_-122.412694",
		"SG_4H2GqJDZrc0ZAjKGR8qM4D_37_-122@1291736505",
		"SG_4H2GqJDZrc0ZAjKGR8qM4D@12",
	}
	for _, h := range valid {
		assert.True(t, IsValidHandle(h), h)
	}

	invalid := []string{
		"",
		"abcdefghijklmnopqrstuvwyz",
		"SG_abcdefghijklmnopqrstu",
		"SG_abcdefghijklmnopqrstuvw",
		"SG_abcdefghijklmnopqrstuv_37.7",
		"SG_abcdefghijklmnopqrstuv@",
		"SG_abcdefghijklmnopqrstuv trailing",
		"xSG_abcdefghijklmnopqrstuv",
	}
	for _, h := range invalid {
		assert.False(t, IsValidHandle(h), h)
	}
}

func TestNewFeatureRecordIDMustBeString(t *testing.T) {
	_, err := NewFeature(LatLon(1, 2), WithProperties(map[string]interface{}{RecordIDKey: 42.0}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))

	f, err := NewFeature(LatLon(1, 2), WithProperties(map[string]interface{}{RecordIDKey: nil}))
	require.NoError(t, err)
	_, ok := f.Properties.RecordID()
	assert.False(t, ok)
	assert.Contains(t, f.Properties, RecordIDKey)
}

func TestNewFeatureRejectsOutOfBounds(t *testing.T) {
	for _, p := range []Pair{LatLon(91.0, 10.1), LatLon(10.1, 180.1)} {
		_, err := NewFeature(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutOfBounds))
	}

	_, err := NewFeature(Polygon(Ring(LatLon(1, 2), LatLon(1, 181))), WithGeomType(GeomPolygon))
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestNewFeatureGeometryShape(t *testing.T) {
	_, err := NewFeature(Ring(LatLon(1, 2)))
	assert.True(t, errors.Is(err, ErrMalformed), "Point with a ring")

	_, err = NewFeature(LatLon(1, 2), WithGeomType(GeomPolygon))
	assert.True(t, errors.Is(err, ErrMalformed), "Polygon with a pair")

	_, err = NewFeature(Ring(LatLon(1, 2), LatLon(3, 4)), WithGeomType(GeomPolygon))
	assert.True(t, errors.Is(err, ErrMalformed), "Polygon without rings")

	_, err = NewFeature(LatLon(1, 2), WithGeomType("LineString"))
	assert.True(t, errors.Is(err, ErrMalformed), "unknown type")

	_, err = NewFeature(nil)
	assert.True(t, errors.Is(err, ErrMalformed), "nil coordinates")

	f, err := NewFeature(Polygon(Ring(LatLon(1, 2), LatLon(3, 4))), WithGeomType(GeomPolygon))
	require.NoError(t, err)
	assert.Len(t, f.Coordinates.(Nested), 1)

	multi := Nested{
		Polygon(Ring(LatLon(1, 2), LatLon(3, 4), LatLon(1, 2))),
		Polygon(Ring(LatLon(-1, -2), LatLon(-3, -4), LatLon(-1, -2))),
	}
	f, err = NewFeature(multi, WithGeomType(GeomMultiPolygon))
	require.NoError(t, err)
	assert.Equal(t, multi, f.Coordinates)
}

func TestNewFeatureCreated(t *testing.T) {
	original := now
	now = func() time.Time { return time.Unix(1291736505, 0) }
	t.Cleanup(func() { now = original })

	f, err := NewFeature(LatLon(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(1291736505), f.Created)

	f, err = NewFeature(LatLon(1, 2), WithCreated(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), f.Created)
}

func TestNewFeatureDoesNotAliasInputs(t *testing.T) {
	nested := map[string]interface{}{"level": "deep"}
	props := map[string]interface{}{"tags": []interface{}{"a"}, "nested": nested}
	ring := Ring(LatLon(1, 2), LatLon(3, 4))

	f, err := NewFeature(Polygon(ring), WithGeomType(GeomPolygon), WithProperties(props))
	require.NoError(t, err)

	props["extra"] = true
	nested["level"] = "changed"
	ring[0] = LatLon(50, 50)

	assert.NotContains(t, f.Properties, "extra")
	assert.Equal(t, "deep", f.Properties["nested"].(map[string]interface{})["level"])
	assert.Equal(t, LatLon(1, 2), f.Coordinates.(Nested)[0].(Nested)[0])
}

func TestNewRecordID(t *testing.T) {
	a, b := NewRecordID(), NewRecordID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)

	f, err := NewFeature(LatLon(1, 2), WithProperties(map[string]interface{}{RecordIDKey: a}))
	require.NoError(t, err)
	id, _ := f.Properties.RecordID()
	assert.Equal(t, a, id)
}
