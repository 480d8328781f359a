package openweather

import (
	"context"
	"errors"
	"net/http"
	"testing"

	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"
	"github.com/matryer/is"
)

func TestCurrentWeather(t *testing.T) {
	is := is.New(t)

	geo := testutils.NewMockServiceThat(
		testutils.Expects(
			is,
			expects.RequestMethod(http.MethodGet),
			expects.RequestPath("/geo/1.0/direct"),
			expects.QueryParamEquals("q", "Austin,TX,US"),
			expects.QueryParamEquals("appid", "key"),
		),
		testutils.Returns(
			response.Code(http.StatusOK),
			response.Body([]byte(`[{"name":"Austin","lat":30.2711286,"lon":-97.7436995,"country":"US","state":"Texas"}]`)),
		),
	)
	defer geo.Close()

	weather := testutils.NewMockServiceThat(
		testutils.Expects(
			is,
			expects.RequestPath("/data/2.5/weather"),
			expects.QueryParamEquals("lat", "30.2711286"),
			expects.QueryParamEquals("lon", "-97.7436995"),
			expects.QueryParamEquals("units", "imperial"),
		),
		testutils.Returns(
			response.Code(http.StatusOK),
			response.Body([]byte(weatherResponse)),
		),
	)
	defer weather.Close()

	c := New("key", WithGeocodingURL(geo.URL()), WithWeatherURL(weather.URL()))

	w, err := c.CurrentWeather(context.Background(), "Austin", "TX")
	is.NoErr(err)
	is.Equal(w.Temperature, 88.3)
	is.Equal(w.Description, "scattered clouds")
	is.Equal(weather.RequestCount(), 1)
}

func TestThatUnknownPlaceHasNoWeather(t *testing.T) {
	is := is.New(t)

	geo := testutils.NewMockServiceThat(
		testutils.Expects(is, expects.AnyInput()),
		testutils.Returns(response.Code(http.StatusOK), response.Body([]byte(`[]`))),
	)
	defer geo.Close()

	weather := testutils.NewMockServiceThat(
		testutils.Expects(is, expects.AnyInput()),
		testutils.Returns(response.Code(http.StatusOK), response.Body([]byte(weatherResponse))),
	)
	defer weather.Close()

	c := New("key", WithGeocodingURL(geo.URL()), WithWeatherURL(weather.URL()))

	w, err := c.CurrentWeather(context.Background(), "Nowhere", "ZZ")
	is.NoErr(err)
	is.True(w == nil)
	is.Equal(weather.RequestCount(), 0)
}

func TestThatIncompleteWeatherIsNil(t *testing.T) {
	is := is.New(t)

	geo := testutils.NewMockServiceThat(
		testutils.Expects(is, expects.AnyInput()),
		testutils.Returns(response.Code(http.StatusOK), response.Body([]byte(`[{"lat":1.5,"lon":2.5}]`))),
	)
	defer geo.Close()

	weather := testutils.NewMockServiceThat(
		testutils.Expects(is, expects.AnyInput()),
		testutils.Returns(response.Code(http.StatusOK), response.Body([]byte(`{"main":{"temp":50.1},"weather":[]}`))),
	)
	defer weather.Close()

	c := New("key", WithGeocodingURL(geo.URL()), WithWeatherURL(weather.URL()))

	w, err := c.CurrentWeather(context.Background(), "Austin", "TX")
	is.NoErr(err)
	is.True(w == nil)
}

func TestThatFailedGeocodingIsReported(t *testing.T) {
	is := is.New(t)

	geo := testutils.NewMockServiceThat(
		testutils.Expects(is, expects.AnyInput()),
		testutils.Returns(response.Code(http.StatusUnauthorized)),
	)
	defer geo.Close()

	_, err := New("bad", WithGeocodingURL(geo.URL())).CurrentWeather(context.Background(), "Austin", "TX")
	is.True(errors.Is(err, ErrBadResponse))
}

func TestThatClientWithoutKeyIsNotConfigured(t *testing.T) {
	is := is.New(t)

	_, err := New("").CurrentWeather(context.Background(), "Austin", "TX")
	is.True(errors.Is(err, ErrNotConfigured))
}

const weatherResponse string = `{
	"coord": {"lon": -97.7437, "lat": 30.2711},
	"weather": [{"id": 802, "main": "Clouds", "description": "scattered clouds", "icon": "03d"}],
	"main": {"temp": 88.3, "feels_like": 94.1, "pressure": 1014, "humidity": 55},
	"name": "Austin"
}`
