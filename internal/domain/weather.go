package domain

// ForecastDays is the length of every daily forecast.
const ForecastDays = 7

// WeatherDaily is a fixed seven-day forecast, first day first.
type WeatherDaily [ForecastDays]DayForecast

// DayForecast is one day of the forecast.
// Units follow the weather service request: °F, mph and inches.
type DayForecast struct {
	Date            string        `json:"date"`
	Temperature     Range         `json:"temperature"`
	FeltTemperature Range         `json:"felt_temperature"`
	WindSpeed       Range         `json:"wind_speed"`
	Precipitation   Precipitation `json:"precipitation"`
}

// Range is a min/mean/max triple.
type Range struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// Precipitation is the chance (percent) and expected amount of rain.
type Precipitation struct {
	Probability float64 `json:"probability"`
	Amount      float64 `json:"amount"`
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TripResult is one fully processed candidate.
type TripResult struct {
	Candidate CandidateTrip `json:"trip"`
	Flight    FlightSummary `json:"flight"`
	Weather   WeatherDaily  `json:"weather"`
}
