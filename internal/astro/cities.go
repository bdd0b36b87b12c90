package astro

// Built-in geocoding table, keyed by lowercase city name.
// Coordinates are approximate city centres; close enough for twilight times.
var cities = map[string]City{
	"amsterdam":     {Name: "Amsterdam", Latitude: 52.37, Longitude: 4.89, Timezone: "Europe/Amsterdam"},
	"athens":        {Name: "Athens", Latitude: 37.98, Longitude: 23.73, Timezone: "Europe/Athens"},
	"auckland":      {Name: "Auckland", Latitude: -36.85, Longitude: 174.76, Timezone: "Pacific/Auckland"},
	"berlin":        {Name: "Berlin", Latitude: 52.52, Longitude: 13.41, Timezone: "Europe/Berlin"},
	"boston":        {Name: "Boston", Latitude: 42.36, Longitude: -71.06, Timezone: "America/New_York"},
	"calgary":       {Name: "Calgary", Latitude: 51.05, Longitude: -114.07, Timezone: "America/Edmonton"},
	"chicago":       {Name: "Chicago", Latitude: 41.88, Longitude: -87.63, Timezone: "America/Chicago"},
	"denver":        {Name: "Denver", Latitude: 39.74, Longitude: -104.99, Timezone: "America/Denver"},
	"dublin":        {Name: "Dublin", Latitude: 53.35, Longitude: -6.26, Timezone: "Europe/Dublin"},
	"edinburgh":     {Name: "Edinburgh", Latitude: 55.95, Longitude: -3.19, Timezone: "Europe/London"},
	"grand rapids":  {Name: "Grand Rapids", Latitude: 42.96, Longitude: -85.66, Timezone: "America/Detroit"},
	"halifax":       {Name: "Halifax", Latitude: 44.65, Longitude: -63.58, Timezone: "America/Halifax"},
	"london":        {Name: "London", Latitude: 51.51, Longitude: -0.13, Timezone: "Europe/London"},
	"los angeles":   {Name: "Los Angeles", Latitude: 34.05, Longitude: -118.24, Timezone: "America/Los_Angeles"},
	"madrid":        {Name: "Madrid", Latitude: 40.42, Longitude: -3.70, Timezone: "Europe/Madrid"},
	"melbourne":     {Name: "Melbourne", Latitude: -37.81, Longitude: 144.96, Timezone: "Australia/Melbourne"},
	"montreal":      {Name: "Montreal", Latitude: 45.50, Longitude: -73.57, Timezone: "America/Toronto"},
	"new york":      {Name: "New York", Latitude: 40.71, Longitude: -74.01, Timezone: "America/New_York"},
	"oslo":          {Name: "Oslo", Latitude: 59.91, Longitude: 10.75, Timezone: "Europe/Oslo"},
	"ottawa":        {Name: "Ottawa", Latitude: 45.42, Longitude: -75.70, Timezone: "America/Toronto"},
	"paris":         {Name: "Paris", Latitude: 48.86, Longitude: 2.35, Timezone: "Europe/Paris"},
	"san francisco": {Name: "San Francisco", Latitude: 37.77, Longitude: -122.42, Timezone: "America/Los_Angeles"},
	"seattle":       {Name: "Seattle", Latitude: 47.61, Longitude: -122.33, Timezone: "America/Los_Angeles"},
	"stockholm":     {Name: "Stockholm", Latitude: 59.33, Longitude: 18.07, Timezone: "Europe/Stockholm"},
	"sydney":        {Name: "Sydney", Latitude: -33.87, Longitude: 151.21, Timezone: "Australia/Sydney"},
	"toronto":       {Name: "Toronto", Latitude: 43.65, Longitude: -79.38, Timezone: "America/Toronto"},
	"vancouver":     {Name: "Vancouver", Latitude: 49.28, Longitude: -123.12, Timezone: "America/Vancouver"},
	"winnipeg":      {Name: "Winnipeg", Latitude: 49.90, Longitude: -97.14, Timezone: "America/Winnipeg"},
}
