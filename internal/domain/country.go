package domain

import "strings"

// Country is the normalized country tag of a location
type Country string

const (
	CountryWorldwide   Country = "worldwide"
	CountryUAE         Country = "united arab emirates"
	CountrySaudiArabia Country = "saudi arabia"
	CountryQatar       Country = "qatar"
	CountryKuwait      Country = "kuwait"
	CountryBahrain     Country = "bahrain"
	CountryOman        Country = "oman"
	CountryEgypt       Country = "egypt"
	CountryJordan      Country = "jordan"
	CountryLebanon     Country = "lebanon"
)

var countryAliases = map[string]Country{
	"worldwide":            CountryWorldwide,
	"international":        CountryWorldwide,
	"united arab emirates": CountryUAE,
	"uae":                  CountryUAE,
	"saudi arabia":         CountrySaudiArabia,
	"ksa":                  CountrySaudiArabia,
	"qatar":                CountryQatar,
	"kuwait":               CountryKuwait,
	"bahrain":              CountryBahrain,
	"oman":                 CountryOman,
	"egypt":                CountryEgypt,
	"jordan":               CountryJordan,
	"lebanon":              CountryLebanon,
}

// CountryFromString maps a country name or alias to a Country.
// Unknown values map to CountryWorldwide.
func CountryFromString(s string) Country {
	if c, ok := countryAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return CountryWorldwide
}
