package entities

// Location is a geographic position with administrative subdivisions.
type Location struct {
	Latitude              float64 `json:"latitude,omitempty"`
	Longitude             float64 `json:"longitude,omitempty"`
	CountryCode           string  `json:"country_code,omitempty"`
	AdministrativeArea    string  `json:"administrative_area,omitempty"`
	SubAdministrativeArea string  `json:"sub_administrative_area,omitempty"`
	Locality              string  `json:"locality,omitempty"`
	SubLocality           string  `json:"sub_locality,omitempty"`
	Address               string  `json:"address,omitempty"`
	PostalCode            int     `json:"postal_code,omitempty"`
}

// EventDetails carries the domain fields of an event entity.
// HappenedAt is a unix timestamp in seconds; zero means unknown.
type EventDetails struct {
	Title       string    `json:"title"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    *Location `json:"location,omitempty"`
	HappenedAt  int64     `json:"happened_at,omitempty"`
}

// PersonDetails carries the domain fields of a person entity.
type PersonDetails struct {
	Name        string   `json:"name"`
	Role        string   `json:"role,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	BirthDate   int64    `json:"birth_date,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// OrganizationDetails carries the domain fields of an organization entity.
type OrganizationDetails struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	FoundedAt int64  `json:"founded_at,omitempty"`
}

// WebsiteDetails carries the domain fields of a website entity.
type WebsiteDetails struct {
	URL         string `json:"url"`
	Domain      string `json:"domain,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// SourceDetails carries the domain fields of a source entity.
// Reliability is a 0-100 score.
type SourceDetails struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url,omitempty"`
	RootURL     string `json:"root_url,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Reliability int    `json:"reliability,omitempty"`
}
