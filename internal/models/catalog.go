package models

type CatalogPage struct {
	Page         int           `json:"page"`
	Results      []CatalogItem `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// CatalogItem is a movie or show as the backend relays it from TMDB.
// Movies carry Title/ReleaseDate, shows carry Name/FirstAirDate.
type CatalogItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	Overview     string  `json:"overview"`
	MediaType    string  `json:"media_type,omitempty"`
}

func (c CatalogItem) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

func (c CatalogItem) Year() string {
	date := c.ReleaseDate
	if date == "" {
		date = c.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type GenreList struct {
	Genres []Genre `json:"genres"`
}

type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
}

type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type Videos struct {
	Results []Video `json:"results"`
}

// MediaDetails is the combined payload of GET /movies/{id} and GET /tv/{id}.
type MediaDetails struct {
	Details struct {
		CatalogItem
		Runtime          int     `json:"runtime,omitempty"`
		NumberOfSeasons  int     `json:"number_of_seasons,omitempty"`
		NumberOfEpisodes int     `json:"number_of_episodes,omitempty"`
		Tagline          string  `json:"tagline,omitempty"`
		Genres           []Genre `json:"genres,omitempty"`
	} `json:"details"`
	Credits         Credits     `json:"credits"`
	Videos          Videos      `json:"videos"`
	Recommendations CatalogPage `json:"recommendations"`
	Reviews         []Review    `json:"reviews"`
}

func (d *MediaDetails) Found() bool {
	return d != nil && d.Details.ID != 0
}

// Trailer returns the first YouTube trailer, if any.
func (d *MediaDetails) Trailer() (Video, bool) {
	if d == nil {
		return Video{}, false
	}
	for _, v := range d.Videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return v, true
		}
	}
	return Video{}, false
}
