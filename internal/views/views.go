// Package views renders models as plain text for the terminal.
package views

import (
	"fmt"
	"strings"

	"cinelume/internal/models"
)

const (
	// CarouselLimit is how many items a carousel row shows.
	CarouselLimit = 10
	castLimit     = 5
	youtubeURL    = "https://www.youtube.com/watch?v="
	posterBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Card is the one-line summary of a catalog item.
func Card(item models.CatalogItem) string {
	var b strings.Builder
	b.WriteString(item.DisplayTitle())
	if year := item.Year(); year != "" {
		fmt.Fprintf(&b, " (%s)", year)
	}
	if item.VoteAverage > 0 {
		fmt.Fprintf(&b, "  %.1f/10", item.VoteAverage)
	}
	if item.MediaType != "" {
		fmt.Fprintf(&b, "  [%s %d]", item.MediaType, item.ID)
	} else {
		fmt.Fprintf(&b, "  [%d]", item.ID)
	}
	return b.String()
}

// Carousel renders a titled row, showing at most limit items.
// A limit of zero or less uses CarouselLimit.
func Carousel(title string, items []models.CatalogItem, limit int) string {
	if limit <= 0 {
		limit = CarouselLimit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", title)
	if len(items) == 0 {
		b.WriteString("  (nothing here yet)\n")
		return b.String()
	}
	for i, item := range items {
		if i >= limit {
			fmt.Fprintf(&b, "  ... and %d more\n", len(items)-limit)
			break
		}
		fmt.Fprintf(&b, "  %s\n", Card(item))
	}
	return b.String()
}

func SearchResults(query string, items []models.CatalogItem) string {
	if query == "" {
		return "Type something to search.\n"
	}
	if len(items) == 0 {
		return fmt.Sprintf("No results for %q.\n", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Results for %q:\n", query)
	for i, item := range items {
		fmt.Fprintf(&b, "%2d. %s\n", i+1, Card(item))
	}
	return b.String()
}

func Genres(genres []models.Genre) string {
	var b strings.Builder
	for _, g := range genres {
		fmt.Fprintf(&b, "%5d  %s\n", g.ID, g.Name)
	}
	return b.String()
}

func PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return posterBaseURL + path
}

func TrailerURL(v models.Video) string {
	return youtubeURL + v.Key
}

// Details renders a movie or show page without its reviews.
func Details(d *models.MediaDetails) string {
	if !d.Found() {
		return "Not found.\n"
	}

	info := d.Details
	var b strings.Builder
	b.WriteString(Card(info.CatalogItem))
	b.WriteString("\n")
	if info.Tagline != "" {
		fmt.Fprintf(&b, "%q\n", info.Tagline)
	}

	var facts []string
	if info.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%d min", info.Runtime))
	}
	if info.NumberOfSeasons > 0 {
		facts = append(facts, fmt.Sprintf("%d seasons, %d episodes", info.NumberOfSeasons, info.NumberOfEpisodes))
	}
	if len(info.Genres) > 0 {
		names := make([]string, len(info.Genres))
		for i, g := range info.Genres {
			names[i] = g.Name
		}
		facts = append(facts, strings.Join(names, ", "))
	}
	if len(facts) > 0 {
		b.WriteString(strings.Join(facts, " | "))
		b.WriteString("\n")
	}

	if info.Overview != "" {
		fmt.Fprintf(&b, "\n%s\n", info.Overview)
	}

	if cast := d.Credits.Cast; len(cast) > 0 {
		b.WriteString("\nCast:\n")
		for i, c := range cast {
			if i >= castLimit {
				break
			}
			fmt.Fprintf(&b, "  %s as %s\n", c.Name, c.Character)
		}
	}

	if v, ok := d.Trailer(); ok {
		fmt.Fprintf(&b, "\nTrailer: %s\n", TrailerURL(v))
	}

	if recs := d.Recommendations.Results; len(recs) > 0 {
		b.WriteString("\n")
		b.WriteString(Carousel("Recommendations", recs, 5))
	}
	return b.String()
}

// Watchlist renders grouped entries under status headings.
func Watchlist(groups []models.StatusGroup) string {
	if len(groups) == 0 {
		return "Your watchlist is empty.\n"
	}

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "== %s (%d) ==\n", g.Status, len(g.Entries))
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "  %s  [%s %d]", e.Title, e.MediaType, e.MediaID)
			if e.Rating > 0 {
				fmt.Fprintf(&b, "  rated %d/10", e.Rating)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Reviews renders a review list. The review whose id equals editing is
// marked; pass 0 when none is being edited.
func Reviews(reviews []models.Review, editing int) string {
	if len(reviews) == 0 {
		return "No reviews yet.\n"
	}

	var b strings.Builder
	for _, r := range reviews {
		author := r.Username
		if author == "" {
			author = "someone"
		}
		fmt.Fprintf(&b, "%s rated %d/10", author, r.Rating)
		if r.MediaTitle != "" {
			fmt.Fprintf(&b, " for %s", r.MediaTitle)
		}
		if len(r.CreatedAt) >= 10 {
			fmt.Fprintf(&b, " on %s", r.CreatedAt[:10])
		}
		if r.ID != 0 {
			fmt.Fprintf(&b, "  #%d", r.ID)
		}
		if editing != 0 && r.ID == editing {
			b.WriteString("  [editing]")
		}
		b.WriteString("\n")
		if r.Comment != "" {
			fmt.Fprintf(&b, "  %s\n", r.Comment)
		}
	}
	return b.String()
}

// Profile renders the stat block of username. profile is nil unless the
// viewer owns it.
func Profile(username string, profile *models.Profile, stats *models.UserStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", username)

	if profile != nil {
		fmt.Fprintf(&b, "  email: %s\n", profile.Email)
		if about := profile.About(); about != "" {
			fmt.Fprintf(&b, "  about: %s\n", about)
		}
		if avatar := profile.Avatar(); avatar != "" {
			fmt.Fprintf(&b, "  avatar: %s\n", avatar)
		}
		if !profile.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "  joined: %s\n", profile.CreatedAt.Format("January 2006"))
		}
	}

	if stats == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "  entries: %d  reviews: %d", stats.TotalEntries, stats.ReviewsCount)
	if stats.ReviewsCount > 0 {
		fmt.Fprintf(&b, "  mean score: %.1f", stats.MeanScore)
	}
	b.WriteString("\n")
	for _, status := range models.StatusOrder {
		fmt.Fprintf(&b, "  %-14s %d\n", string(status)+":", stats.Count(status))
	}
	return b.String()
}
