package service

import (
	"errors"
	"net/url"
	"strings"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/geo"
)

const (
	maxPlaceNameLength    = 200
	maxPlaceAddressLength = 500
	maxCategoryCount      = 10
)

type placeRules struct {
	requireAll        bool
	allowRatings      bool
	allowedCategories map[string]struct{}
}

func newCategorySet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// normalizePlaceFields trims input, resolves MapLink into Location and reports
// every problem at once. The returned copy is safe to Apply.
func normalizePlaceFields(in domain.PlaceFields, rules placeRules) (domain.PlaceFields, error) {
	out := in
	var problems []string

	requireText := func(field string, value **string, maxLen int) {
		if *value == nil {
			if rules.requireAll {
				problems = append(problems, field+" is required")
			}
			return
		}
		trimmed := strings.TrimSpace(**value)
		switch {
		case trimmed == "":
			problems = append(problems, field+" cannot be empty")
		case maxLen > 0 && len([]rune(trimmed)) > maxLen:
			problems = append(problems, field+" is too long")
		}
		*value = &trimmed
	}
	requireText("name", &out.Name, maxPlaceNameLength)
	requireText("city", &out.City, maxPlaceNameLength)
	requireText("address", &out.Address, maxPlaceAddressLength)

	if out.Category == nil {
		if rules.requireAll {
			problems = append(problems, "category must contain at least one entry")
		}
	} else {
		cats := make([]string, 0, len(*out.Category))
		seen := make(map[string]struct{}, len(*out.Category))
		for _, c := range *out.Category {
			c = strings.ToLower(strings.TrimSpace(c))
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			if rules.allowedCategories != nil {
				if _, ok := rules.allowedCategories[c]; !ok {
					problems = append(problems, "category "+c+" is not allowed")
					continue
				}
			}
			seen[c] = struct{}{}
			cats = append(cats, c)
		}
		switch {
		case len(cats) == 0:
			problems = append(problems, "category must contain at least one entry")
		case len(cats) > maxCategoryCount:
			problems = append(problems, "too many categories")
		}
		out.Category = &cats
	}

	if out.PriceLevel == nil {
		if rules.requireAll {
			problems = append(problems, "price_level is required")
		}
	} else if *out.PriceLevel < domain.MinPriceLevel || *out.PriceLevel > domain.MaxPriceLevel {
		problems = append(problems, "price_level must be between 1 and 4")
	}

	if out.Phone != nil {
		phone := strings.TrimSpace(*out.Phone)
		out.Phone = &phone
	}
	if out.Website != nil {
		website := strings.TrimSpace(*out.Website)
		if website != "" {
			u, err := url.Parse(website)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				problems = append(problems, "website must be an http or https URL")
			}
		}
		out.Website = &website
	}

	switch {
	case out.Location != nil:
		if err := geo.Validate(*out.Location); err != nil {
			problems = append(problems, err.Error())
		}
	case out.MapLink != nil:
		point, err := geo.ParseMapLink(*out.MapLink)
		if err != nil {
			problems = append(problems, "map_link: "+describeMapLinkError(err))
		} else {
			out.Location = &point
		}
	case rules.requireAll:
		problems = append(problems, "location or map_link is required")
	}
	out.MapLink = nil

	if rules.allowRatings {
		if out.RatingAverage != nil && (*out.RatingAverage < 0 || *out.RatingAverage > 5) {
			problems = append(problems, "rating_average must be between 0 and 5")
		}
		if out.RatingCount != nil && *out.RatingCount < 0 {
			problems = append(problems, "rating_count cannot be negative")
		}
	} else {
		out.RatingAverage = nil
		out.RatingCount = nil
	}

	if len(problems) > 0 {
		return domain.PlaceFields{}, validationError("%s", strings.Join(problems, "; "))
	}
	return out, nil
}

func describeMapLinkError(err error) string {
	switch {
	case errors.Is(err, geo.ErrShortLink), errors.Is(err, geo.ErrOutOfRange):
		return err.Error()
	case errors.Is(err, geo.ErrEmptyLink):
		return "link is empty"
	case errors.Is(err, geo.ErrUnsupportedLink):
		return "not a map URL or lat,lng pair"
	default:
		return "no coordinates found in link"
	}
}

func hasPlaceChanges(f domain.PlaceFields) bool {
	return f.Name != nil || f.City != nil || f.Category != nil || f.Phone != nil ||
		f.Website != nil || f.PriceLevel != nil || f.Address != nil || f.Location != nil ||
		f.MapLink != nil || f.RatingAverage != nil || f.RatingCount != nil
}
