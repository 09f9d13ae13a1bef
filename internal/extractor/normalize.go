package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/memorial-extractor/internal/entity"
)

// FieldMapping renames one payload key to one record key.
type FieldMapping struct {
	Payload string
	Record  string
}

// FieldMappings is the static payload-to-record rename table, in output order.
var FieldMappings = []FieldMapping{
	{"fullName", entity.KeyFullName},
	{"firstName", "first_name"},
	{"lastName", "last_name"},
	{"birthYear", "birth_year"},
	{"deathYear", "death_year"},
	{"deathDate", "death_date"},
	{"deathMonth", "death_month"},
	{"deathDay", "death_day"},
	{"cemeteryName", "cemetery_name"},
	{"cemeteryCityName", "cemetery_city"},
	{"cemeteryCountyName", "cemetery_county"},
	{"cemeteryStateName", "cemetery_state"},
	{"cemeteryCountryName", "cemetery_country"},
	{"cemeteryLatitude", "cemetery_latitude"},
	{"cemeteryLongitude", "cemetery_longitude"},
	{"memorialId", "memorial_id"},
	{"personId", "person_id"},
	{"memorialContributorId", "memorial_contributor_id"},
	{"sponsorContributorId", "sponsor_contributor_id"},
	{"linkToShare", "memorial_url"},
	{"isFamous", "is_famous"},
	{"isCenotaph", "is_cenotaph"},
	{"intermentHasPhoto", "has_grave_photo"},
	{"coverPhotoId", "cover_photo_id"},
	{"photoToShare", "cover_photo_url"},
	{"defaultPhotoToShare", "default_photo_url"},
	{"memorialCemeteryId", "cemetery_id"},
}

// PrefixSelector matches the presentational prefix (rank, title) inside the
// payload's full name.
const PrefixSelector = ".prefix"

// Normalize renames the payload into the biographical, location and
// provenance fields of a record. Absent keys become "". A field whose
// transform fails is left at "" and reported as a DATA issue.
func Normalize(p entity.Payload) (*entity.Record, []entity.Issue) {
	rec := entity.NewRecord()
	var issues []entity.Issue

	for _, m := range FieldMappings {
		raw, ok := p.Lookup(m.Payload)
		if !ok || raw == nil {
			rec.Set(m.Record, "")
			continue
		}
		if m.Record != entity.KeyFullName {
			rec.Set(m.Record, raw)
			continue
		}

		rec.Set(m.Record, "")
		s, isString := raw.(string)
		if !isString {
			issues = append(issues, entity.NewIssue(entity.TagData, "clean full_name",
				fmt.Errorf("%s is %T, not a string", m.Payload, raw)))
			continue
		}
		name, err := CleanFullName(s)
		if err != nil {
			issues = append(issues, entity.NewIssue(entity.TagData, "clean full_name", err))
			continue
		}
		rec.Set(m.Record, name)
	}
	return rec, issues
}

// CleanFullName parses raw as markup, drops every prefix element and returns
// the remaining visible text. Applying it to its own output is a no-op.
func CleanFullName(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse full name markup: %w", err)
	}
	doc.Find(PrefixSelector).Remove()
	return strippedText(doc.Find("body")), nil
}
