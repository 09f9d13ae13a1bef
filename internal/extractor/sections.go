package extractor

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/memorial-extractor/internal/entity"
)

// Selectors of the display sections of a memorial page.
const (
	BiographySelector   = "#partBio"
	AttributionSelector = "p.text-muted"
	PlotSelector        = "#plotValueLabel"
	InscriptionSelector = ".inscription"
	FamilySelector      = "section#family-members"
)

// Relationship categories listed in the family section, in output order.
var Relationships = []string{"parents", "spouses", "children"}

// Sections holds the text pulled from the page's display markup.
type Sections struct {
	Biography   string
	BioBy       string
	Plot        string
	Inscription string
	// Family maps each relationship category to the linked names in
	// document order. Categories not present map to an empty list.
	Family map[string][]string
}

// ExtractSections runs every section lookup independently: a lookup that
// fails leaves its field empty, is reported as a DATA issue and does not stop
// the others.
func ExtractSections(doc *goquery.Document) (Sections, []entity.Issue) {
	s := Sections{Family: make(map[string][]string, len(Relationships))}
	for _, rel := range Relationships {
		s.Family[rel] = []string{}
	}

	var issues []entity.Issue
	lookup := func(step string, fn func()) {
		if issue := guardLookup(step, fn); issue != nil {
			issues = append(issues, *issue)
		}
	}

	lookup("extract biography", func() {
		s.Biography = strippedText(doc.Find(BiographySelector).First())
	})
	lookup("extract bio_by", func() {
		s.BioBy = strippedText(doc.Find(AttributionSelector).First().Find("a").First())
	})
	lookup("extract Plot", func() {
		s.Plot = strippedText(doc.Find(PlotSelector).First())
	})
	lookup("extract inscription", func() {
		s.Inscription = strippedText(doc.Find(InscriptionSelector).First())
	})
	lookup("extract family", func() {
		s.Family = familyLinks(doc.Find(FamilySelector).First())
	})

	return s, issues
}

// guardLookup runs fn and turns a panic inside it into a DATA issue for step.
func guardLookup(step string, fn func()) (issue *entity.Issue) {
	defer func() {
		if r := recover(); r != nil {
			i := entity.NewIssue(entity.TagData, step, fmt.Errorf("%v", r))
			issue = &i
		}
	}()
	fn()
	return nil
}

// familyLinks collects the link texts of each relationship block inside the
// family section.
func familyLinks(section *goquery.Selection) map[string][]string {
	family := make(map[string][]string, len(Relationships))
	for _, rel := range Relationships {
		names := []string{}
		block := section.Find(fmt.Sprintf(`[data-relationship=%q]`, rel)).First()
		block.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			names = append(names, strippedText(a))
		})
		family[rel] = names
	}
	return family
}
