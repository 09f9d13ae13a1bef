package extractor

import (
	"strings"

	"github.com/user/memorial-extractor/internal/entity"
)

// FamilySeparator joins the names of one relationship category.
const FamilySeparator = ", "

var familyKeys = map[string]string{
	"parents":  entity.KeyFamilyParents,
	"spouses":  entity.KeyFamilySpouses,
	"children": entity.KeyFamilyChildren,
}

// Assemble merges the normalized fields and the section texts into the full
// record, before any output projection. normalized may be nil when the
// normalizer produced nothing.
func Assemble(normalized *entity.Record, s Sections) *entity.Record {
	rec := entity.NewRecord()
	if normalized != nil {
		rec.Merge(normalized)
	}
	rec.Set(entity.KeyBiography, s.Biography)
	rec.Set(entity.KeyBioBy, s.BioBy)
	rec.Set(entity.KeyPlot, s.Plot)
	rec.Set(entity.KeyInscription, s.Inscription)
	for _, rel := range Relationships {
		rec.Set(familyKeys[rel], strings.Join(s.Family[rel], FamilySeparator))
	}
	return rec
}
