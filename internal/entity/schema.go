package entity

// Column is one output column of the memorial sheet.
type Column struct {
	Key    string
	Export bool
}

// Schema is the ordered list of every record key the pipeline produces,
// with the policy deciding which of them reach the sink.
type Schema struct {
	Columns []Column
}

// OutputSchema is the column policy of the memorial sheet. Inscription and
// the family lists are extracted but never exported; biography and bio_by are.
var OutputSchema = Schema{Columns: []Column{
	{Key: KeyFullName, Export: true},
	{Key: "first_name", Export: true},
	{Key: "last_name", Export: true},
	{Key: "birth_year", Export: true},
	{Key: "death_year", Export: true},
	{Key: "death_date", Export: true},
	{Key: "death_month", Export: true},
	{Key: "death_day", Export: true},
	{Key: "cemetery_name", Export: true},
	{Key: "cemetery_city", Export: true},
	{Key: "cemetery_county", Export: true},
	{Key: "cemetery_state", Export: true},
	{Key: "cemetery_country", Export: true},
	{Key: "cemetery_latitude", Export: true},
	{Key: "cemetery_longitude", Export: true},
	{Key: "memorial_id", Export: true},
	{Key: "person_id", Export: true},
	{Key: "memorial_contributor_id", Export: true},
	{Key: "sponsor_contributor_id", Export: true},
	{Key: "memorial_url", Export: true},
	{Key: "is_famous", Export: true},
	{Key: "is_cenotaph", Export: true},
	{Key: "has_grave_photo", Export: true},
	{Key: "cover_photo_id", Export: true},
	{Key: "cover_photo_url", Export: true},
	{Key: "default_photo_url", Export: true},
	{Key: "cemetery_id", Export: true},
	{Key: KeyBiography, Export: true},
	{Key: KeyBioBy, Export: true},
	{Key: KeyPlot, Export: true},
	{Key: KeyInscription, Export: false},
	{Key: KeyFamilyParents, Export: false},
	{Key: KeyFamilySpouses, Export: false},
	{Key: KeyFamilyChildren, Export: false},
}}

// Exported returns the keys written to the sink, in column order.
func (s Schema) Exported() []string {
	var keys []string
	for _, c := range s.Columns {
		if c.Export {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Excluded returns the keys computed but dropped before the sink.
func (s Schema) Excluded() []string {
	var keys []string
	for _, c := range s.Columns {
		if !c.Export {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Project returns a new record holding exactly the exported columns in
// schema order. Columns missing from rec are emitted as "".
func (s Schema) Project(rec *Record) *Record {
	out := NewRecord()
	for _, c := range s.Columns {
		if !c.Export {
			continue
		}
		if rec != nil && rec.Has(c.Key) {
			out.Set(c.Key, rec.Get(c.Key))
			continue
		}
		out.Set(c.Key, "")
	}
	return out
}
