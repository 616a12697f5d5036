package schema

// Built-in definitions for the closed record-type set. External definition
// documents loaded through a Registry may extend or override these.

func linkArray() Property {
	return Property{
		Kind: KindArray,
		Items: &Property{
			Kind: KindObject,
			Properties: map[string]Property{
				"ref":  {Kind: KindString, Required: true},
				"role": {Kind: KindString, Required: true},
			},
		},
	}
}

func dateObject(required bool) Property {
	return Property{
		Kind:     KindObject,
		Required: required,
		Properties: map[string]Property{
			"date_type":  {Kind: KindString, Required: true},
			"label":      {Kind: KindString, Required: true},
			"begin":      {Kind: KindDate, Required: true},
			"end":        {Kind: KindDate},
			"expression": {Kind: KindString},
		},
	}
}

// AccessionDefinition describes accession records.
func AccessionDefinition() Definition {
	return Definition{
		Type:   "accession",
		Plural: "accessions",
		Properties: map[string]Property{
			"id_0":                  {Kind: KindString, Required: true},
			"id_1":                  {Kind: KindString},
			"id_2":                  {Kind: KindString},
			"id_3":                  {Kind: KindString},
			"title":                 {Kind: KindString, Required: true},
			"accession_date":        {Kind: KindDate, Required: true},
			"content_description":   {Kind: KindString, Recommended: true},
			"condition_description": {Kind: KindString, Recommended: true},
			"general_note":          {Kind: KindString},
			"acquisition_type":      {Kind: KindString, Enum: []string{"deposit", "gift", "purchase", "transfer"}},
			"deaccessions": {
				Kind: KindArray,
				Items: &Property{
					Kind: KindObject,
					Properties: map[string]Property{
						"whole_part":  {Kind: KindBoolean, Required: true},
						"description": {Kind: KindString, Required: true},
						"reason":      {Kind: KindString},
						"date":        dateObject(true),
					},
				},
			},
			"rights_statements": {
				Kind: KindArray,
				Items: &Property{
					Kind: KindObject,
					Properties: map[string]Property{
						"identifier":   {Kind: KindString, Required: true},
						"rights_type":  {Kind: KindString, Required: true},
						"ip_status":    {Kind: KindString},
						"jurisdiction": {Kind: KindString},
						"active":       {Kind: KindBoolean, Default: true},
					},
				},
			},
			"linked_records": linkArray(),
			"linked_agents":  linkArray(),
		},
	}
}

// AgentPersonDefinition describes person agent records, whose names are
// owned sub-records reconciled with every parent write.
func AgentPersonDefinition() Definition {
	return Definition{
		Type:   "agent_person",
		Plural: "agent_people",
		Properties: map[string]Property{
			"names": {
				Kind:     KindArray,
				Required: true,
				Items: &Property{
					Kind: KindObject,
					Properties: map[string]Property{
						"key":          {Kind: KindString},
						"primary_name": {Kind: KindString, Required: true},
						"rest_of_name": {Kind: KindString},
						"sort_name":    {Kind: KindString, Required: true},
						"name_order":   {Kind: KindString, Enum: []string{"direct", "inverted"}},
						"authorized":   {Kind: KindBoolean, Default: false},
					},
				},
			},
			"biography":      {Kind: KindString},
			"linked_records": linkArray(),
			"linked_agents":  linkArray(),
		},
	}
}

// EventDefinition describes event records, which exist to describe a
// relationship between agents and other records.
func EventDefinition() Definition {
	return Definition{
		Type:   "event",
		Plural: "events",
		Properties: map[string]Property{
			"event_type": {Kind: KindString, Required: true},
			"outcome":    {Kind: KindString, Required: true},
			"outcome_note": {
				Kind: KindString,
			},
			"date":           dateObject(true),
			"linked_records": linkArray(),
			"linked_agents":  linkArray(),
		},
	}
}

// Builtins returns the definitions for the closed record-type set.
func Builtins() []Definition {
	return []Definition{AccessionDefinition(), AgentPersonDefinition(), EventDefinition()}
}
