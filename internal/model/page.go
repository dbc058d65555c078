package model

type Page struct {
	ID                      string
	Name                    string
	Content                 string
	LocationID              string
	PageTransition          string
	UnlockedByPageIDs       []string
	UnlockedByPagesOperator string
	SingleVisit             *bool
	AllowMultiplayer        *bool
	AdvancedConditionIDs    []string
	AdvancedFunctionIDs     []string
}

func NewPage(seed Object) (*Page, error) {
	p := &Page{}
	for _, key := range sortedKeys(seed) {
		if err := p.Set(key, seed[key]); err != nil && !skippable(err) {
			return nil, err
		}
	}
	return p, nil
}

func (p *Page) EntityID() string { return p.ID }

func (p *Page) AssignID(id string) {
	if p.ID == "" {
		p.ID = id
	}
}

func (p *Page) Set(field string, value any) error {
	var err error
	switch field {
	case "id":
		return assignID(KindPage, &p.ID, value)
	case "name":
		p.Name, err = setString(p.Name, KindPage, field, value)
	case "content":
		p.Content, err = setString(p.Content, KindPage, field, value)
	case "locationId":
		p.LocationID, err = setString(p.LocationID, KindPage, field, value)
	case "pageTransition":
		p.PageTransition, err = setString(p.PageTransition, KindPage, field, value)
	case "unlockedByPagesOperator":
		p.UnlockedByPagesOperator, err = setString(p.UnlockedByPagesOperator, KindPage, field, value)
	case "unlockedByPageIds":
		err = setStrings(&p.UnlockedByPageIDs, KindPage, field, value)
	case "advancedConditionIds":
		err = setStrings(&p.AdvancedConditionIDs, KindPage, field, value)
	case "advancedFunctionIds":
		err = setStrings(&p.AdvancedFunctionIDs, KindPage, field, value)
	case "singleVisit":
		err = setBool(&p.SingleVisit, KindPage, field, value)
	case "allowMultiplayer":
		err = setBool(&p.AllowMultiplayer, KindPage, field, value)
	default:
		return unknownField(KindPage, field)
	}
	return err
}

func (p *Page) Object() Object {
	obj := Object{}
	putString(obj, "id", p.ID)
	putString(obj, "name", p.Name)
	putString(obj, "content", p.Content)
	putString(obj, "locationId", p.LocationID)
	putString(obj, "pageTransition", p.PageTransition)
	putString(obj, "unlockedByPagesOperator", p.UnlockedByPagesOperator)
	putStrings(obj, "unlockedByPageIds", p.UnlockedByPageIDs)
	putStrings(obj, "advancedConditionIds", p.AdvancedConditionIDs)
	putStrings(obj, "advancedFunctionIds", p.AdvancedFunctionIDs)
	putBool(obj, "singleVisit", p.SingleVisit)
	putBool(obj, "allowMultiplayer", p.AllowMultiplayer)
	return obj
}

func (p *Page) MarshalJSON() ([]byte, error) {
	return marshalObject(p.Object())
}

func (p *Page) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	decoded, err := NewPage(obj)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

// setString returns current unchanged when value has the wrong type, so a
// rejected assignment never clears the field.
func setString(current, kind, field string, value any) (string, error) {
	s, err := asString(kind, field, value)
	if err != nil {
		return current, err
	}
	return s, nil
}
