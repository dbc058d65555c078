package model

type Chapter struct {
	ID                      string
	Name                    string
	Colour                  string
	PageIDs                 []string
	UnlockedByPageIDs       []string
	UnlockedByPagesOperator string
	LocksAllOtherChapters   *bool
	LocksChapters           []string
}

func NewChapter(seed Object) (*Chapter, error) {
	c := &Chapter{}
	for _, key := range sortedKeys(seed) {
		if err := c.Set(key, seed[key]); err != nil && !skippable(err) {
			return nil, err
		}
	}
	return c, nil
}

func (c *Chapter) EntityID() string { return c.ID }

func (c *Chapter) AssignID(id string) {
	if c.ID == "" {
		c.ID = id
	}
}

func (c *Chapter) Set(field string, value any) error {
	var err error
	switch field {
	case "id":
		return assignID(KindChapter, &c.ID, value)
	case "name":
		c.Name, err = setString(c.Name, KindChapter, field, value)
	case "colour":
		c.Colour, err = setString(c.Colour, KindChapter, field, value)
	case "unlockedByPagesOperator":
		c.UnlockedByPagesOperator, err = setString(c.UnlockedByPagesOperator, KindChapter, field, value)
	case "pageIds":
		err = setStrings(&c.PageIDs, KindChapter, field, value)
	case "unlockedByPageIds":
		err = setStrings(&c.UnlockedByPageIDs, KindChapter, field, value)
	case "locksChapters":
		err = setStrings(&c.LocksChapters, KindChapter, field, value)
	case "locksAllOtherChapters":
		err = setBool(&c.LocksAllOtherChapters, KindChapter, field, value)
	default:
		return unknownField(KindChapter, field)
	}
	return err
}

func (c *Chapter) Object() Object {
	obj := Object{}
	putString(obj, "id", c.ID)
	putString(obj, "name", c.Name)
	putString(obj, "colour", c.Colour)
	putString(obj, "unlockedByPagesOperator", c.UnlockedByPagesOperator)
	putStrings(obj, "pageIds", c.PageIDs)
	putStrings(obj, "unlockedByPageIds", c.UnlockedByPageIDs)
	putStrings(obj, "locksChapters", c.LocksChapters)
	putBool(obj, "locksAllOtherChapters", c.LocksAllOtherChapters)
	return obj
}

func (c *Chapter) MarshalJSON() ([]byte, error) {
	return marshalObject(c.Object())
}

func (c *Chapter) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	decoded, err := NewChapter(obj)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
