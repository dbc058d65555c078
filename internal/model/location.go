package model

// Location is an advanced-logic geofence. Lat, Long and Radius are unset when
// nil; their ranges are checked by Validate, not on assignment.
type Location struct {
	ID     string
	Name   string
	Lat    *float64
	Long   *float64
	Radius *float64
}

func NewLocation(seed Object) (*Location, error) {
	l := &Location{}
	for _, key := range sortedKeys(seed) {
		if err := l.Set(key, seed[key]); err != nil && !skippable(err) {
			return nil, err
		}
	}
	return l, nil
}

func (l *Location) EntityID() string { return l.ID }

func (l *Location) AssignID(id string) {
	if l.ID == "" {
		l.ID = id
	}
}

func (l *Location) Set(field string, value any) error {
	var err error
	switch field {
	case "id":
		return assignID(KindLocation, &l.ID, value)
	case "name":
		l.Name, err = setString(l.Name, KindLocation, field, value)
	case "lat":
		err = setNumber(&l.Lat, KindLocation, field, value)
	case "long":
		err = setNumber(&l.Long, KindLocation, field, value)
	case "radius":
		err = setNumber(&l.Radius, KindLocation, field, value)
	default:
		return unknownField(KindLocation, field)
	}
	return err
}

func (l *Location) Object() Object {
	obj := Object{}
	putString(obj, "id", l.ID)
	putString(obj, "name", l.Name)
	putNumber(obj, "lat", l.Lat)
	putNumber(obj, "long", l.Long)
	putNumber(obj, "radius", l.Radius)
	return obj
}

func (l *Location) MarshalJSON() ([]byte, error) {
	return marshalObject(l.Object())
}

func (l *Location) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	decoded, err := NewLocation(obj)
	if err != nil {
		return err
	}
	*l = *decoded
	return nil
}

// setNumber leaves the target untouched when the value has the wrong type.
func setNumber(target **float64, kind, field string, value any) error {
	n, err := asNumber(kind, field, value)
	if err != nil {
		return err
	}
	*target = n
	return nil
}

func setBool(target **bool, kind, field string, value any) error {
	b, err := asBool(kind, field, value)
	if err != nil {
		return err
	}
	*target = b
	return nil
}

func setStrings(target *[]string, kind, field string, value any) error {
	values, err := asStrings(kind, field, value)
	if err != nil {
		return err
	}
	*target = values
	return nil
}
