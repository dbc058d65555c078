package model

// Story carries the metadata of a story; its entities live in the graph
// package's collections.
type Story struct {
	ID          string
	Title       string
	Description string
	Audience    string
	Tags        []string
}

func NewStory(seed Object) (*Story, error) {
	s := &Story{}
	for _, key := range sortedKeys(seed) {
		if err := s.Set(key, seed[key]); err != nil && !skippable(err) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Story) EntityID() string { return s.ID }

func (s *Story) AssignID(id string) {
	if s.ID == "" {
		s.ID = id
	}
}

func (s *Story) Set(field string, value any) error {
	var err error
	switch field {
	case "id":
		return assignID(KindStory, &s.ID, value)
	case "title":
		s.Title, err = setString(s.Title, KindStory, field, value)
	case "description":
		s.Description, err = setString(s.Description, KindStory, field, value)
	case "audience":
		s.Audience, err = setString(s.Audience, KindStory, field, value)
	case "tags":
		err = setStrings(&s.Tags, KindStory, field, value)
	default:
		return unknownField(KindStory, field)
	}
	return err
}

func (s *Story) Object() Object {
	obj := Object{}
	putString(obj, "id", s.ID)
	putString(obj, "title", s.Title)
	putString(obj, "description", s.Description)
	putString(obj, "audience", s.Audience)
	putStrings(obj, "tags", s.Tags)
	return obj
}
