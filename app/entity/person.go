package entity

// Record is a single observation, typically one commit signature.
type Record struct {
	Name       string
	Email      string
	ExternalID string
	Repository string
}

// RawPerson is one distinct normalized (name, email) pair.
type RawPerson struct {
	Name  string
	Email string
}

func (r Record) RawPerson() RawPerson {
	return RawPerson{Name: r.Name, Email: r.Email}
}
