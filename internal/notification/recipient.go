package notification

import "reflect"

// Recipient is the target of one message. TemplateFields exposes the values a
// personalizer may substitute; a key missing from the map is an unknown field.
type Recipient interface {
	EmailAddress() string
	TemplateFields() map[string]any
}

// Contact is the stock Recipient: an address plus optional name fields and
// free-form attributes.
type Contact struct {
	Email      string            `yaml:"email" json:"email"`
	Name       string            `yaml:"name" json:"name"`
	Username   string            `yaml:"username" json:"username"`
	Attributes map[string]string `yaml:"attributes" json:"attributes,omitempty"`
}

// EmailAddress returns the contact's address.
func (c *Contact) EmailAddress() string { return c.Email }

// TemplateFields returns Email, Name, Username and every attribute. Attributes
// never shadow the built-in fields.
func (c *Contact) TemplateFields() map[string]any {
	fields := make(map[string]any, len(c.Attributes)+3)
	for k, v := range c.Attributes {
		fields[k] = v
	}
	fields["Email"] = c.Email
	fields["Name"] = c.Name
	fields["Username"] = c.Username
	return fields
}

// Contacts converts a slice of contacts into recipients, preserving nil entries.
func Contacts(cs []*Contact) []Recipient {
	if cs == nil {
		return nil
	}
	out := make([]Recipient, len(cs))
	for i, c := range cs {
		if c != nil {
			out[i] = c
		}
	}
	return out
}

// isNilRecipient reports whether r carries no recipient. A nil pointer, map,
// slice or func of any Recipient type wrapped in the interface counts as
// missing too.
func isNilRecipient(r Recipient) bool {
	if r == nil {
		return true
	}
	if c, ok := r.(*Contact); ok {
		return c == nil
	}
	switch v := reflect.ValueOf(r); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
