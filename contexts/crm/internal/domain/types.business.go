package domain

type (
	AddressType     struct{ ReferenceType }
	EmailType       struct{ ReferenceType }
	PhoneType       struct{ ReferenceType }
	Title           struct{ ReferenceType }
	Module          struct{ ReferenceType }
	SocialMediaType struct{ ReferenceType }
)

func (AddressType) Kind() string     { return "AddressType" }
func (EmailType) Kind() string       { return "EmailType" }
func (PhoneType) Kind() string       { return "PhoneType" }
func (Title) Kind() string           { return "Title" }
func (Module) Kind() string          { return "Module" }
func (SocialMediaType) Kind() string { return "SocialMediaType" }

func NewAddressType(name string, description string) (AddressType, error) {
	t, err := newReferenceType(name, description)

	return AddressType{t}, err
}

func NewEmailType(name string, description string) (EmailType, error) {
	t, err := newReferenceType(name, description)

	return EmailType{t}, err
}

func NewPhoneType(name string, description string) (PhoneType, error) {
	t, err := newReferenceType(name, description)

	return PhoneType{t}, err
}

func NewTitle(name string, description string) (Title, error) {
	t, err := newReferenceType(name, description)

	return Title{t}, err
}

func NewModule(name string, description string) (Module, error) {
	t, err := newReferenceType(name, description)

	return Module{t}, err
}

func NewSocialMediaType(name string, description string) (SocialMediaType, error) {
	t, err := newReferenceType(name, description)

	return SocialMediaType{t}, err
}
