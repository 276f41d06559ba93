package valueobjects

// OwnerType identifies the paying entity behind a subscription.
type OwnerType string

const (
	OwnerTypeOrganization OwnerType = "organization"
	OwnerTypeIndividual   OwnerType = "individual"
)

func (o OwnerType) String() string {
	return string(o)
}

func (o OwnerType) IsValid() bool {
	return o == OwnerTypeOrganization || o == OwnerTypeIndividual
}
